package services

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/shared"
	"github.com/xuri/excelize/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func workbook(rows [][]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.SetSheetRow(sheet, cell, &row)).To(Succeed())
	}

	buf, err := f.WriteToBuffer()
	Expect(err).NotTo(HaveOccurred())
	return buf
}

var _ = Describe("FlashcardService", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv()
	})

	Context("cards", func() {
		It("creates cards with defaults and filters by tag", func() {
			card, err := env.cards.CreateCard(dto.CreateCardRequest{
				UserID: "u1",
				Front:  "  What is a goroutine? ",
				Back:   "A lightweight thread",
				Tags:   []string{"Go", "go", " concurrency "},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(card.Front).To(Equal("What is a goroutine?"))
			Expect(card.Difficulty).To(Equal(shared.DifficultyMedium))
			Expect(card.Repetitions).To(BeZero())
			env.createCard("u1", "untagged")

			tagged, err := env.cards.GetUserCards("u1", "", "concurrency")
			Expect(err).NotTo(HaveOccurred())
			Expect(tagged).To(HaveLen(1))
			Expect(tagged[0].ID).To(Equal(card.ID))

			all, err := env.cards.GetUserCards("u1", "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})

		It("adds a new card to the requested deck", func() {
			deck, err := env.cards.CreateDeck(dto.CreateDeckRequest{UserID: "u1", Name: "Go"})
			Expect(err).NotTo(HaveOccurred())

			card, err := env.cards.CreateCard(dto.CreateCardRequest{UserID: "u1", Front: "f", Back: "b", DeckID: deck.ID})
			Expect(err).NotTo(HaveOccurred())

			saved, err := env.cards.GetDeck("u1", deck.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.CardIDs).To(ConsistOf(card.ID))
			Expect(saved.CardCount).To(Equal(1))
			Expect(saved.DueCount).To(Equal(1))
		})

		It("updates only the fields sent", func() {
			card := env.createCard("u1", "front")
			back := "new back"

			saved, err := env.cards.UpdateCard(card.ID, dto.UpdateCardRequest{UserID: "u1", Back: &back})
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Front).To(Equal("front"))
			Expect(saved.Back).To(Equal("new back"))

			_, err = env.cards.UpdateCard(card.ID, dto.UpdateCardRequest{UserID: "u2", Back: &back})
			Expect(statusOf(err)).To(Equal(http.StatusNotFound))
		})

		It("removes a deleted card from its decks", func() {
			card := env.createCard("u1", "a")
			keep := env.createCard("u1", "b")
			deck, err := env.cards.CreateDeck(dto.CreateDeckRequest{UserID: "u1", Name: "Deck", CardIDs: []string{card.ID, keep.ID}})
			Expect(err).NotTo(HaveOccurred())

			Expect(env.cards.DeleteCard("u1", card.ID)).To(Succeed())

			saved, err := env.cards.GetDeck("u1", deck.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.CardIDs).To(ConsistOf(keep.ID))

			_, err = env.cards.GetCard("u1", card.ID)
			Expect(statusOf(err)).To(Equal(http.StatusNotFound))
			Expect(statusOf(env.cards.DeleteCard("u1", card.ID))).To(Equal(http.StatusNotFound))
		})
	})

	Context("decks", func() {
		It("lists a created deck exactly once", func() {
			deck, err := env.cards.CreateDeck(dto.CreateDeckRequest{UserID: "u1", Name: "Spanish"})
			Expect(err).NotTo(HaveOccurred())
			_, err = env.cards.CreateDeck(dto.CreateDeckRequest{UserID: "u2", Name: "Spanish"})
			Expect(err).NotTo(HaveOccurred())

			decks, err := env.cards.GetUserDecks("u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(decks).To(HaveLen(1))
			Expect(decks[0].ID).To(Equal(deck.ID))
		})

		It("rejects a duplicate name regardless of case", func() {
			_, err := env.cards.CreateDeck(dto.CreateDeckRequest{UserID: "u1", Name: "Spanish"})
			Expect(err).NotTo(HaveOccurred())

			_, err = env.cards.CreateDeck(dto.CreateDeckRequest{UserID: "u1", Name: "spanish"})
			Expect(statusOf(err)).To(Equal(http.StatusConflict))
		})

		It("replaces, adds and removes card ids", func() {
			a, b, c := env.createCard("u1", "a"), env.createCard("u1", "b"), env.createCard("u1", "c")
			deck, err := env.cards.CreateDeck(dto.CreateDeckRequest{UserID: "u1", Name: "Deck", CardIDs: []string{a.ID}})
			Expect(err).NotTo(HaveOccurred())

			replaced := []string{b.ID}
			name := "Renamed"
			saved, err := env.cards.UpdateDeck(dto.UpdateDeckRequest{
				UserID:        "u1",
				DeckID:        deck.ID,
				Name:          &name,
				CardIDs:       &replaced,
				AddCardIDs:    []string{c.ID, c.ID},
				RemoveCardIDs: []string{b.ID},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Name).To(Equal("Renamed"))
			Expect(saved.CardIDs).To(ConsistOf(c.ID))
		})

		It("keeps cards when a deck is deleted", func() {
			card := env.createCard("u1", "a")
			deck, err := env.cards.CreateDeck(dto.CreateDeckRequest{UserID: "u1", Name: "Deck", CardIDs: []string{card.ID}})
			Expect(err).NotTo(HaveOccurred())

			Expect(env.cards.DeleteDeck("u1", deck.ID)).To(Succeed())

			_, err = env.cards.GetDeck("u1", deck.ID)
			Expect(statusOf(err)).To(Equal(http.StatusNotFound))
			_, err = env.cards.GetCard("u1", card.ID)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("import", func() {
		It("imports a workbook into a new deck", func() {
			buf := workbook([][]interface{}{
				{"Front", "Back", "Tags", "Difficulty"},
				{"hola", "hello", "spanish, greetings", "easy"},
				{"adios", "goodbye", "", "impossible"},
				{"", "", "", ""},
				{"gato", "", "", ""},
			})

			result, err := env.cards.ImportCards("u1", "Spanish", "words.xlsx", buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Created).To(Equal(2))
			Expect(result.CardIDs).To(HaveLen(2))
			Expect(result.Skipped).To(BeNumerically(">=", 1))
			Expect(result.Errors).To(HaveLen(2))

			deck, err := env.cards.GetDeck("u1", result.DeckID)
			Expect(err).NotTo(HaveOccurred())
			Expect(deck.Name).To(Equal("Spanish"))
			Expect(deck.CardIDs).To(ConsistOf(result.CardIDs))

			cards, err := env.cards.GetUserCards("u1", "", "greetings")
			Expect(err).NotTo(HaveOccurred())
			Expect(cards).To(HaveLen(1))
			Expect(cards[0].Difficulty).To(Equal(shared.DifficultyEasy))
		})

		It("imports csv and picks a free deck name", func() {
			_, err := env.cards.CreateDeck(dto.CreateDeckRequest{UserID: "u1", Name: "vocab"})
			Expect(err).NotTo(HaveOccurred())

			result, err := env.cards.ImportCards("u1", "", "vocab.csv", strings.NewReader("perro,dog\nsol,sun\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Created).To(Equal(2))

			deck, err := env.cards.GetDeck("u1", result.DeckID)
			Expect(err).NotTo(HaveOccurred())
			Expect(deck.Name).To(Equal("vocab (2)"))
		})

		It("rejects files without cards or with an unknown type", func() {
			_, err := env.cards.ImportCards("u1", "Empty", "empty.csv", strings.NewReader("front,back\n"))
			Expect(statusOf(err)).To(Equal(http.StatusBadRequest))

			_, err = env.cards.ImportCards("u1", "Doc", "notes.txt", strings.NewReader("a,b"))
			Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
		})
	})
})
