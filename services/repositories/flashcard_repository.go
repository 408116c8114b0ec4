package repositories

import (
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/shared"
)

// FlashcardRepository handles cards, decks and review logs, which share one document
type FlashcardRepository struct {
	BaseRepository
}

func NewFlashcardRepository(store DocumentStore) *FlashcardRepository {
	return &FlashcardRepository{
		BaseRepository: NewBaseRepository(store, shared.DocFlashcards),
	}
}

func (ds *FlashcardRepository) Load() (*model.FlashcardsDocument, error) {
	var doc model.FlashcardsDocument
	if err := ds.read(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Update runs fn against the whole document and persists it when fn succeeds.
func (ds *FlashcardRepository) Update(fn func(doc *model.FlashcardsDocument) error) error {
	var doc model.FlashcardsDocument
	return ds.update(&doc, func() error {
		return fn(&doc)
	})
}

func (ds *FlashcardRepository) GetUserCards(userID string) ([]model.Flashcard, error) {
	doc, err := ds.Load()
	if err != nil {
		return nil, err
	}
	return UserCards(doc, userID), nil
}

func (ds *FlashcardRepository) GetUserDecks(userID string) ([]model.FlashcardDeck, error) {
	doc, err := ds.Load()
	if err != nil {
		return nil, err
	}
	var decks []model.FlashcardDeck
	for _, deck := range doc.Decks {
		if deck.UserID == userID {
			decks = append(decks, deck)
		}
	}
	return decks, nil
}

func (ds *FlashcardRepository) GetUserReviews(userID string) ([]model.ReviewLog, error) {
	doc, err := ds.Load()
	if err != nil {
		return nil, err
	}
	var reviews []model.ReviewLog
	for _, review := range doc.Reviews {
		if review.UserID == userID {
			reviews = append(reviews, review)
		}
	}
	return reviews, nil
}

func UserCards(doc *model.FlashcardsDocument, userID string) []model.Flashcard {
	var cards []model.Flashcard
	for _, card := range doc.Cards {
		if card.UserID == userID {
			cards = append(cards, card)
		}
	}
	return cards
}

// FindCard returns the index of the user's card, or -1.
func FindCard(doc *model.FlashcardsDocument, userID, cardID string) int {
	for i := range doc.Cards {
		if doc.Cards[i].ID == cardID && doc.Cards[i].UserID == userID {
			return i
		}
	}
	return -1
}

// FindDeck returns the index of the user's deck, or -1.
func FindDeck(doc *model.FlashcardsDocument, userID, deckID string) int {
	for i := range doc.Decks {
		if doc.Decks[i].ID == deckID && doc.Decks[i].UserID == userID {
			return i
		}
	}
	return -1
}
