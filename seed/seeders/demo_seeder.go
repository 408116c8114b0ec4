package seeders

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/services/repositories"
	"github.com/lac-hong-legacy/study_api/shared"
	log "github.com/sirupsen/logrus"
)

const DemoUserID = "demo-user"

// DemoSeeder creates a demo user with a small deck of due cards
type DemoSeeder struct {
	userRepo      *repositories.UserRepository
	flashcardRepo *repositories.FlashcardRepository
}

func NewDemoSeeder(store repositories.DocumentStore) *DemoSeeder {
	return &DemoSeeder{
		userRepo:      repositories.NewUserRepository(store),
		flashcardRepo: repositories.NewFlashcardRepository(store),
	}
}

var demoCards = [][2]string{
	{"What does HTTP status 404 mean?", "The requested resource was not found"},
	{"What is a goroutine?", "A lightweight thread managed by the Go runtime"},
	{"What does ACID stand for?", "Atomicity, Consistency, Isolation, Durability"},
	{"What is spaced repetition?", "Reviewing material at increasing intervals to improve retention"},
	{"What is the time complexity of binary search?", "O(log n)"},
}

func (s *DemoSeeder) SeedDemo() error {
	now := time.Now().UTC()

	err := s.userRepo.CreateUser(&model.User{
		ID:    DemoUserID,
		Name:  "Demo Learner",
		Email: "demo@example.com",
	})
	if errors.Is(err, repositories.ErrDuplicateRecord) {
		log.Info("Demo user already exists, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	deckID, _ := uuid.NewV7()
	deck := model.FlashcardDeck{
		ID:          deckID.String(),
		UserID:      DemoUserID,
		Name:        "Getting started",
		Description: "A few cards to try the review flow",
		CardIDs:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var cards []model.Flashcard
	for _, pair := range demoCards {
		id, _ := uuid.NewV7()
		cards = append(cards, model.Flashcard{
			ID:           id.String(),
			UserID:       DemoUserID,
			Front:        pair[0],
			Back:         pair[1],
			Tags:         []string{"demo"},
			Difficulty:   shared.DifficultyMedium,
			NextReviewAt: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		deck.CardIDs = append(deck.CardIDs, id.String())
	}

	err = s.flashcardRepo.Update(func(doc *model.FlashcardsDocument) error {
		doc.Cards = append(doc.Cards, cards...)
		doc.Decks = append(doc.Decks, deck)
		return nil
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id": DemoUserID,
		"cards":   len(cards),
	}).Info("Demo data seeded")
	return nil
}
