package model

import "time"

type Flashcard struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Front           string     `json:"front"`
	Back            string     `json:"back"`
	Tags            []string   `json:"tags"`
	Difficulty      string     `json:"difficulty"`
	CourseID        string     `json:"course_id,omitempty"`
	TopicID         string     `json:"topic_id,omitempty"`
	ReviewCount     int        `json:"review_count"`
	CorrectCount    int        `json:"correct_count"`
	Repetitions     int        `json:"repetitions"`
	IntervalMinutes int        `json:"interval_minutes"`
	LastRating      string     `json:"last_rating,omitempty"`
	LastReviewedAt  *time.Time `json:"last_reviewed_at"`
	NextReviewAt    time.Time  `json:"next_review_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FlashcardDeck references cards by id; the ids are not checked against the card list.
type FlashcardDeck struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CardIDs     []string  `json:"card_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ReviewLog struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CardID       string    `json:"card_id"`
	Rating       string    `json:"rating"`
	DelayMinutes int       `json:"delay_minutes"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

func (d *FlashcardDeck) HasCard(cardID string) bool {
	for _, id := range d.CardIDs {
		if id == cardID {
			return true
		}
	}
	return false
}
