package dto

import (
	"time"

	"github.com/lac-hong-legacy/study_api/model"
)

type SubmitReviewRequest struct {
	UserID string `json:"user_id" validate:"required"`
	CardID string `json:"card_id" validate:"required"`
	Rating string `json:"rating" validate:"required,oneof=again hard good easy"`
}

func (r SubmitReviewRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ResetCardsRequest struct {
	UserID  string   `json:"user_id" validate:"required"`
	CardIDs []string `json:"card_ids" validate:"required,min=1,dive,required"`
}

func (r ResetCardsRequest) Validate() error {
	return GetValidator().Struct(r)
}

type RescheduleRequest struct {
	UserID       string    `json:"user_id" validate:"required"`
	CardID       string    `json:"card_id" validate:"required"`
	NextReviewAt time.Time `json:"next_review_at" validate:"required"`
}

func (r RescheduleRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ReviewResultResponse struct {
	Card         model.Flashcard `json:"card"`
	Rating       string          `json:"rating"`
	DelayMinutes int             `json:"delay_minutes"`
	NextReviewAt time.Time       `json:"next_review_at"`
}

type DueCardsResponse struct {
	Cards []model.Flashcard `json:"cards"`
	Total int               `json:"total"` // due cards before the limit was applied
	Limit int               `json:"limit"`
}

type ReviewStatsResponse struct {
	TotalCards         int            `json:"total_cards"`
	DueCards           int            `json:"due_cards"`
	NewCards           int            `json:"new_cards"`
	LearningCards      int            `json:"learning_cards"`
	MasteredCards      int            `json:"mastered_cards"`
	ReviewsToday       int            `json:"reviews_today"`
	TotalReviews       int            `json:"total_reviews"`
	RatingDistribution map[string]int `json:"rating_distribution"`
	Accuracy           float64        `json:"accuracy"`
}
