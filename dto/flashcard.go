package dto

import "time"

type CreateCardRequest struct {
	UserID     string   `json:"user_id" validate:"required"`
	Front      string   `json:"front" validate:"required,notblank,max=2000"`
	Back       string   `json:"back" validate:"required,notblank,max=2000"`
	Tags       []string `json:"tags" validate:"omitempty,max=20,dive,notblank,max=50"`
	Difficulty string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	CourseID   string   `json:"course_id"`
	TopicID    string   `json:"topic_id"`
	DeckID     string   `json:"deck_id"`
}

func (r CreateCardRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateCardRequest struct {
	UserID     string    `json:"user_id" validate:"required"`
	Front      *string   `json:"front" validate:"omitempty,notblank,max=2000"`
	Back       *string   `json:"back" validate:"omitempty,notblank,max=2000"`
	Tags       *[]string `json:"tags" validate:"omitempty,max=20,dive,notblank,max=50"`
	Difficulty *string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

func (r UpdateCardRequest) Validate() error {
	return GetValidator().Struct(r)
}

type CreateDeckRequest struct {
	UserID      string   `json:"user_id" validate:"required"`
	Name        string   `json:"name" validate:"required,notblank,max=100"`
	Description string   `json:"description" validate:"max=500"`
	CardIDs     []string `json:"card_ids"`
}

func (r CreateDeckRequest) Validate() error {
	return GetValidator().Struct(r)
}

// UpdateDeckRequest replaces CardIDs when set; AddCardIDs and RemoveCardIDs are
// applied afterwards with set semantics.
type UpdateDeckRequest struct {
	UserID        string    `json:"user_id" validate:"required"`
	DeckID        string    `json:"deck_id" validate:"required"`
	Name          *string   `json:"name" validate:"omitempty,notblank,max=100"`
	Description   *string   `json:"description" validate:"omitempty,max=500"`
	CardIDs       *[]string `json:"card_ids"`
	AddCardIDs    []string  `json:"add_card_ids"`
	RemoveCardIDs []string  `json:"remove_card_ids"`
}

func (r UpdateDeckRequest) Validate() error {
	return GetValidator().Struct(r)
}

type DeckResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CardIDs     []string  `json:"card_ids"`
	CardCount   int       `json:"card_count"`
	DueCount    int       `json:"due_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ImportResult struct {
	DeckID    string   `json:"deck_id"`
	TotalRows int      `json:"total_rows"`
	Created   int      `json:"created"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
	CardIDs   []string `json:"card_ids"`
}
