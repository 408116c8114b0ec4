package dto

import "time"

type CreateGoalRequest struct {
	UserID   string     `json:"user_id" validate:"required"`
	Title    string     `json:"title" validate:"required,notblank,max=200"`
	Type     string     `json:"type" validate:"required,oneof=study_minutes cards_reviewed questions_answered topics_completed sessions"`
	Target   int        `json:"target" validate:"required,gt=0"`
	Period   string     `json:"period" validate:"omitempty,oneof=daily weekly once"`
	Deadline *time.Time `json:"deadline"`
}

func (r CreateGoalRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateGoalRequest struct {
	UserID   string     `json:"user_id" validate:"required"`
	GoalID   string     `json:"goal_id" validate:"required"`
	Title    *string    `json:"title" validate:"omitempty,notblank,max=200"`
	Target   *int       `json:"target" validate:"omitempty,gt=0"`
	Period   *string    `json:"period" validate:"omitempty,oneof=daily weekly once"`
	Deadline *time.Time `json:"deadline"`
}

func (r UpdateGoalRequest) Validate() error {
	return GetValidator().Struct(r)
}

// GoalActionRequest backs PATCH /goals: "progress" adds Amount, "reset" zeroes the goal.
type GoalActionRequest struct {
	UserID string `json:"user_id" validate:"required"`
	GoalID string `json:"goal_id" validate:"required"`
	Action string `json:"action" validate:"omitempty,oneof=progress reset"`
	Amount int    `json:"amount" validate:"min=0"`
}

func (r GoalActionRequest) Validate() error {
	return GetValidator().Struct(r)
}
