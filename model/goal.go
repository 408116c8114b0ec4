package model

import "time"

type StudyGoal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Type        string     `json:"type"` // study_minutes, cards_reviewed, questions_answered, topics_completed, sessions
	Target      int        `json:"target"`
	Progress    int        `json:"progress"`
	Period      string     `json:"period"` // daily, weekly, once
	Deadline    *time.Time `json:"deadline"`
	Status      string     `json:"status"` // active, completed, expired
	CompletedAt *time.Time `json:"completed_at"`
	// PeriodStartedAt is the start of the day or week the progress counts toward.
	PeriodStartedAt time.Time `json:"period_started_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
