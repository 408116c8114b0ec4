package dto

import "time"

type CreateSessionRequest struct {
	UserID            string     `json:"user_id" validate:"required"`
	CourseID          string     `json:"course_id"`
	TopicID           string     `json:"topic_id"`
	DurationMinutes   int        `json:"duration_minutes" validate:"required,gt=0,max=1440"`
	StartedAt         *time.Time `json:"started_at"`
	Notes             string     `json:"notes" validate:"max=2000"`
	CardsReviewed     int        `json:"cards_reviewed" validate:"min=0"`
	QuestionsAnswered int        `json:"questions_answered" validate:"min=0"`
}

func (r CreateSessionRequest) Validate() error {
	return GetValidator().Struct(r)
}

type SessionStatsResponse struct {
	TotalSessions     int            `json:"total_sessions"`
	TotalMinutes      int            `json:"total_minutes"`
	AverageMinutes    float64        `json:"average_minutes"`
	LongestMinutes    int            `json:"longest_minutes"`
	ThisWeekMinutes   int            `json:"this_week_minutes"`
	MinutesByCourse   map[string]int `json:"minutes_by_course"`
	LastSessionAt     *time.Time     `json:"last_session_at"`
	CardsReviewed     int            `json:"cards_reviewed"`
	QuestionsAnswered int            `json:"questions_answered"`
}
