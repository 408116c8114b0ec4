package model

import "time"

type StudySession struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	CourseID          string    `json:"course_id,omitempty"`
	TopicID           string    `json:"topic_id,omitempty"`
	DurationMinutes   int       `json:"duration_minutes"`
	StartedAt         time.Time `json:"started_at"`
	EndedAt           time.Time `json:"ended_at"`
	Notes             string    `json:"notes,omitempty"`
	CardsReviewed     int       `json:"cards_reviewed"`
	QuestionsAnswered int       `json:"questions_answered"`
	CreatedAt         time.Time `json:"created_at"`
}
