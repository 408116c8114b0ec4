package model

import "time"

// Each document holds one JSON array per entity family and is persisted whole.

type CoursesDocument struct {
	Courses []Course `json:"courses"`
}

type UsersDocument struct {
	Users []User `json:"users"`
}

type FlashcardsDocument struct {
	Cards   []Flashcard     `json:"cards"`
	Decks   []FlashcardDeck `json:"decks"`
	Reviews []ReviewLog     `json:"reviews"`
}

type SessionsDocument struct {
	Sessions []StudySession `json:"sessions"`
}

type GoalsDocument struct {
	Goals []StudyGoal `json:"goals"`
}

// DocumentRecord is the row shape used by the SQL document backend.
type DocumentRecord struct {
	Name      string    `json:"name" gorm:"primaryKey;size:64"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (DocumentRecord) TableName() string { return "documents" }
