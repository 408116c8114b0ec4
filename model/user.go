package model

import "time"

type User struct {
	ID                     string           `json:"id"`
	Name                   string           `json:"name"`
	Email                  string           `json:"email"`
	Avatar                 string           `json:"avatar,omitempty"`
	TelegramChatID         int64            `json:"telegram_chat_id,omitempty"`
	CourseProgress         []CourseProgress `json:"course_progress"`
	Streak                 int              `json:"streak"`
	LongestStreak          int              `json:"longest_streak"`
	TotalStudyMinutes      int              `json:"total_study_minutes"`
	TotalQuestionsAnswered int              `json:"total_questions_answered"`
	TotalCorrectAnswers    int              `json:"total_correct_answers"`
	LastActiveAt           *time.Time       `json:"last_active_at"`
	LastRemindedAt         *time.Time       `json:"last_reminded_at,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// CourseProgress is created on the first progress update for a course and never deleted.
type CourseProgress struct {
	CourseID         string         `json:"course_id"`
	Completion       float64        `json:"completion"` // 0-100
	Units            []UnitProgress `json:"units"`
	TimeSpentMinutes int            `json:"time_spent_minutes"`
	StartedAt        time.Time      `json:"started_at"`
	LastAccessedAt   time.Time      `json:"last_accessed_at"`
}

type UnitProgress struct {
	UnitID     string          `json:"unit_id"`
	Completion float64         `json:"completion"`
	Topics     []TopicProgress `json:"topics"`
}

type TopicProgress struct {
	TopicID            string    `json:"topic_id"`
	Completion         float64   `json:"completion"`
	Completed          bool      `json:"completed"`
	AttemptedQuestions []string  `json:"attempted_questions"`
	CorrectQuestions   []string  `json:"correct_questions"`
	TimeSpentMinutes   int       `json:"time_spent_minutes"`
	LastAccessedAt     time.Time `json:"last_accessed_at"`
}

func (u *User) FindCourseProgress(courseID string) *CourseProgress {
	for i := range u.CourseProgress {
		if u.CourseProgress[i].CourseID == courseID {
			return &u.CourseProgress[i]
		}
	}
	return nil
}

func (cp *CourseProgress) FindUnit(unitID string) *UnitProgress {
	for i := range cp.Units {
		if cp.Units[i].UnitID == unitID {
			return &cp.Units[i]
		}
	}
	return nil
}

func (up *UnitProgress) FindTopic(topicID string) *TopicProgress {
	for i := range up.Topics {
		if up.Topics[i].TopicID == topicID {
			return &up.Topics[i]
		}
	}
	return nil
}
