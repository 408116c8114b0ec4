package dto

import "github.com/lac-hong-legacy/study_api/model"

type CreateUserRequest struct {
	ID             string `json:"id" validate:"omitempty,max=100"`
	Name           string `json:"name" validate:"required,notblank,max=100"`
	Email          string `json:"email" validate:"omitempty,email"`
	Avatar         string `json:"avatar" validate:"omitempty,url"`
	TelegramChatID int64  `json:"telegram_chat_id"`
}

func (r CreateUserRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateUserRequest struct {
	Name           *string `json:"name" validate:"omitempty,notblank,max=100"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Avatar         *string `json:"avatar" validate:"omitempty,url"`
	TelegramChatID *int64  `json:"telegram_chat_id"`
}

func (r UpdateUserRequest) Validate() error {
	return GetValidator().Struct(r)
}

// ProgressUpdateRequest records activity on one topic. QuestionID and Correct
// describe a single answer; TimeSpentMinutes and Completed may be sent alone.
type ProgressUpdateRequest struct {
	UserID           string `json:"user_id" validate:"required"`
	CourseID         string `json:"course_id" validate:"required"`
	UnitID           string `json:"unit_id" validate:"required"`
	TopicID          string `json:"topic_id" validate:"required"`
	QuestionID       string `json:"question_id"`
	Correct          bool   `json:"correct"`
	TimeSpentMinutes int    `json:"time_spent_minutes" validate:"min=0,max=1440"`
	Completed        bool   `json:"completed"`
}

func (r ProgressUpdateRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ProgressResponse struct {
	UserID                 string                 `json:"user_id"`
	Streak                 int                    `json:"streak"`
	LongestStreak          int                    `json:"longest_streak"`
	TotalStudyMinutes      int                    `json:"total_study_minutes"`
	TotalQuestionsAnswered int                    `json:"total_questions_answered"`
	TotalCorrectAnswers    int                    `json:"total_correct_answers"`
	Courses                []model.CourseProgress `json:"courses"`
}
