package shared

const (
	UserID = "user_id"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeShortAnswer    = "short_answer"

	RatingAgain = "again"
	RatingHard  = "hard"
	RatingGood  = "good"
	RatingEasy  = "easy"

	GoalTypeStudyMinutes      = "study_minutes"
	GoalTypeCardsReviewed     = "cards_reviewed"
	GoalTypeQuestionsAnswered = "questions_answered"
	GoalTypeTopicsCompleted   = "topics_completed"
	GoalTypeSessions          = "sessions"

	GoalPeriodDaily  = "daily"
	GoalPeriodWeekly = "weekly"
	GoalPeriodOnce   = "once"

	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusExpired   = "expired"

	DocCourses    = "courses"
	DocUsers      = "users"
	DocFlashcards = "flashcards"
	DocSessions   = "sessions"
	DocGoals      = "goals"
)

// Documents lists every document the store knows how to default.
var Documents = []string{DocCourses, DocUsers, DocFlashcards, DocSessions, DocGoals}
