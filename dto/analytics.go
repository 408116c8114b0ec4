package dto

type OverviewResponse struct {
	UserID             string  `json:"user_id"`
	TotalStudyMinutes  int     `json:"total_study_minutes"`
	TotalSessions      int     `json:"total_sessions"`
	AverageSessionMins float64 `json:"average_session_minutes"`
	QuestionsAnswered  int     `json:"questions_answered"`
	CorrectAnswers     int     `json:"correct_answers"`
	Accuracy           float64 `json:"accuracy"`
	TopicsCompleted    int     `json:"topics_completed"`
	CoursesInProgress  int     `json:"courses_in_progress"`
	CoursesCompleted   int     `json:"courses_completed"`
	TotalCards         int     `json:"total_cards"`
	DueCards           int     `json:"due_cards"`
	MasteredCards      int     `json:"mastered_cards"`
	TotalReviews       int     `json:"total_reviews"`
	Streak             int     `json:"streak"`
	LongestStreak      int     `json:"longest_streak"`
	ActiveGoals        int     `json:"active_goals"`
	CompletedGoals     int     `json:"completed_goals"`
}

type DailyActivity struct {
	Date              string `json:"date"` // YYYY-MM-DD
	StudyMinutes      int    `json:"study_minutes"`
	Sessions          int    `json:"sessions"`
	Reviews           int    `json:"reviews"`
	QuestionsAnswered int    `json:"questions_answered"`
}

type TopicPerformance struct {
	CourseID         string  `json:"course_id"`
	UnitID           string  `json:"unit_id"`
	TopicID          string  `json:"topic_id"`
	TopicTitle       string  `json:"topic_title"`
	Attempted        int     `json:"attempted"`
	Correct          int     `json:"correct"`
	Accuracy         float64 `json:"accuracy"`
	Completion       float64 `json:"completion"`
	TimeSpentMinutes int     `json:"time_spent_minutes"`
}
