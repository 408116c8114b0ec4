package dto

type CourseSummaryResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Subject       string `json:"subject"`
	Level         string `json:"level"`
	UnitCount     int    `json:"unit_count"`
	TopicCount    int    `json:"topic_count"`
	QuestionCount int    `json:"question_count"`
}
