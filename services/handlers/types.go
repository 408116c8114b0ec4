package handlers

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/shared"
)

type CourseServiceInterface interface {
	GetCourses() ([]dto.CourseSummaryResponse, error)
	GetCourse(courseID string) (*model.Course, error)
	GetUnit(courseID, unitID string) (*model.Unit, error)
	GetTopic(courseID, unitID, topicID string) (*model.Topic, error)
}

type UserServiceInterface interface {
	CreateUser(req dto.CreateUserRequest) (*model.User, error)
	GetUser(userID string) (*model.User, error)
	UpdateUser(userID string, req dto.UpdateUserRequest) (*model.User, error)
	GetProgress(userID, courseID string) (*dto.ProgressResponse, error)
	UpdateProgress(req dto.ProgressUpdateRequest) (*model.CourseProgress, error)
}

type FlashcardServiceInterface interface {
	GetUserCards(userID, deckID, tag string) ([]model.Flashcard, error)
	GetCard(userID, cardID string) (*model.Flashcard, error)
	CreateCard(req dto.CreateCardRequest) (*model.Flashcard, error)
	UpdateCard(cardID string, req dto.UpdateCardRequest) (*model.Flashcard, error)
	DeleteCard(userID, cardID string) error
	GetUserDecks(userID string) ([]dto.DeckResponse, error)
	GetDeck(userID, deckID string) (*dto.DeckResponse, error)
	CreateDeck(req dto.CreateDeckRequest) (*dto.DeckResponse, error)
	UpdateDeck(req dto.UpdateDeckRequest) (*dto.DeckResponse, error)
	DeleteDeck(userID, deckID string) error
	ImportCards(userID, deckName, filename string, reader io.Reader) (*dto.ImportResult, error)
}

type SpacedRepetitionServiceInterface interface {
	GetDueCards(userID string, limit int, deckID string) (*dto.DueCardsResponse, error)
	SubmitReview(req dto.SubmitReviewRequest) (*dto.ReviewResultResponse, error)
	ResetCards(req dto.ResetCardsRequest) ([]model.Flashcard, error)
	Reschedule(req dto.RescheduleRequest) (*model.Flashcard, error)
	GetStats(userID string) (*dto.ReviewStatsResponse, error)
}

type StudySessionServiceInterface interface {
	GetUserSessions(userID string, from, to *time.Time) ([]model.StudySession, error)
	GetSession(userID, sessionID string) (*model.StudySession, error)
	CreateSession(req dto.CreateSessionRequest) (*model.StudySession, error)
	DeleteSession(userID, sessionID string) error
	GetSessionStats(userID string) (*dto.SessionStatsResponse, error)
}

type StudyGoalServiceInterface interface {
	GetUserGoals(userID, status string) ([]model.StudyGoal, error)
	GetGoal(userID, goalID string) (*model.StudyGoal, error)
	CreateGoal(req dto.CreateGoalRequest) (*model.StudyGoal, error)
	UpdateGoal(req dto.UpdateGoalRequest) (*model.StudyGoal, error)
	ProgressGoal(userID, goalID string, amount int) (*model.StudyGoal, error)
	ResetGoal(userID, goalID string) (*model.StudyGoal, error)
	DeleteGoal(userID, goalID string) error
}

type AnalyticsServiceInterface interface {
	GetOverview(userID string) (*dto.OverviewResponse, error)
	GetDailyActivity(userID string, days int) ([]dto.DailyActivity, error)
	GetTopicPerformance(userID string) ([]dto.TopicPerformance, error)
}

type BackupServiceInterface interface {
	CreateBackup() (*dto.BackupResponse, error)
	ListBackups() ([]dto.BackupResponse, error)
	RestoreBackup(prefix string) (*dto.RestoreBackupResponse, error)
}

type RateLimitServiceInterface interface {
	GetRateLimitStats() dto.RateLimitStats
}

var errUserIDRequired = shared.NewBadRequestError(nil, "userId is required")

// requireUserID resolves the acting user. A verified token wins over the body,
// and the body wins over the query string. Bodies may use user_id or userId.
func requireUserID(c *fiber.Ctx, fromBody string) (string, error) {
	if userID, ok := c.Locals(shared.UserID).(string); ok && userID != "" {
		return userID, nil
	}
	if fromBody == "" {
		fromBody = camelBodyUserID(c)
	}
	if fromBody != "" {
		return fromBody, nil
	}
	if userID := c.Query("userId", c.Query("user_id")); userID != "" {
		return userID, nil
	}
	return "", errUserIDRequired
}

type camelUserIDBody struct {
	UserID string `json:"userId"`
}

func camelBodyUserID(c *fiber.Ctx) string {
	if len(c.Body()) == 0 || !c.Is("json") {
		return ""
	}
	var body camelUserIDBody
	if err := shared.JSON.Unmarshal(c.Body(), &body); err != nil {
		return ""
	}
	return body.UserID
}

// queryParam reads the camelCase key first, then its snake_case form.
func queryParam(c *fiber.Ctx, camel, snake string) string {
	return c.Query(camel, c.Query(snake))
}

func validateRequest(req dto.Validator) error {
	if err := req.Validate(); err != nil {
		return dto.NewValidationError(err)
	}
	return nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}
	return nil
}
