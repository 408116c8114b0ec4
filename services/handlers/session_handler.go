package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/shared"
)

type StudySessionHandler struct {
	sessionSvc StudySessionServiceInterface
}

func NewStudySessionHandler(sessionSvc StudySessionServiceInterface) *StudySessionHandler {
	return &StudySessionHandler{
		sessionSvc: sessionSvc,
	}
}

// @Summary List study sessions
// @Description Get a user's study sessions, newest first, optionally within a time range
// @Tags sessions
// @Accept json
// @Produce json
// @Param userId query string true "User ID"
// @Param from query string false "RFC3339 lower bound on startedAt"
// @Param to query string false "RFC3339 upper bound on startedAt"
// @Success 200 {object} shared.Response{data=[]model.StudySession}
// @Failure 400 {object} shared.Response
// @Router /api/v1/sessions [get]
func (h *StudySessionHandler) GetSessions(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return err
	}

	sessions, err := h.sessionSvc.GetUserSessions(userID, from, to)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, sessions)
}

// @Summary Create study session
// @Description Log a finished study session
// @Tags sessions
// @Accept json
// @Produce json
// @Param createRequest body dto.CreateSessionRequest true "Session"
// @Success 201 {object} shared.Response{data=model.StudySession}
// @Failure 400 {object} shared.Response
// @Router /api/v1/sessions [post]
func (h *StudySessionHandler) CreateSession(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	userID, err := requireUserID(c, req.UserID)
	if err != nil {
		return err
	}
	req.UserID = userID

	if err := validateRequest(req); err != nil {
		return err
	}

	session, err := h.sessionSvc.CreateSession(req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, session)
}

// @Summary Study session stats
// @Description Get totals, averages and per-course minutes for a user's sessions
// @Tags sessions
// @Accept json
// @Produce json
// @Param userId query string true "User ID"
// @Success 200 {object} shared.Response{data=dto.SessionStatsResponse}
// @Failure 400 {object} shared.Response
// @Router /api/v1/sessions/stats [get]
func (h *StudySessionHandler) GetSessionStats(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	stats, err := h.sessionSvc.GetSessionStats(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, stats)
}

// @Summary Get study session
// @Tags sessions
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param userId query string true "User ID"
// @Success 200 {object} shared.Response{data=model.StudySession}
// @Failure 404 {object} shared.Response
// @Router /api/v1/sessions/{sessionId} [get]
func (h *StudySessionHandler) GetSession(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	session, err := h.sessionSvc.GetSession(userID, c.Params("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, session)
}

// @Summary Delete study session
// @Tags sessions
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param userId query string true "User ID"
// @Success 200 {object} shared.Response{data=map[string]string}
// @Failure 404 {object} shared.Response
// @Router /api/v1/sessions/{sessionId} [delete]
func (h *StudySessionHandler) DeleteSession(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	sessionID := c.Params("sessionId")
	if err := h.sessionSvc.DeleteSession(userID, sessionID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, fiber.Map{"id": sessionID})
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, shared.NewBadRequestError(err, key+" must be an RFC3339 timestamp")
	}
	return &t, nil
}
