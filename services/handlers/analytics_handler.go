package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/study_api/shared"
)

type AnalyticsHandler struct {
	analyticsSvc AnalyticsServiceInterface
}

func NewAnalyticsHandler(analyticsSvc AnalyticsServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsSvc: analyticsSvc,
	}
}

// @Summary Analytics overview
// @Description Get a user's totals across courses, flashcards, sessions and goals
// @Tags analytics
// @Accept json
// @Produce json
// @Param userId query string true "User ID"
// @Success 200 {object} shared.Response{data=dto.OverviewResponse}
// @Failure 400 {object} shared.Response
// @Router /api/v1/analytics/overview [get]
func (h *AnalyticsHandler) GetOverview(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	overview, err := h.analyticsSvc.GetOverview(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, overview)
}

// @Summary Daily activity
// @Description Get per-day study minutes, sessions, reviews and answers
// @Tags analytics
// @Accept json
// @Produce json
// @Param userId query string true "User ID"
// @Param days query int false "Number of days" default(7)
// @Success 200 {object} shared.Response{data=[]dto.DailyActivity}
// @Failure 400 {object} shared.Response
// @Router /api/v1/analytics/daily [get]
func (h *AnalyticsHandler) GetDailyActivity(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		if days, err = strconv.Atoi(raw); err != nil {
			return shared.NewBadRequestError(err, "days must be an integer")
		}
	}

	activity, err := h.analyticsSvc.GetDailyActivity(userID, days)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, activity)
}

// @Summary Topic performance
// @Description Get accuracy per attempted topic, weakest first
// @Tags analytics
// @Accept json
// @Produce json
// @Param userId query string true "User ID"
// @Success 200 {object} shared.Response{data=[]dto.TopicPerformance}
// @Failure 400 {object} shared.Response
// @Router /api/v1/analytics/topics [get]
func (h *AnalyticsHandler) GetTopicPerformance(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	topics, err := h.analyticsSvc.GetTopicPerformance(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, topics)
}
