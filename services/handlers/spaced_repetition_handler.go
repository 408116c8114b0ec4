package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/shared"
)

type SpacedRepetitionHandler struct {
	reviewSvc SpacedRepetitionServiceInterface
}

func NewSpacedRepetitionHandler(reviewSvc SpacedRepetitionServiceInterface) *SpacedRepetitionHandler {
	return &SpacedRepetitionHandler{
		reviewSvc: reviewSvc,
	}
}

// @Summary Get due cards
// @Description Get the cards due for review, earliest first
// @Tags spaced-repetition
// @Accept json
// @Produce json
// @Param userId query string true "User ID"
// @Param limit query int false "Maximum cards" default(20)
// @Param deckId query string false "Deck ID"
// @Success 200 {object} shared.Response{data=dto.DueCardsResponse}
// @Failure 400 {object} shared.Response
// @Router /api/v1/spaced-repetition [get]
func (h *SpacedRepetitionHandler) GetDueCards(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return shared.NewBadRequestError(err, "limit must be a positive integer")
		}
	}

	cards, err := h.reviewSvc.GetDueCards(userID, limit, queryParam(c, "deckId", "deck_id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, cards)
}

// @Summary Submit review
// @Description Rate a card (again, hard, good or easy) and schedule its next review
// @Tags spaced-repetition
// @Accept json
// @Produce json
// @Param reviewRequest body dto.SubmitReviewRequest true "Review"
// @Success 200 {object} shared.Response{data=dto.ReviewResultResponse}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/spaced-repetition [post]
func (h *SpacedRepetitionHandler) SubmitReview(c *fiber.Ctx) error {
	var req dto.SubmitReviewRequest
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

	result, err := h.reviewSvc.SubmitReview(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, result)
}

// @Summary Reset cards
// @Description Return cards to the new state so they are due immediately
// @Tags spaced-repetition
// @Accept json
// @Produce json
// @Param resetRequest body dto.ResetCardsRequest true "Cards to reset"
// @Success 200 {object} shared.Response{data=[]model.Flashcard}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/spaced-repetition [put]
func (h *SpacedRepetitionHandler) ResetCards(c *fiber.Ctx) error {
	var req dto.ResetCardsRequest
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

	cards, err := h.reviewSvc.ResetCards(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, cards)
}

// @Summary Reschedule card
// @Description Move a card's next review to the given time
// @Tags spaced-repetition
// @Accept json
// @Produce json
// @Param rescheduleRequest body dto.RescheduleRequest true "New review time"
// @Success 200 {object} shared.Response{data=model.Flashcard}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/spaced-repetition [patch]
func (h *SpacedRepetitionHandler) Reschedule(c *fiber.Ctx) error {
	var req dto.RescheduleRequest
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

	card, err := h.reviewSvc.Reschedule(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, card)
}

// @Summary Review stats
// @Description Get card counts by state, today's reviews and rating distribution
// @Tags spaced-repetition
// @Accept json
// @Produce json
// @Param userId query string true "User ID"
// @Success 200 {object} shared.Response{data=dto.ReviewStatsResponse}
// @Failure 400 {object} shared.Response
// @Router /api/v1/spaced-repetition/stats [get]
func (h *SpacedRepetitionHandler) GetStats(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	stats, err := h.reviewSvc.GetStats(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, stats)
}
