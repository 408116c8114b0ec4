package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/shared"
)

type StudyGoalHandler struct {
	goalSvc StudyGoalServiceInterface
}

func NewStudyGoalHandler(goalSvc StudyGoalServiceInterface) *StudyGoalHandler {
	return &StudyGoalHandler{
		goalSvc: goalSvc,
	}
}

// @Summary List goals
// @Description Get a user's goals, or one goal when goalId is given
// @Tags goals
// @Accept json
// @Produce json
// @Param userId query string true "User ID"
// @Param goalId query string false "Goal ID"
// @Param status query string false "active, completed or expired"
// @Success 200 {object} shared.Response{data=[]model.StudyGoal}
// @Failure 400 {object} shared.Response
// @Router /api/v1/goals [get]
func (h *StudyGoalHandler) GetGoals(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	if goalID := queryParam(c, "goalId", "goal_id"); goalID != "" {
		goal, err := h.goalSvc.GetGoal(userID, goalID)
		if err != nil {
			return err
		}
		return shared.ResponseJSON(c, fiber.StatusOK, goal)
	}

	goals, err := h.goalSvc.GetUserGoals(userID, c.Query("status"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, goals)
}

// @Summary Create goal
// @Description Create a study goal. Daily and weekly goals restart every period.
// @Tags goals
// @Accept json
// @Produce json
// @Param createRequest body dto.CreateGoalRequest true "Goal"
// @Success 201 {object} shared.Response{data=model.StudyGoal}
// @Failure 400 {object} shared.Response
// @Router /api/v1/goals [post]
func (h *StudyGoalHandler) CreateGoal(c *fiber.Ctx) error {
	var req dto.CreateGoalRequest
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

	goal, err := h.goalSvc.CreateGoal(req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, goal)
}

// @Summary Update goal
// @Description Change a goal's title, target, period or deadline
// @Tags goals
// @Accept json
// @Produce json
// @Param updateRequest body dto.UpdateGoalRequest true "Goal fields"
// @Success 200 {object} shared.Response{data=model.StudyGoal}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/goals [put]
func (h *StudyGoalHandler) UpdateGoal(c *fiber.Ctx) error {
	var req dto.UpdateGoalRequest
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

	goal, err := h.goalSvc.UpdateGoal(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, goal)
}

// @Summary Progress or reset goal
// @Description Add amount to a goal's progress, or reset it with action "reset"
// @Tags goals
// @Accept json
// @Produce json
// @Param actionRequest body dto.GoalActionRequest true "Goal action"
// @Success 200 {object} shared.Response{data=model.StudyGoal}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Failure 409 {object} shared.Response
// @Router /api/v1/goals [patch]
func (h *StudyGoalHandler) ActOnGoal(c *fiber.Ctx) error {
	var req dto.GoalActionRequest
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

	var result interface{}
	if req.Action == "reset" {
		result, err = h.goalSvc.ResetGoal(req.UserID, req.GoalID)
	} else {
		result, err = h.goalSvc.ProgressGoal(req.UserID, req.GoalID, req.Amount)
	}
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, result)
}

// @Summary Delete goal
// @Tags goals
// @Accept json
// @Produce json
// @Param userId query string true "User ID"
// @Param goalId query string true "Goal ID"
// @Success 200 {object} shared.Response{data=map[string]string}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/goals [delete]
func (h *StudyGoalHandler) DeleteGoal(c *fiber.Ctx) error {
	var body struct {
		UserID      string `json:"user_id"`
		GoalID      string `json:"goal_id"`
		GoalIDCamel string `json:"goalId"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}

	userID, err := requireUserID(c, body.UserID)
	if err != nil {
		return err
	}

	goalID := body.GoalID
	if goalID == "" {
		goalID = body.GoalIDCamel
	}
	if goalID == "" {
		goalID = queryParam(c, "goalId", "goal_id")
	}
	if goalID == "" {
		return shared.NewBadRequestError(nil, "goalId is required")
	}

	if err := h.goalSvc.DeleteGoal(userID, goalID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, fiber.Map{"id": goalID})
}
