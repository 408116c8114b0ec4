package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/shared"
)

type UserHandler struct {
	userSvc UserServiceInterface
}

func NewUserHandler(userSvc UserServiceInterface) *UserHandler {
	return &UserHandler{
		userSvc: userSvc,
	}
}

// @Summary Create user
// @Description Create a user profile. The id is generated when omitted.
// @Tags users
// @Accept json
// @Produce json
// @Param createRequest body dto.CreateUserRequest true "User"
// @Success 201 {object} shared.Response{data=model.User}
// @Failure 400 {object} shared.Response
// @Failure 409 {object} shared.Response
// @Router /api/v1/users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	user, err := h.userSvc.CreateUser(req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, user)
}

// @Summary Get user
// @Description Get a user profile
// @Tags users
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} shared.Response{data=model.User}
// @Failure 404 {object} shared.Response
// @Router /api/v1/users/{userId} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userSvc.GetUser(c.Params("userId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, user)
}

// @Summary Update user
// @Description Update the fields of a user profile that are present in the body
// @Tags users
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param updateRequest body dto.UpdateUserRequest true "Profile fields"
// @Success 200 {object} shared.Response{data=model.User}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/users/{userId} [patch]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	user, err := h.userSvc.UpdateUser(c.Params("userId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, user)
}

// @Summary Get progress
// @Description Get a user's progress, optionally limited to one course
// @Tags progress
// @Accept json
// @Produce json
// @Param userId query string true "User ID"
// @Param courseId query string false "Course ID"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/progress [get]
func (h *UserHandler) GetProgress(c *fiber.Ctx) error {
	userID, err := requireUserID(c, "")
	if err != nil {
		return err
	}

	progress, err := h.userSvc.GetProgress(userID, queryParam(c, "courseId", "course_id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, progress)
}

// @Summary Update progress
// @Description Record an answer, time spent or completion on a topic
// @Tags progress
// @Accept json
// @Produce json
// @Param progressRequest body dto.ProgressUpdateRequest true "Progress update"
// @Success 200 {object} shared.Response{data=model.CourseProgress}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/progress/update [post]
func (h *UserHandler) UpdateProgress(c *fiber.Ctx) error {
	var req dto.ProgressUpdateRequest
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

	progress, err := h.userSvc.UpdateProgress(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, progress)
}
