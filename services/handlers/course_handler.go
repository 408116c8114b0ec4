package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/study_api/shared"
)

type CourseHandler struct {
	courseSvc CourseServiceInterface
}

func NewCourseHandler(courseSvc CourseServiceInterface) *CourseHandler {
	return &CourseHandler{
		courseSvc: courseSvc,
	}
}

// @Summary List courses
// @Description Get a summary of every course in the catalog
// @Tags courses
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=[]dto.CourseSummaryResponse}
// @Router /api/v1/courses [get]
func (h *CourseHandler) GetCourses(c *fiber.Ctx) error {
	courses, err := h.courseSvc.GetCourses()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, courses)
}

// @Summary Get course
// @Description Get a course with its units, topics and questions
// @Tags courses
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} shared.Response{data=model.Course}
// @Failure 404 {object} shared.Response
// @Router /api/v1/courses/{courseId} [get]
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	course, err := h.courseSvc.GetCourse(c.Params("courseId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, course)
}

// @Summary Get unit
// @Description Get one unit of a course
// @Tags courses
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param unitId path string true "Unit ID"
// @Success 200 {object} shared.Response{data=model.Unit}
// @Failure 404 {object} shared.Response
// @Router /api/v1/units/{courseId}/{unitId} [get]
func (h *CourseHandler) GetUnit(c *fiber.Ctx) error {
	unit, err := h.courseSvc.GetUnit(c.Params("courseId"), c.Params("unitId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, unit)
}

// @Summary Get topic
// @Description Get one topic with its questions
// @Tags courses
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param unitId path string true "Unit ID"
// @Param topicId path string true "Topic ID"
// @Success 200 {object} shared.Response{data=model.Topic}
// @Failure 404 {object} shared.Response
// @Router /api/v1/units/{courseId}/{unitId}/{topicId} [get]
func (h *CourseHandler) GetTopic(c *fiber.Ctx) error {
	topic, err := h.courseSvc.GetTopic(c.Params("courseId"), c.Params("unitId"), c.Params("topicId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, topic)
}
