package services

import (
	"github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/services/repositories"
	"github.com/lac-hong-legacy/study_api/shared"
)

type CourseService struct {
	context.DefaultService

	storeSvc   *StoreService
	redisSvc   *RedisService
	courseRepo *repositories.CourseRepository
}

const COURSE_SVC = "course_svc"

func (svc CourseService) Id() string {
	return COURSE_SVC
}

func (svc *CourseService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *CourseService) Start() error {
	svc.storeSvc = svc.Service(STORE_SVC).(*StoreService)
	svc.redisSvc, _ = svc.Service(REDIS_SVC).(*RedisService)
	svc.courseRepo = repositories.NewCourseRepository(svc.storeSvc)
	return nil
}

func (svc *CourseService) GetCourses() ([]dto.CourseSummaryResponse, error) {
	var summaries []dto.CourseSummaryResponse
	err := svc.redisSvc.Remember(cacheKey("courses"), &summaries, func() error {
		courses, err := svc.courseRepo.GetCourses()
		if err != nil {
			return err
		}

		summaries = make([]dto.CourseSummaryResponse, 0, len(courses))
		for _, course := range courses {
			summaries = append(summaries, summarizeCourse(course))
		}
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleError(err)
	}
	return summaries, nil
}

func (svc *CourseService) GetCourse(courseID string) (*model.Course, error) {
	var course model.Course
	err := svc.redisSvc.Remember(cacheKey("course", courseID), &course, func() error {
		found, err := svc.courseRepo.GetCourse(courseID)
		if err != nil {
			return err
		}
		course = *found
		return nil
	})
	if err != nil {
		return nil, svc.storeSvc.HandleLookupError(err, "Course not found")
	}
	return &course, nil
}

func (svc *CourseService) GetUnit(courseID, unitID string) (*model.Unit, error) {
	course, err := svc.GetCourse(courseID)
	if err != nil {
		return nil, err
	}

	unit := course.FindUnit(unitID)
	if unit == nil {
		return nil, shared.NewNotFoundError(nil, "Unit not found")
	}
	return unit, nil
}

func (svc *CourseService) GetTopic(courseID, unitID, topicID string) (*model.Topic, error) {
	unit, err := svc.GetUnit(courseID, unitID)
	if err != nil {
		return nil, err
	}

	topic := unit.FindTopic(topicID)
	if topic == nil {
		return nil, shared.NewNotFoundError(nil, "Topic not found")
	}
	return topic, nil
}

// SaveCourses upserts catalog entries by id and drops cached catalog reads.
func (svc *CourseService) SaveCourses(courses []model.Course) (created int, updated int, err error) {
	created, updated, err = svc.courseRepo.UpsertCourses(courses)
	if err != nil {
		return 0, 0, svc.storeSvc.HandleError(err)
	}
	svc.redisSvc.Invalidate(cacheKey("course*"))
	return created, updated, nil
}

func summarizeCourse(course model.Course) dto.CourseSummaryResponse {
	summary := dto.CourseSummaryResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Subject:     course.Subject,
		Level:       course.Level,
		UnitCount:   len(course.Units),
	}
	for _, unit := range course.Units {
		summary.TopicCount += len(unit.Topics)
		for _, topic := range unit.Topics {
			summary.QuestionCount += len(topic.Questions)
		}
	}
	return summary
}
