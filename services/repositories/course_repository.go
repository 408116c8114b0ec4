package repositories

import (
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/shared"
)

// CourseRepository reads the course catalog
type CourseRepository struct {
	BaseRepository
}

func NewCourseRepository(store DocumentStore) *CourseRepository {
	return &CourseRepository{
		BaseRepository: NewBaseRepository(store, shared.DocCourses),
	}
}

func (ds *CourseRepository) GetCourses() ([]model.Course, error) {
	var doc model.CoursesDocument
	if err := ds.read(&doc); err != nil {
		return nil, err
	}
	return doc.Courses, nil
}

func (ds *CourseRepository) GetCourse(courseID string) (*model.Course, error) {
	courses, err := ds.GetCourses()
	if err != nil {
		return nil, err
	}
	for i := range courses {
		if courses[i].ID == courseID {
			return &courses[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

// UpsertCourses replaces courses with matching ids and appends the rest.
func (ds *CourseRepository) UpsertCourses(courses []model.Course) (created int, updated int, err error) {
	var doc model.CoursesDocument
	err = ds.update(&doc, func() error {
		for _, course := range courses {
			replaced := false
			for i := range doc.Courses {
				if doc.Courses[i].ID == course.ID {
					doc.Courses[i] = course
					replaced = true
					updated++
					break
				}
			}
			if !replaced {
				doc.Courses = append(doc.Courses, course)
				created++
			}
		}
		return nil
	})
	return created, updated, err
}
