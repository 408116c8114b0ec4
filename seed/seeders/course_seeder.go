package seeders

import (
	"fmt"
	"os"
	"time"

	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/services/repositories"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Catalog is the layout of the course seed file.
type Catalog struct {
	Courses []model.Course `yaml:"courses"`
}

// CourseSeeder loads the course catalog from YAML into the store
type CourseSeeder struct {
	courseRepo *repositories.CourseRepository
}

func NewCourseSeeder(store repositories.DocumentStore) *CourseSeeder {
	return &CourseSeeder{courseRepo: repositories.NewCourseRepository(store)}
}

// LoadCatalog parses and checks a catalog file. Ids must be unique at every level.
func LoadCatalog(path string) ([]model.Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if len(catalog.Courses) == 0 {
		return nil, fmt.Errorf("catalog %s has no courses", path)
	}

	if err := checkCatalog(catalog.Courses); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return catalog.Courses, nil
}

func checkCatalog(courses []model.Course) error {
	courseIDs := map[string]bool{}
	for _, course := range courses {
		if course.ID == "" || course.Title == "" {
			return fmt.Errorf("every course needs an id and title")
		}
		if courseIDs[course.ID] {
			return fmt.Errorf("duplicate course id %q", course.ID)
		}
		courseIDs[course.ID] = true

		unitIDs := map[string]bool{}
		for _, unit := range course.Units {
			if unit.ID == "" || unitIDs[unit.ID] {
				return fmt.Errorf("course %q: missing or duplicate unit id %q", course.ID, unit.ID)
			}
			unitIDs[unit.ID] = true

			topicIDs := map[string]bool{}
			for _, topic := range unit.Topics {
				if topic.ID == "" || topicIDs[topic.ID] {
					return fmt.Errorf("unit %q: missing or duplicate topic id %q", unit.ID, topic.ID)
				}
				topicIDs[topic.ID] = true

				questionIDs := map[string]bool{}
				for _, question := range topic.Questions {
					if question.ID == "" || questionIDs[question.ID] {
						return fmt.Errorf("topic %q: missing or duplicate question id %q", topic.ID, question.ID)
					}
					questionIDs[question.ID] = true
				}
			}
		}
	}
	return nil
}

// SeedCourses inserts new courses and replaces existing ones with the same id.
func (s *CourseSeeder) SeedCourses(path string) error {
	courses, err := LoadCatalog(path)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for i := range courses {
		if courses[i].CreatedAt.IsZero() {
			courses[i].CreatedAt = now
		}
	}

	created, updated, err := s.courseRepo.UpsertCourses(courses)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"created": created,
		"updated": updated,
	}).Info("Course seeding completed successfully")
	return nil
}
