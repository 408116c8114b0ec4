package seeders

import (
	"github.com/lac-hong-legacy/study_api/services/repositories"
	log "github.com/sirupsen/logrus"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	store repositories.DocumentStore
}

func NewMainSeeder(store repositories.DocumentStore) *MainSeeder {
	return &MainSeeder{store: store}
}

// SeedAll seeds the catalog, then the demo data when withDemo is set
func (s *MainSeeder) SeedAll(catalogPath string, withDemo bool) error {
	log.Info("Starting seeding...")

	if err := s.SeedCoursesOnly(catalogPath); err != nil {
		return err
	}

	if withDemo {
		if err := s.SeedDemoOnly(); err != nil {
			log.WithError(err).Error("Demo seeding failed")
			return err
		}
	}

	log.Info("Seeding completed successfully!")
	return nil
}

func (s *MainSeeder) SeedCoursesOnly(catalogPath string) error {
	if err := NewCourseSeeder(s.store).SeedCourses(catalogPath); err != nil {
		log.WithError(err).Error("Course seeding failed")
		return err
	}
	return nil
}

func (s *MainSeeder) SeedDemoOnly() error {
	return NewDemoSeeder(s.store).SeedDemo()
}
