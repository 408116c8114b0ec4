package seeders_test

import (
	"os"
	"path/filepath"

	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/seed/seeders"
	"github.com/lac-hong-legacy/study_api/services"
	"github.com/lac-hong-legacy/study_api/shared"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const catalogPath = "../courses.yaml"

func writeCatalog(body string) string {
	path := filepath.Join(GinkgoT().TempDir(), "catalog.yaml")
	Expect(os.WriteFile(path, []byte(body), 0o644)).To(Succeed())
	return path
}

var _ = Describe("LoadCatalog", func() {
	It("loads the bundled catalog", func() {
		courses, err := seeders.LoadCatalog(catalogPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(courses).NotTo(BeEmpty())

		for _, course := range courses {
			Expect(course.Units).NotTo(BeEmpty(), course.ID)
			for _, unit := range course.Units {
				Expect(unit.Topics).NotTo(BeEmpty(), unit.ID)
			}
		}
	})

	It("rejects duplicate ids", func() {
		path := writeCatalog(`
courses:
  - id: go
    title: Go
    units:
      - id: basics
        title: Basics
        topics:
          - id: vars
            title: Variables
          - id: vars
            title: Again
`)
		_, err := seeders.LoadCatalog(path)
		Expect(err).To(MatchError(ContainSubstring(`duplicate topic id "vars"`)))
	})

	It("rejects empty catalogs and bad yaml", func() {
		_, err := seeders.LoadCatalog(writeCatalog("courses: []\n"))
		Expect(err).To(HaveOccurred())

		_, err = seeders.LoadCatalog(writeCatalog("courses: [\n"))
		Expect(err).To(HaveOccurred())

		_, err = seeders.LoadCatalog(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("MainSeeder", func() {
	var store *services.StoreService

	BeforeEach(func() {
		var err error
		store, err = services.NewFileStore(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
	})

	It("seeds the catalog and demo data idempotently", func() {
		seeder := seeders.NewMainSeeder(store)
		Expect(seeder.SeedAll(catalogPath, true)).To(Succeed())
		Expect(seeder.SeedAll(catalogPath, true)).To(Succeed())

		expected, err := seeders.LoadCatalog(catalogPath)
		Expect(err).NotTo(HaveOccurred())

		var courses model.CoursesDocument
		Expect(store.Read(shared.DocCourses, &courses)).To(Succeed())
		Expect(courses.Courses).To(HaveLen(len(expected)))
		Expect(courses.Courses[0].CreatedAt).NotTo(BeZero())

		var users model.UsersDocument
		Expect(store.Read(shared.DocUsers, &users)).To(Succeed())
		Expect(users.Users).To(HaveLen(1))
		Expect(users.Users[0].ID).To(Equal(seeders.DemoUserID))

		var cards model.FlashcardsDocument
		Expect(store.Read(shared.DocFlashcards, &cards)).To(Succeed())
		Expect(cards.Cards).NotTo(BeEmpty())
		Expect(cards.Decks).To(HaveLen(1))
		Expect(cards.Decks[0].CardIDs).To(HaveLen(len(cards.Cards)))
	})

	It("skips demo data unless asked", func() {
		Expect(seeders.NewMainSeeder(store).SeedAll(catalogPath, false)).To(Succeed())

		var users model.UsersDocument
		Expect(store.Read(shared.DocUsers, &users)).To(Succeed())
		Expect(users.Users).To(BeEmpty())
	})
})
