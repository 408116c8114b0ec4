package repositories_test

import (
	"errors"
	"time"

	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/services/repositories"
	"github.com/lac-hong-legacy/study_api/shared"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// memStore keeps encoded documents in a map, the way the real store keeps them on disk.
type memStore struct {
	docs   map[string][]byte
	writes int
}

func newMemStore() *memStore {
	return &memStore{docs: map[string][]byte{}}
}

func (s *memStore) Read(name string, out interface{}) error {
	data, ok := s.docs[name]
	if !ok {
		return errors.New("missing " + name)
	}
	return shared.DocumentJSON.Unmarshal(data, out)
}

func (s *memStore) Update(name string, out interface{}, fn func() error) error {
	if data, ok := s.docs[name]; ok {
		if err := shared.DocumentJSON.Unmarshal(data, out); err != nil {
			return err
		}
	}
	if err := fn(); err != nil {
		return err
	}
	data, err := shared.DocumentJSON.Marshal(out)
	if err != nil {
		return err
	}
	s.docs[name] = data
	s.writes++
	return nil
}

var _ = Describe("Repositories", func() {
	var store *memStore

	BeforeEach(func() {
		store = newMemStore()
	})

	Context("users", func() {
		var repo *repositories.UserRepository

		BeforeEach(func() {
			repo = repositories.NewUserRepository(store)
		})

		It("rejects duplicate ids", func() {
			Expect(repo.CreateUser(&model.User{ID: "u1", Name: "Ana"})).To(Succeed())
			Expect(repo.CreateUser(&model.User{ID: "u1", Name: "Bo"})).To(MatchError(repositories.ErrDuplicateRecord))

			user, err := repo.GetUser("u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Name).To(Equal("Ana"))
			Expect(user.CreatedAt).NotTo(BeZero())
		})

		It("upserts missing users and leaves the document alone on failure", func() {
			init := func() model.User { return model.User{Name: "new"} }

			user, err := repo.UpsertUser("u2", init, func(user *model.User) error {
				user.Streak = 1
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).To(Equal("u2"))
			Expect(user.Name).To(Equal("new"))

			_, err = repo.UpsertUser("u3", init, func(*model.User) error { return errors.New("nope") })
			Expect(err).To(HaveOccurred())

			users, err := repo.GetUsers()
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
		})

		It("reports unknown users", func() {
			_, err := repo.UpdateUser("ghost", func(*model.User) error { return nil })
			Expect(err).To(MatchError(repositories.ErrRecordNotFound))
		})
	})

	Context("courses", func() {
		It("replaces matching ids and appends the rest", func() {
			repo := repositories.NewCourseRepository(store)

			created, updated, err := repo.UpsertCourses([]model.Course{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(Equal(2))
			Expect(updated).To(BeZero())

			created, updated, err = repo.UpsertCourses([]model.Course{{ID: "a", Title: "A2"}, {ID: "c"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(Equal(1))
			Expect(updated).To(Equal(1))

			course, err := repo.GetCourse("a")
			Expect(err).NotTo(HaveOccurred())
			Expect(course.Title).To(Equal("A2"))

			_, err = repo.GetCourse("z")
			Expect(err).To(MatchError(repositories.ErrRecordNotFound))
		})
	})

	Context("goals", func() {
		It("scopes lookups to the owner and counts bulk changes", func() {
			repo := repositories.NewGoalRepository(store)
			Expect(repo.CreateGoal(&model.StudyGoal{ID: "g1", UserID: "u1", Target: 2})).To(Succeed())
			Expect(repo.CreateGoal(&model.StudyGoal{ID: "g2", UserID: "u2", Target: 2})).To(Succeed())

			_, err := repo.GetGoal("u2", "g1")
			Expect(err).To(MatchError(repositories.ErrRecordNotFound))

			changed, err := repo.UpdateGoals(func(goal *model.StudyGoal) bool {
				if goal.UserID != "u1" {
					return false
				}
				goal.Progress++
				return true
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(Equal(1))

			goal, err := repo.GetGoal("u1", "g1")
			Expect(err).NotTo(HaveOccurred())
			Expect(goal.Progress).To(Equal(1))

			writes := store.writes
			changed, err = repo.UpdateGoals(func(goal *model.StudyGoal) bool { return false })
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeZero())
			Expect(store.writes).To(Equal(writes))

			Expect(repo.DeleteGoal("u1", "g1")).To(Succeed())
			Expect(repo.DeleteGoal("u1", "g1")).To(MatchError(repositories.ErrRecordNotFound))
		})
	})

	Context("sessions", func() {
		It("keeps sessions per user", func() {
			repo := repositories.NewSessionRepository(store)
			Expect(repo.CreateSession(&model.StudySession{ID: "s1", UserID: "u1", StartedAt: time.Now()})).To(Succeed())
			Expect(repo.CreateSession(&model.StudySession{ID: "s2", UserID: "u2", StartedAt: time.Now()})).To(Succeed())

			sessions, err := repo.GetUserSessions("u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(1))

			Expect(repo.DeleteSession("u2", "s1")).To(MatchError(repositories.ErrRecordNotFound))
			Expect(repo.DeleteSession("u1", "s1")).To(Succeed())
		})
	})

	Context("flashcards", func() {
		It("finds cards and decks by owner", func() {
			doc := &model.FlashcardsDocument{
				Cards: []model.Flashcard{{ID: "c1", UserID: "u1"}, {ID: "c2", UserID: "u2"}},
				Decks: []model.FlashcardDeck{{ID: "d1", UserID: "u1", CardIDs: []string{"c1"}}},
			}

			Expect(repositories.FindCard(doc, "u1", "c1")).To(Equal(0))
			Expect(repositories.FindCard(doc, "u1", "c2")).To(Equal(-1))
			Expect(repositories.FindDeck(doc, "u2", "d1")).To(Equal(-1))
			Expect(repositories.UserCards(doc, "u2")).To(HaveLen(1))
		})
	})
})
