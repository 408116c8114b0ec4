package services

import (
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/services/repositories"
	"github.com/lac-hong-legacy/study_api/shared"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// testEnv wires the domain services over a file store in a temp dir, without redis.
type testEnv struct {
	dir       string
	store     *StoreService
	courses   *CourseService
	users     *UserService
	cards     *FlashcardService
	reviews   *SpacedRepetitionService
	sessions  *StudySessionService
	goals     *StudyGoalService
	analytics *AnalyticsService
}

func newTestEnv() *testEnv {
	dir := GinkgoT().TempDir()
	store, err := NewFileStore(dir)
	Expect(err).NotTo(HaveOccurred())

	env := &testEnv{dir: dir, store: store}
	env.goals = &StudyGoalService{storeSvc: store, goalRepo: repositories.NewGoalRepository(store)}
	env.courses = &CourseService{storeSvc: store, courseRepo: repositories.NewCourseRepository(store)}
	env.users = &UserService{
		storeSvc:  store,
		courseSvc: env.courses,
		goalSvc:   env.goals,
		userRepo:  repositories.NewUserRepository(store),
	}
	env.cards = &FlashcardService{storeSvc: store, flashcardRepo: repositories.NewFlashcardRepository(store)}
	env.reviews = &SpacedRepetitionService{
		storeSvc:      store,
		goalSvc:       env.goals,
		flashcardRepo: repositories.NewFlashcardRepository(store),
	}
	env.sessions = &StudySessionService{
		storeSvc:    store,
		goalSvc:     env.goals,
		sessionRepo: repositories.NewSessionRepository(store),
	}
	env.analytics = &AnalyticsService{
		storeSvc:      store,
		courseRepo:    repositories.NewCourseRepository(store),
		userRepo:      repositories.NewUserRepository(store),
		flashcardRepo: repositories.NewFlashcardRepository(store),
		sessionRepo:   repositories.NewSessionRepository(store),
		goalRepo:      repositories.NewGoalRepository(store),
	}

	_, _, err = env.courses.SaveCourses([]model.Course{testCourse()})
	Expect(err).NotTo(HaveOccurred())
	return env
}

// testCourse has two units; the first holds two topics, the second one.
func testCourse() model.Course {
	return model.Course{
		ID:      "go",
		Title:   "Go",
		Subject: "programming",
		Level:   "beginner",
		Units: []model.Unit{
			{
				ID:    "basics",
				Title: "Basics",
				Order: 1,
				Topics: []model.Topic{
					{
						ID:    "vars",
						Title: "Variables",
						Questions: []model.Question{
							{ID: "q1", Type: shared.QuestionTypeMultipleChoice, Prompt: "zero int?", Answer: "0"},
							{ID: "q2", Type: shared.QuestionTypeTrueFalse, Prompt: ":= at package level?", Answer: "false"},
						},
					},
					{
						ID:        "loops",
						Title:     "Loops",
						Questions: []model.Question{{ID: "q3", Prompt: "loop keyword?", Answer: "for"}},
					},
				},
			},
			{
				ID:     "funcs",
				Title:  "Functions",
				Order:  2,
				Topics: []model.Topic{{ID: "defer", Title: "Defer"}},
			},
		},
	}
}

func statusOf(err error) int {
	appErr, ok := shared.GetAppError(err)
	if !ok {
		return 0
	}
	return appErr.StatusCode
}

func (env *testEnv) createCard(userID, front string) *model.Flashcard {
	card, err := env.cards.CreateCard(dto.CreateCardRequest{UserID: userID, Front: front, Back: front + " back"})
	Expect(err).NotTo(HaveOccurred())
	return card
}
