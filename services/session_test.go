package services

import (
	"net/http"
	"time"

	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/shared"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("StudySessionService", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv()
	})

	It("derives the start time from the duration", func() {
		session, err := env.sessions.CreateSession(dto.CreateSessionRequest{UserID: "u1", DurationMinutes: 30})
		Expect(err).NotTo(HaveOccurred())
		Expect(session.EndedAt.Sub(session.StartedAt)).To(Equal(30 * time.Minute))
		Expect(session.EndedAt).To(BeTemporally("~", time.Now(), 5*time.Second))
	})

	It("lists sessions newest first within a range", func() {
		base := time.Now().UTC().Add(-72 * time.Hour)
		for i := 0; i < 3; i++ {
			startedAt := base.Add(time.Duration(i) * 24 * time.Hour)
			_, err := env.sessions.CreateSession(dto.CreateSessionRequest{UserID: "u1", DurationMinutes: 10, StartedAt: &startedAt})
			Expect(err).NotTo(HaveOccurred())
		}

		sessions, err := env.sessions.GetUserSessions("u1", nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(sessions).To(HaveLen(3))
		Expect(sessions[0].StartedAt).To(BeTemporally(">", sessions[1].StartedAt))
		Expect(sessions[1].StartedAt).To(BeTemporally(">", sessions[2].StartedAt))

		from := base.Add(12 * time.Hour)
		sessions, err = env.sessions.GetUserSessions("u1", &from, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(sessions).To(HaveLen(2))
	})

	It("rejects a range that ends before it starts", func() {
		from := time.Now().UTC()
		to := from.Add(-time.Hour)
		_, err := env.sessions.GetUserSessions("u1", &from, &to)
		Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
	})

	It("forgets deleted sessions", func() {
		session, err := env.sessions.CreateSession(dto.CreateSessionRequest{UserID: "u1", DurationMinutes: 5})
		Expect(err).NotTo(HaveOccurred())

		_, err = env.sessions.GetSession("u2", session.ID)
		Expect(statusOf(err)).To(Equal(http.StatusNotFound))

		Expect(env.sessions.DeleteSession("u1", session.ID)).To(Succeed())
		_, err = env.sessions.GetSession("u1", session.ID)
		Expect(statusOf(err)).To(Equal(http.StatusNotFound))
		Expect(statusOf(env.sessions.DeleteSession("u1", session.ID))).To(Equal(http.StatusNotFound))
	})

	It("credits minutes and session goals", func() {
		minutes, err := env.goals.CreateGoal(dto.CreateGoalRequest{UserID: "u1", Title: "Study", Type: shared.GoalTypeStudyMinutes, Target: 60})
		Expect(err).NotTo(HaveOccurred())
		count, err := env.goals.CreateGoal(dto.CreateGoalRequest{UserID: "u1", Title: "Sit down", Type: shared.GoalTypeSessions, Target: 1})
		Expect(err).NotTo(HaveOccurred())

		_, err = env.sessions.CreateSession(dto.CreateSessionRequest{UserID: "u1", DurationMinutes: 25})
		Expect(err).NotTo(HaveOccurred())

		saved, err := env.goals.GetGoal("u1", minutes.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved.Progress).To(Equal(25))
		Expect(saved.Status).To(Equal(shared.GoalStatusActive))

		saved, err = env.goals.GetGoal("u1", count.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved.Status).To(Equal(shared.GoalStatusCompleted))
		Expect(saved.CompletedAt).NotTo(BeNil())
	})
})

var _ = Describe("sessionStats", func() {
	It("aggregates totals, course minutes and the current week", func() {
		now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC) // Wednesday
		sessions := []model.StudySession{
			{DurationMinutes: 30, CourseID: "go", StartedAt: now.Add(-time.Hour), CardsReviewed: 4},
			{DurationMinutes: 15, CourseID: "go", StartedAt: now.AddDate(0, 0, -2), QuestionsAnswered: 3},
			{DurationMinutes: 45, StartedAt: now.AddDate(0, 0, -10)},
		}

		stats := sessionStats(sessions, now)
		Expect(stats.TotalSessions).To(Equal(3))
		Expect(stats.TotalMinutes).To(Equal(90))
		Expect(stats.AverageMinutes).To(Equal(30.0))
		Expect(stats.LongestMinutes).To(Equal(45))
		Expect(stats.ThisWeekMinutes).To(Equal(45))
		Expect(stats.MinutesByCourse).To(Equal(map[string]int{"go": 45}))
		Expect(stats.CardsReviewed).To(Equal(4))
		Expect(stats.QuestionsAnswered).To(Equal(3))
		Expect(*stats.LastSessionAt).To(Equal(now.Add(-time.Hour)))
	})

	It("starts weeks on Monday", func() {
		sunday := time.Date(2024, 5, 19, 23, 0, 0, 0, time.UTC)
		Expect(startOfWeek(sunday)).To(Equal(time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)))
	})
})
