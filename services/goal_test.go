package services

import (
	"net/http"
	"time"

	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/shared"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("StudyGoalService", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv()
	})

	newGoal := func(period string, target int, deadline *time.Time) string {
		goal, err := env.goals.CreateGoal(dto.CreateGoalRequest{
			UserID:   "u1",
			Title:    "Goal",
			Type:     shared.GoalTypeCardsReviewed,
			Target:   target,
			Period:   period,
			Deadline: deadline,
		})
		Expect(err).NotTo(HaveOccurred())
		return goal.ID
	}

	It("defaults to a one-off active goal", func() {
		goal, err := env.goals.CreateGoal(dto.CreateGoalRequest{UserID: "u1", Title: "Once", Type: shared.GoalTypeSessions, Target: 3})
		Expect(err).NotTo(HaveOccurred())
		Expect(goal.Period).To(Equal(shared.GoalPeriodOnce))
		Expect(goal.Status).To(Equal(shared.GoalStatusActive))
		Expect(goal.Progress).To(BeZero())
	})

	It("rejects a deadline in the past", func() {
		past := time.Now().Add(-time.Hour)
		_, err := env.goals.CreateGoal(dto.CreateGoalRequest{UserID: "u1", Title: "Late", Type: shared.GoalTypeSessions, Target: 1, Deadline: &past})
		Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
	})

	It("completes on reaching the target and reopens when the target grows", func() {
		id := newGoal("", 5, nil)

		goal, err := env.goals.ProgressGoal("u1", id, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(goal.Status).To(Equal(shared.GoalStatusCompleted))

		target := 10
		goal, err = env.goals.UpdateGoal(dto.UpdateGoalRequest{UserID: "u1", GoalID: id, Target: &target})
		Expect(err).NotTo(HaveOccurred())
		Expect(goal.Status).To(Equal(shared.GoalStatusActive))
		Expect(goal.CompletedAt).To(BeNil())
	})

	It("rejects non-positive progress", func() {
		id := newGoal("", 5, nil)
		_, err := env.goals.ProgressGoal("u1", id, 0)
		Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
	})

	It("resets progress and status", func() {
		id := newGoal("", 1, nil)
		_, err := env.goals.ProgressGoal("u1", id, 3)
		Expect(err).NotTo(HaveOccurred())

		goal, err := env.goals.ResetGoal("u1", id)
		Expect(err).NotTo(HaveOccurred())
		Expect(goal.Progress).To(BeZero())
		Expect(goal.Status).To(Equal(shared.GoalStatusActive))
	})

	It("filters by status and validates the filter", func() {
		done := newGoal("", 1, nil)
		newGoal("", 10, nil)
		_, err := env.goals.ProgressGoal("u1", done, 1)
		Expect(err).NotTo(HaveOccurred())

		completed, err := env.goals.GetUserGoals("u1", shared.GoalStatusCompleted)
		Expect(err).NotTo(HaveOccurred())
		Expect(completed).To(HaveLen(1))
		Expect(completed[0].ID).To(Equal(done))

		all, err := env.goals.GetUserGoals("u1", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(2))

		_, err = env.goals.GetUserGoals("u1", "paused")
		Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
	})

	It("deletes goals", func() {
		id := newGoal("", 1, nil)
		Expect(env.goals.DeleteGoal("u1", id)).To(Succeed())
		_, err := env.goals.GetGoal("u1", id)
		Expect(statusOf(err)).To(Equal(http.StatusNotFound))
	})

	Context("refresh", func() {
		It("expires goals past their deadline and refuses further progress", func() {
			deadline := time.Now().Add(time.Hour)
			id := newGoal("", 5, &deadline)

			expired, rolled, err := env.goals.RefreshGoals(time.Now().Add(2 * time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(expired).To(Equal(1))
			Expect(rolled).To(BeZero())

			_, err = env.goals.ProgressGoal("u1", id, 1)
			Expect(statusOf(err)).To(Equal(http.StatusConflict))
		})

		It("starts a new period for daily goals", func() {
			id := newGoal(shared.GoalPeriodDaily, 1, nil)
			_, err := env.goals.ProgressGoal("u1", id, 1)
			Expect(err).NotTo(HaveOccurred())

			expired, rolled, err := env.goals.RefreshGoals(time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(expired).To(BeZero())
			Expect(rolled).To(BeZero())

			_, rolled, err = env.goals.RefreshGoals(time.Now().Add(48 * time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(rolled).To(Equal(1))

			goal, err := env.goals.GetGoal("u1", id)
			Expect(err).NotTo(HaveOccurred())
			Expect(goal.Progress).To(BeZero())
			Expect(goal.Status).To(Equal(shared.GoalStatusActive))
		})
	})

	It("ignores activity for other users and goal types", func() {
		id := newGoal("", 10, nil)

		env.goals.RecordActivity("u2", map[string]int{shared.GoalTypeCardsReviewed: 3})
		env.goals.RecordActivity("u1", map[string]int{shared.GoalTypeSessions: 3})
		env.goals.RecordActivity("u1", map[string]int{shared.GoalTypeCardsReviewed: 2})

		goal, err := env.goals.GetGoal("u1", id)
		Expect(err).NotTo(HaveOccurred())
		Expect(goal.Progress).To(Equal(2))
	})

	It("tolerates a nil service", func() {
		var svc *StudyGoalService
		Expect(func() { svc.RecordActivity("u1", map[string]int{shared.GoalTypeSessions: 1}) }).NotTo(Panic())
	})
})
