package services

import (
	"errors"
	"net/smtp"
	"strings"
	"time"

	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/model"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeSender struct {
	reminded map[string]int
	calls    int
	fail     bool
}

func (s *fakeSender) Enabled() bool { return true }

func (s *fakeSender) SendDueReminder(user model.User, dueCount int) (bool, error) {
	if s.fail {
		return false, errors.New("channel down")
	}
	s.calls++
	s.reminded[user.ID] = dueCount
	return true, nil
}

var _ = Describe("SchedulerService", func() {
	var (
		env       *testEnv
		sender    *fakeSender
		scheduler *SchedulerService
	)

	BeforeEach(func() {
		env = newTestEnv()
		sender = &fakeSender{reminded: map[string]int{}}
		scheduler = &SchedulerService{
			userSvc:      env.users,
			goalSvc:      env.goals,
			reviewSvc:    env.reviews,
			analyticsSvc: env.analytics,
			senders:      []ReminderSender{sender},
		}

		for _, id := range []string{"due", "idle"} {
			_, err := env.users.CreateUser(dto.CreateUserRequest{ID: id, Name: id})
			Expect(err).NotTo(HaveOccurred())
		}
		env.createCard("due", "a")
		env.createCard("due", "b")
	})

	It("reminds only users with due cards", func() {
		Expect(scheduler.sendDueReminders()).To(Succeed())
		Expect(sender.reminded).To(Equal(map[string]int{"due": 2}))
	})

	It("reminds a user once per day", func() {
		Expect(scheduler.sendDueReminders()).To(Succeed())
		Expect(scheduler.sendDueReminders()).To(Succeed())
		Expect(sender.calls).To(Equal(1))

		user, err := env.users.GetUser("due")
		Expect(err).NotTo(HaveOccurred())
		Expect(user.LastRemindedAt).NotTo(BeNil())

		_, err = env.users.userRepo.UpdateUser("due", func(user *model.User) error {
			yesterday := time.Now().UTC().Add(-24 * time.Hour)
			user.LastRemindedAt = &yesterday
			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(scheduler.sendDueReminders()).To(Succeed())
		Expect(sender.calls).To(Equal(2))
	})

	It("retries users no channel reached", func() {
		scheduler.senders = []ReminderSender{&fakeSender{fail: true}}
		Expect(scheduler.sendDueReminders()).To(Succeed())

		user, err := env.users.GetUser("due")
		Expect(err).NotTo(HaveOccurred())
		Expect(user.LastRemindedAt).To(BeNil())

		scheduler.senders = []ReminderSender{sender}
		Expect(scheduler.sendDueReminders()).To(Succeed())
		Expect(sender.calls).To(Equal(1))
	})

	It("stays quiet outside the notification window", func() {
		scheduler.notifyWindow = func(int) bool { return false }
		Expect(scheduler.sendDueReminders()).To(Succeed())
		Expect(sender.reminded).To(BeEmpty())
	})

	It("keeps going when a channel fails", func() {
		scheduler.senders = []ReminderSender{&fakeSender{fail: true}, sender}
		Expect(scheduler.sendDueReminders()).To(Succeed())
		Expect(sender.reminded).To(HaveKey("due"))
	})

	It("refreshes goals", func() {
		deadline := time.Now().Add(50 * time.Millisecond)
		goal, err := env.goals.CreateGoal(dto.CreateGoalRequest{UserID: "due", Title: "Soon", Type: "sessions", Target: 1, Deadline: &deadline})
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() string {
			Expect(scheduler.refreshGoals()).To(Succeed())
			saved, err := env.goals.GetGoal("due", goal.ID)
			Expect(err).NotTo(HaveOccurred())
			return saved.Status
		}).Should(Equal("expired"))
	})

	It("emails weekly summaries to users with an address", func() {
		var recipients []string
		scheduler.emailSvc = &EmailService{
			smtpHost:  "localhost",
			smtpPort:  "2525",
			fromEmail: "study@example.com",
			fromName:  "Study App",
			send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
				recipients = append(recipients, to...)
				return nil
			},
		}
		Expect(scheduler.emailSvc.loadTemplates()).To(Succeed())

		email := "due@example.com"
		_, err := env.users.UpdateUser("due", dto.UpdateUserRequest{Email: &email})
		Expect(err).NotTo(HaveOccurred())

		Expect(scheduler.sendWeeklySummaries()).To(Succeed())
		Expect(recipients).To(Equal([]string{email}))
	})

	It("runs jobs without monitoring configured", func() {
		called := false
		scheduler.runJob("noop", func() error {
			called = true
			return errors.New("ignored")
		})
		Expect(called).To(BeTrue())
	})
})

var _ = Describe("EmailService", func() {
	var (
		svc  *EmailService
		sent []string
	)

	BeforeEach(func() {
		sent = nil
		svc = &EmailService{
			smtpHost:  "smtp.example.com",
			smtpPort:  "587",
			fromEmail: "study@example.com",
			fromName:  "Study App",
			baseURL:   "https://study.example.com",
			send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
				Expect(addr).To(Equal("smtp.example.com:587"))
				sent = append(sent, string(msg))
				return nil
			},
		}
		Expect(svc.loadTemplates()).To(Succeed())
	})

	It("is disabled without a host", func() {
		Expect((&EmailService{fromEmail: "a@b.c"}).Enabled()).To(BeFalse())
		var nilSvc *EmailService
		Expect(nilSvc.Enabled()).To(BeFalse())
		Expect(svc.Enabled()).To(BeTrue())
	})

	It("renders the due reminder", func() {
		ok, err := svc.SendDueReminder(model.User{Email: "ana@example.com", Streak: 3}, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(sent).To(HaveLen(1))
		Expect(sent[0]).To(ContainSubstring("Subject: 7 card(s) due for review"))
		Expect(sent[0]).To(ContainSubstring("Hi there,"))
		Expect(sent[0]).To(ContainSubstring("https://study.example.com"))
	})

	It("skips users without an address", func() {
		ok, err := svc.SendDueReminder(model.User{Name: "Ana"}, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(sent).To(BeEmpty())
	})

	It("sums the week in the summary", func() {
		week := []dto.DailyActivity{
			{StudyMinutes: 20, Sessions: 1, Reviews: 5},
			{StudyMinutes: 25, Sessions: 2, QuestionsAnswered: 4},
		}
		ok, err := svc.SendWeeklySummary(model.User{Name: "Ana", Email: "ana@example.com"}, &dto.OverviewResponse{Streak: 2}, week)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(sent[0]).To(ContainSubstring("45 minutes over 3 session(s)"))
		Expect(sent[0]).To(ContainSubstring("Cards reviewed: 5"))
	})

	It("reports delivery failures", func() {
		svc.send = func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("connection refused")
		}
		ok, err := svc.SendDueReminder(model.User{Email: "ana@example.com"}, 1)
		Expect(ok).To(BeFalse())
		Expect(err).To(HaveOccurred())
		Expect(strings.Contains(err.Error(), "connection refused")).To(BeTrue())
	})
})

var _ = Describe("NotificationService", func() {
	It("sends inside the configured hours only", func() {
		svc := &NotificationService{StartHour: 8, EndHour: 21}
		Expect(svc.InWindow(7)).To(BeFalse())
		Expect(svc.InWindow(8)).To(BeTrue())
		Expect(svc.InWindow(21)).To(BeTrue())
		Expect(svc.InWindow(22)).To(BeFalse())
	})

	It("wraps an overnight window past midnight", func() {
		svc := &NotificationService{StartHour: 21, EndHour: 6}
		Expect(svc.InWindow(21)).To(BeTrue())
		Expect(svc.InWindow(23)).To(BeTrue())
		Expect(svc.InWindow(0)).To(BeTrue())
		Expect(svc.InWindow(6)).To(BeTrue())
		Expect(svc.InWindow(7)).To(BeFalse())
		Expect(svc.InWindow(20)).To(BeFalse())
	})

	It("is a no-op without a bot", func() {
		svc := &NotificationService{}
		Expect(svc.Enabled()).To(BeFalse())
		ok, err := svc.SendDueReminder(model.User{TelegramChatID: 42}, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})
