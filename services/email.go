package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"

	"github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/model"
	log "github.com/sirupsen/logrus"
)

type EmailService struct {
	context.DefaultService

	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
	baseURL      string

	templates map[string]*template.Template

	// send is swapped in tests
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

const EMAIL_SVC = "email_svc"

func (svc EmailService) Id() string {
	return EMAIL_SVC
}

func (svc *EmailService) Configure(ctx *context.Context) error {
	svc.smtpHost = os.Getenv("SMTP_HOST")
	svc.smtpPort = os.Getenv("SMTP_PORT")
	svc.smtpUsername = os.Getenv("SMTP_USERNAME")
	svc.smtpPassword = os.Getenv("SMTP_PASSWORD")
	svc.fromEmail = os.Getenv("FROM_EMAIL")
	svc.fromName = os.Getenv("FROM_NAME")
	svc.baseURL = os.Getenv("BASE_URL")

	// Set defaults if not provided
	if svc.smtpPort == "" {
		svc.smtpPort = "587"
	}
	if svc.fromName == "" {
		svc.fromName = "Study App"
	}
	if svc.baseURL == "" {
		svc.baseURL = "http://localhost:8000"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *EmailService) Start() error {
	if err := svc.loadTemplates(); err != nil {
		return err
	}
	if !svc.Enabled() {
		log.Info("SMTP not configured, email notifications disabled")
	}
	return nil
}

func (svc *EmailService) Enabled() bool {
	return svc != nil && svc.smtpHost != "" && svc.fromEmail != ""
}

const dueReminderEmailHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Cards due for review - {{.AppName}}</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h2>Hi {{.Name}},</h2>
    <p>You have <strong>{{.DueCount}}</strong> flashcard(s) waiting for review.</p>
    <p>A short session now keeps your streak of {{.Streak}} day(s) going.</p>
    <p><a href="{{.BaseURL}}">Start reviewing</a></p>
</body>
</html>
`

const weeklySummaryEmailHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Your week - {{.AppName}}</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h2>Hi {{.Name}}, here is your week</h2>
    <ul>
        <li>Study time: {{.WeekMinutes}} minutes over {{.WeekSessions}} session(s)</li>
        <li>Cards reviewed: {{.WeekReviews}}</li>
        <li>Questions answered: {{.WeekQuestions}}</li>
        <li>Current streak: {{.Streak}} day(s), longest {{.LongestStreak}}</li>
        <li>Cards mastered: {{.MasteredCards}} of {{.TotalCards}}</li>
        <li>Goals completed: {{.CompletedGoals}}, active: {{.ActiveGoals}}</li>
    </ul>
</body>
</html>
`

type DueReminderEmailData struct {
	AppName  string
	BaseURL  string
	Name     string
	DueCount int
	Streak   int
}

type WeeklySummaryEmailData struct {
	AppName        string
	Name           string
	WeekMinutes    int
	WeekSessions   int
	WeekReviews    int
	WeekQuestions  int
	Streak         int
	LongestStreak  int
	MasteredCards  int
	TotalCards     int
	CompletedGoals int
	ActiveGoals    int
}

func (svc *EmailService) loadTemplates() error {
	svc.templates = make(map[string]*template.Template)

	for name, body := range map[string]string{
		"due_reminder":   dueReminderEmailHTML,
		"weekly_summary": weeklySummaryEmailHTML,
	} {
		tmpl, err := template.New(name).Parse(body)
		if err != nil {
			return fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		svc.templates[name] = tmpl
	}
	return nil
}

// SendDueReminder emails users that have an address on file.
func (svc *EmailService) SendDueReminder(user model.User, dueCount int) (bool, error) {
	if !svc.Enabled() || user.Email == "" {
		return false, nil
	}

	data := DueReminderEmailData{
		AppName:  svc.fromName,
		BaseURL:  svc.baseURL,
		Name:     displayName(user),
		DueCount: dueCount,
		Streak:   user.Streak,
	}

	subject := fmt.Sprintf("%d card(s) due for review", dueCount)
	if err := svc.sendTemplateEmail(user.Email, subject, "due_reminder", data); err != nil {
		return false, err
	}
	return true, nil
}

// SendWeeklySummary sums the last seven days of activity next to the all-time overview.
func (svc *EmailService) SendWeeklySummary(user model.User, overview *dto.OverviewResponse, week []dto.DailyActivity) (bool, error) {
	if !svc.Enabled() || user.Email == "" {
		return false, nil
	}

	data := WeeklySummaryEmailData{
		AppName:        svc.fromName,
		Name:           displayName(user),
		Streak:         overview.Streak,
		LongestStreak:  overview.LongestStreak,
		MasteredCards:  overview.MasteredCards,
		TotalCards:     overview.TotalCards,
		CompletedGoals: overview.CompletedGoals,
		ActiveGoals:    overview.ActiveGoals,
	}
	for _, day := range week {
		data.WeekMinutes += day.StudyMinutes
		data.WeekSessions += day.Sessions
		data.WeekReviews += day.Reviews
		data.WeekQuestions += day.QuestionsAnswered
	}

	subject := "Your weekly study summary - " + svc.fromName
	if err := svc.sendTemplateEmail(user.Email, subject, "weekly_summary", data); err != nil {
		return false, err
	}
	return true, nil
}

func (svc *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	tmpl, exists := svc.templates[templateName]
	if !exists {
		return fmt.Errorf("template %s not found", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return svc.sendEmail(to, subject, body.String())
}

func (svc *EmailService) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", svc.smtpUsername, svc.smtpPassword, svc.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		svc.fromName, svc.fromEmail, to, subject, body))

	send := svc.send
	if send == nil {
		send = smtp.SendMail
	}

	if err := send(svc.smtpHost+":"+svc.smtpPort, auth, svc.fromEmail, []string{to}, msg); err != nil {
		log.WithError(err).WithFields(log.Fields{"to": to, "subject": subject}).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.WithFields(log.Fields{"to": to, "subject": subject}).Debug("Email sent")
	return nil
}

func displayName(user model.User) string {
	if user.Name != "" {
		return user.Name
	}
	return "there"
}
