package services

import (
	"os"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"
)

const SCHEDULER_SVC = "scheduler_svc"

const (
	defaultBackupSchedule        = "0 3 * * *"
	defaultWeeklySummarySchedule = "0 8 * * 1"
)

// SchedulerService runs the periodic maintenance and notification jobs.
type SchedulerService struct {
	context.DefaultService

	scheduler *gocron.Scheduler

	enabled               bool
	backupSchedule        string
	weeklySummarySchedule string

	userSvc       *UserService
	goalSvc       *StudyGoalService
	reviewSvc     *SpacedRepetitionService
	analyticsSvc  *AnalyticsService
	backupSvc     *BackupService
	rateLimitSvc  *RateLimitService
	emailSvc      *EmailService
	monitoringSvc *MonitoringService

	senders      []ReminderSender
	notifyWindow func(hour int) bool
}

func (svc SchedulerService) Id() string {
	return SCHEDULER_SVC
}

func (svc *SchedulerService) Configure(ctx *context.Context) error {
	svc.enabled = os.Getenv("ENABLE_SCHEDULER") != "false"

	svc.backupSchedule = os.Getenv("BACKUP_SCHEDULE")
	if svc.backupSchedule == "" {
		svc.backupSchedule = defaultBackupSchedule
	}
	svc.weeklySummarySchedule = os.Getenv("WEEKLY_SUMMARY_SCHEDULE")
	if svc.weeklySummarySchedule == "" {
		svc.weeklySummarySchedule = defaultWeeklySummarySchedule
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *SchedulerService) Start() error {
	if !svc.enabled {
		log.Info("Scheduler disabled")
		return nil
	}

	svc.userSvc = svc.Service(USER_SVC).(*UserService)
	svc.goalSvc = svc.Service(STUDY_GOAL_SVC).(*StudyGoalService)
	svc.reviewSvc = svc.Service(SPACED_REPETITION_SVC).(*SpacedRepetitionService)
	svc.analyticsSvc, _ = svc.Service(ANALYTICS_SVC).(*AnalyticsService)
	svc.backupSvc, _ = svc.Service(BACKUP_SVC).(*BackupService)
	svc.rateLimitSvc, _ = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.emailSvc, _ = svc.Service(EMAIL_SVC).(*EmailService)
	svc.monitoringSvc, _ = svc.Service(MONITORING_SVC).(*MonitoringService)

	if notificationSvc, ok := svc.Service(NOTIFICATION_SVC).(*NotificationService); ok {
		svc.notifyWindow = notificationSvc.InWindow
		if notificationSvc.Enabled() {
			svc.senders = append(svc.senders, notificationSvc)
		}
	}
	if svc.emailSvc.Enabled() {
		svc.senders = append(svc.senders, svc.emailSvc)
	}

	svc.scheduler = gocron.NewScheduler(time.UTC)
	svc.scheduler.SingletonModeAll()

	if err := svc.registerJobs(); err != nil {
		return err
	}

	svc.scheduler.StartAsync()
	log.WithField("jobs", len(svc.scheduler.Jobs())).Info("Scheduler started")
	return nil
}

func (svc *SchedulerService) registerJobs() error {
	if _, err := svc.scheduler.Every(15).Minutes().Do(svc.runJob, "refresh_goals", svc.refreshGoals); err != nil {
		return err
	}
	if svc.rateLimitSvc != nil {
		if _, err := svc.scheduler.Every(10).Minutes().Do(svc.runJob, "rate_limit_cleanup", svc.cleanupRateLimits); err != nil {
			return err
		}
	}
	if len(svc.senders) > 0 {
		if _, err := svc.scheduler.Every(1).Hour().Do(svc.runJob, "due_reminders", svc.sendDueReminders); err != nil {
			return err
		}
	}
	if svc.emailSvc.Enabled() && svc.analyticsSvc != nil {
		if _, err := svc.scheduler.Cron(svc.weeklySummarySchedule).Do(svc.runJob, "weekly_summary", svc.sendWeeklySummaries); err != nil {
			return err
		}
	}
	if svc.backupSvc.Enabled() {
		if _, err := svc.scheduler.Cron(svc.backupSchedule).Do(svc.runJob, "backup", svc.backup); err != nil {
			return err
		}
	}
	return nil
}

func (svc *SchedulerService) Shutdown() {
	if svc.scheduler != nil {
		svc.scheduler.Stop()
	}
}

func (svc *SchedulerService) runJob(name string, job func() error) {
	start := time.Now()
	err := job()
	if svc.monitoringSvc != nil {
		svc.monitoringSvc.RecordJob(name, err)
	}

	entry := log.WithFields(log.Fields{
		"job":      name,
		"duration": time.Since(start).String(),
	})
	if err != nil {
		entry.WithError(err).Error("Scheduled job failed")
		return
	}
	entry.Debug("Scheduled job finished")
}

func (svc *SchedulerService) refreshGoals() error {
	expired, rolled, err := svc.goalSvc.RefreshGoals(time.Now())
	if err != nil {
		return err
	}
	if expired > 0 || rolled > 0 {
		log.WithFields(log.Fields{"expired": expired, "rolled": rolled}).Info("Goals refreshed")
	}
	return nil
}

func (svc *SchedulerService) cleanupRateLimits() error {
	removed := svc.rateLimitSvc.CleanupOldRecords()
	log.WithField("removed", removed).Debug("Rate limit windows cleaned up")
	return nil
}

// sendDueReminders notifies every user with due cards on each channel they can be reached on.
// A user is reminded at most once per UTC day.
func (svc *SchedulerService) sendDueReminders() error {
	now := time.Now().UTC()
	if svc.notifyWindow != nil && !svc.notifyWindow(now.Hour()) {
		return nil
	}

	counts, err := svc.reviewSvc.DueCountsByUser(now)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		return nil
	}

	users, err := svc.userSvc.GetUsers()
	if err != nil {
		return err
	}

	sent, skipped := 0, 0
	for _, user := range users {
		count := counts[user.ID]
		if count == 0 {
			continue
		}
		if remindedOn(user, now) {
			skipped++
			continue
		}

		reached := false
		for _, sender := range svc.senders {
			ok, err := sender.SendDueReminder(user, count)
			if err != nil {
				log.WithFields(log.Fields{"user_id": user.ID, "error": err}).Warn("Failed to send reminder")
				continue
			}
			if ok {
				sent++
				reached = true
			}
		}
		if reached {
			if err := svc.userSvc.MarkReminded(user.ID, now); err != nil {
				return err
			}
		}
	}

	log.WithFields(log.Fields{"sent": sent, "skipped": skipped}).Info("Due card reminders sent")
	return nil
}

func (svc *SchedulerService) sendWeeklySummaries() error {
	users, err := svc.userSvc.GetUsers()
	if err != nil {
		return err
	}

	sent := 0
	for _, user := range users {
		if user.Email == "" {
			continue
		}

		overview, err := svc.analyticsSvc.GetOverview(user.ID)
		if err != nil {
			return err
		}
		week, err := svc.analyticsSvc.GetDailyActivity(user.ID, DefaultActivityDays)
		if err != nil {
			return err
		}

		ok, err := svc.emailSvc.SendWeeklySummary(user, overview, week)
		if err != nil {
			log.WithFields(log.Fields{"user_id": user.ID, "error": err}).Warn("Failed to send weekly summary")
			continue
		}
		if ok {
			sent++
		}
	}

	log.WithField("sent", sent).Info("Weekly summaries sent")
	return nil
}

func (svc *SchedulerService) backup() error {
	backup, err := svc.backupSvc.CreateBackup()
	if err != nil {
		return err
	}

	pruned, err := svc.backupSvc.PruneBackups()
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"prefix": backup.Prefix,
		"pruned": pruned,
	}).Info("Scheduled backup complete")
	return nil
}
