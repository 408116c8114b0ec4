package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lac-hong-legacy/study_api/model"
	log "github.com/sirupsen/logrus"
)

const NOTIFICATION_SVC = "notification_svc"

const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 21
)

// ReminderSender delivers a due-card reminder to one user. It reports false when the
// user has no address on this channel.
type ReminderSender interface {
	Enabled() bool
	SendDueReminder(user model.User, dueCount int) (bool, error)
}

// NotificationService delivers reminders through a Telegram bot. It is a no-op when
// TELEGRAM_BOT_TOKEN is unset.
type NotificationService struct {
	context.DefaultService

	api   *tgbotapi.BotAPI
	token string

	StartHour int
	EndHour   int
}

func (svc NotificationService) Id() string {
	return NOTIFICATION_SVC
}

func (svc *NotificationService) Configure(ctx *context.Context) error {
	svc.token = os.Getenv("TELEGRAM_BOT_TOKEN")

	svc.StartHour = envHour("NOTIFICATION_START_HOUR", DefaultNotificationStartHour)
	svc.EndHour = envHour("NOTIFICATION_END_HOUR", DefaultNotificationEndHour)

	return svc.DefaultService.Configure(ctx)
}

func (svc *NotificationService) Start() error {
	if svc.token == "" {
		log.Info("Telegram notifications disabled")
		return nil
	}

	api, err := tgbotapi.NewBotAPI(svc.token)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	svc.api = api

	log.WithField("bot", api.Self.UserName).Info("Telegram notifications enabled")
	return nil
}

func (svc *NotificationService) Enabled() bool {
	return svc != nil && svc.api != nil
}

// InWindow reports whether hour (UTC) falls inside the configured sending hours.
// A start after the end is an overnight window, e.g. 21 to 6.
func (svc *NotificationService) InWindow(hour int) bool {
	if svc.StartHour <= svc.EndHour {
		return hour >= svc.StartHour && hour <= svc.EndHour
	}
	return hour >= svc.StartHour || hour <= svc.EndHour
}

func (svc *NotificationService) SendDueReminder(user model.User, dueCount int) (bool, error) {
	if !svc.Enabled() || user.TelegramChatID == 0 {
		return false, nil
	}

	text := fmt.Sprintf("Hi %s! You have %d flashcard(s) due for review. A short session now keeps your streak going.", displayName(user), dueCount)

	msg := tgbotapi.NewMessage(user.TelegramChatID, text)
	if _, err := svc.api.Send(msg); err != nil {
		return false, fmt.Errorf("failed to send reminder to chat %d: %w", user.TelegramChatID, err)
	}
	return true, nil
}

func envHour(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if h, err := strconv.Atoi(value); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return fallback
}
