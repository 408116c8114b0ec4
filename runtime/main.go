package main

import (
	"os"
	"strings"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sirupsen/logrus"

	"github.com/lac-hong-legacy/study_api/services"
)

// @title Study API
// @version 1.0
// @description Courses, progress tracking, flashcards with spaced repetition, study sessions, goals and analytics.
// @BasePath /
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded, using process environment")
	}

	configureLogging(os.Getenv("LOG_LEVEL"))

	// HttpService blocks, so it is registered last.
	ctx, err := context.NewCtx(
		&services.MonitoringService{},
		&services.SqliteService{},
		&services.PostgresService{},
		&services.StoreService{},
		&services.RedisService{},
		&services.MinIOService{},
		&services.JWTService{},
		&services.AuthMiddleware{},
		&services.RateLimitService{},

		&services.CourseService{},
		&services.StudyGoalService{},
		&services.UserService{},
		&services.FlashcardService{},
		&services.SpacedRepetitionService{},
		&services.StudySessionService{},
		&services.AnalyticsService{},
		&services.BackupService{},

		&services.EmailService{},
		&services.NotificationService{},
		&services.SchedulerService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure services")
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service stopped")
		return
	}
}

func configureLogging(level string) {
	switch strings.ToUpper(level) {
	case "TRACE":
		logrus.SetLevel(logrus.TraceLevel)
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "DEBUG":
		logrus.SetLevel(logrus.DebugLevel)
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "WARN":
		logrus.SetLevel(logrus.WarnLevel)
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "ERROR":
		logrus.SetLevel(logrus.ErrorLevel)
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if os.Getenv("LOG_FORMAT") == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
