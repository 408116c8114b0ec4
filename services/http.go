package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"

	docs "github.com/lac-hong-legacy/study_api/docs"
	"github.com/lac-hong-legacy/study_api/services/handlers"
	"github.com/lac-hong-legacy/study_api/shared"
)

type HttpService struct {
	context.DefaultService

	storeSvc            *StoreService
	courseSvc           *CourseService
	userSvc             *UserService
	flashcardSvc        *FlashcardService
	spacedRepetitionSvc *SpacedRepetitionService
	studySessionSvc     *StudySessionService
	studyGoalSvc        *StudyGoalService
	analyticsSvc        *AnalyticsService
	backupSvc           *BackupService
	rateLimitSvc        *RateLimitService
	authSvc             *AuthMiddleware
	monitoringSvc       *MonitoringService

	port        int
	corsOrigins string
	adminKey    string
	app         *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	svc.corsOrigins = os.Getenv("CORS_ORIGINS")
	if svc.corsOrigins == "" {
		svc.corsOrigins = "*"
	}
	svc.adminKey = os.Getenv("ADMIN_API_KEY")

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.storeSvc = svc.Service(STORE_SVC).(*StoreService)
	svc.courseSvc = svc.Service(COURSE_SVC).(*CourseService)
	svc.userSvc = svc.Service(USER_SVC).(*UserService)
	svc.flashcardSvc = svc.Service(FLASHCARD_SVC).(*FlashcardService)
	svc.spacedRepetitionSvc = svc.Service(SPACED_REPETITION_SVC).(*SpacedRepetitionService)
	svc.studySessionSvc = svc.Service(STUDY_SESSION_SVC).(*StudySessionService)
	svc.studyGoalSvc = svc.Service(STUDY_GOAL_SVC).(*StudyGoalService)
	svc.analyticsSvc = svc.Service(ANALYTICS_SVC).(*AnalyticsService)
	svc.backupSvc, _ = svc.Service(BACKUP_SVC).(*BackupService)
	svc.rateLimitSvc, _ = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.authSvc, _ = svc.Service(AUTH_MIDDLEWARE_SVC).(*AuthMiddleware)
	svc.monitoringSvc, _ = svc.Service(MONITORING_SVC).(*MonitoringService)

	svc.app = svc.buildApp()

	log.WithField("port", svc.port).Info("HTTP server listening")
	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

// buildApp wires middleware and routes. Optional services that are nil are skipped.
func (svc *HttpService) buildApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      SERVICE_NAME,
		BodyLimit:    8 * 1024 * 1024,
		JSONEncoder:  shared.JSON.Marshal,
		JSONDecoder:  shared.JSON.Unmarshal,
		ErrorHandler: HandleError,
	})

	docs.SwaggerInfo.BasePath = ""
	app.Use(recover.New())

	if os.Getenv("LOG_LEVEL") == "TRACE" {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     svc.corsOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Admin-Key",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: svc.corsOrigins != "*",
	}))

	if svc.monitoringSvc != nil {
		app.Use(MonitoringMiddleware(svc.monitoringSvc))
	}

	//Validation endpoints
	app.Get("/ping", svc.ping)
	app.Get("/health", svc.health)
	app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := app.Group("/api/v1")
	if svc.authSvc != nil {
		v1.Use(svc.authSvc.OptionalAuth())
	}
	if svc.rateLimitSvc != nil {
		v1.Use(svc.rateLimitSvc.RateLimit(RateLimitGeneral))
		v1.Use(svc.rateLimitSvc.WriteRateLimit())
	}

	v1.Get("/ping", svc.ping)
	v1.Get("/health", svc.health)

	courseHandler := handlers.NewCourseHandler(svc.courseSvc)
	v1.Get("/courses", courseHandler.GetCourses)
	v1.Get("/courses/:courseId", courseHandler.GetCourse)
	v1.Get("/units/:courseId/:unitId", courseHandler.GetUnit)
	v1.Get("/units/:courseId/:unitId/:topicId", courseHandler.GetTopic)

	userHandler := handlers.NewUserHandler(svc.userSvc)
	v1.Post("/users", userHandler.CreateUser)
	v1.Get("/users/:userId", userHandler.GetUser)
	v1.Patch("/users/:userId", userHandler.UpdateUser)
	v1.Get("/progress", userHandler.GetProgress)
	v1.Post("/progress/update", userHandler.UpdateProgress)

	flashcardHandler := handlers.NewFlashcardHandler(svc.flashcardSvc)
	flashcards := v1.Group("/flashcards")
	flashcards.Get("/decks", flashcardHandler.GetDecks)
	flashcards.Post("/decks", flashcardHandler.CreateDeck)
	flashcards.Patch("/decks", flashcardHandler.UpdateDeck)
	flashcards.Delete("/decks", flashcardHandler.DeleteDeck)
	if svc.rateLimitSvc != nil {
		flashcards.Post("/import", svc.rateLimitSvc.RateLimit(RateLimitImport), flashcardHandler.ImportCards)
	} else {
		flashcards.Post("/import", flashcardHandler.ImportCards)
	}
	flashcards.Get("/", flashcardHandler.GetCards)
	flashcards.Post("/", flashcardHandler.CreateCard)
	flashcards.Patch("/:cardId", flashcardHandler.UpdateCard)
	flashcards.Delete("/:cardId", flashcardHandler.DeleteCard)

	reviewHandler := handlers.NewSpacedRepetitionHandler(svc.spacedRepetitionSvc)
	review := v1.Group("/spaced-repetition")
	review.Get("/stats", reviewHandler.GetStats)
	review.Get("/", reviewHandler.GetDueCards)
	review.Post("/", reviewHandler.SubmitReview)
	review.Put("/", reviewHandler.ResetCards)
	review.Patch("/", reviewHandler.Reschedule)

	sessionHandler := handlers.NewStudySessionHandler(svc.studySessionSvc)
	sessions := v1.Group("/sessions")
	sessions.Get("/stats", sessionHandler.GetSessionStats)
	sessions.Get("/", sessionHandler.GetSessions)
	sessions.Post("/", sessionHandler.CreateSession)
	sessions.Get("/:sessionId", sessionHandler.GetSession)
	sessions.Delete("/:sessionId", sessionHandler.DeleteSession)

	goalHandler := handlers.NewStudyGoalHandler(svc.studyGoalSvc)
	goals := v1.Group("/goals")
	goals.Get("/", goalHandler.GetGoals)
	goals.Post("/", goalHandler.CreateGoal)
	goals.Put("/", goalHandler.UpdateGoal)
	goals.Patch("/", goalHandler.ActOnGoal)
	goals.Delete("/", goalHandler.DeleteGoal)

	analyticsHandler := handlers.NewAnalyticsHandler(svc.analyticsSvc)
	analytics := v1.Group("/analytics")
	analytics.Get("/overview", analyticsHandler.GetOverview)
	analytics.Get("/daily", analyticsHandler.GetDailyActivity)
	analytics.Get("/topics", analyticsHandler.GetTopicPerformance)

	if svc.backupSvc != nil {
		adminHandler := handlers.NewAdminHandler(svc.backupSvc, svc.rateLimitSvc)
		admin := v1.Group("/admin", svc.requireAdmin)
		if svc.rateLimitSvc != nil {
			admin.Post("/backup", svc.rateLimitSvc.RateLimit(RateLimitBackup), adminHandler.CreateBackup)
			admin.Get("/rate-limits", adminHandler.GetRateLimitStats)
		} else {
			admin.Post("/backup", adminHandler.CreateBackup)
		}
		admin.Get("/backups", adminHandler.ListBackups)
		admin.Post("/backups/restore", adminHandler.RestoreBackup)
	}

	app.Use(func(c *fiber.Ctx) error {
		return shared.NewNotFoundError(nil, "Route not found")
	})

	return app
}

// requireAdmin checks X-Admin-Key when ADMIN_API_KEY is configured.
func (svc *HttpService) requireAdmin(c *fiber.Ctx) error {
	if svc.adminKey != "" && c.Get("X-Admin-Key") != svc.adminKey {
		return shared.NewAppError(fiber.StatusUnauthorized, nil, "Unauthorized")
	}
	return c.Next()
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "pong")
}

// @Summary Health
// @Description Reports whether the document store is readable
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=map[string]string}
// @Failure 503 {object} shared.Response
// @Router /health [get]
func (svc *HttpService) health(c *fiber.Ctx) error {
	var courses interface{}
	if err := svc.storeSvc.Read(shared.DocCourses, &courses); err != nil {
		log.WithError(err).Error("Health check failed")
		return shared.ResponseError(c, fiber.StatusServiceUnavailable, "Store unavailable", nil)
	}

	return shared.ResponseJSON(c, fiber.StatusOK, fiber.Map{"status": "healthy"})
}

// HandleError renders every error returned by a handler as the response envelope.
func HandleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode >= fiber.StatusInternalServerError {
			log.WithFields(log.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"error":  err,
			}).Error("Request failed")
		}
		return shared.ResponseError(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	if fiberErr, ok := err.(*fiber.Error); ok {
		message := fiberErr.Message
		if fiberErr.Code == fiber.StatusRequestEntityTooLarge {
			message = "Request body too large"
		} else if strings.TrimSpace(message) == "" {
			message = "Request failed"
		}
		return shared.ResponseError(c, fiberErr.Code, message, nil)
	}

	log.WithFields(log.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"error":  err,
	}).Error("Unhandled error")
	return shared.ResponseInternalError(c)
}
