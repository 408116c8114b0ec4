package services

import (
	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/study_api/shared"
	log "github.com/sirupsen/logrus"
)

type AuthMiddleware struct {
	context.DefaultService

	jwtSvc *JWTService
}

const AUTH_MIDDLEWARE_SVC = "auth"

func (svc AuthMiddleware) Id() string {
	return AUTH_MIDDLEWARE_SVC
}

func (svc *AuthMiddleware) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthMiddleware) Start() error {
	svc.jwtSvc, _ = svc.Service(JWT_SVC).(*JWTService)
	return nil
}

// OptionalAuth stores the token's user id in Locals when a bearer token is sent.
// Requests without a token pass through and identify the user by userId instead.
func (svc *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !svc.jwtSvc.Enabled() {
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}

		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.NewAppError(fiber.StatusUnauthorized, err, "Unauthorized")
		}

		userID, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			log.WithFields(log.Fields{
				"path":  c.Path(),
				"error": err,
			}).Warn("Rejected bearer token")
			return shared.NewAppError(fiber.StatusUnauthorized, err, "Invalid JWT token")
		}

		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}
