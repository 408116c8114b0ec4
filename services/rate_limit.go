package services

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/study_api/dto"
	"github.com/lac-hong-legacy/study_api/model"
	"github.com/lac-hong-legacy/study_api/shared"
	log "github.com/sirupsen/logrus"
)

type RateLimitService struct {
	context.DefaultService

	configs map[string]*RateLimitConfig
	records map[string]*model.RateLimit
	mutex   sync.RWMutex

	disabled bool
}

// RateLimitConfig represents rate limiting configuration
type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int
	WindowSize   time.Duration
	BlockTime    time.Duration
	Description  string
	IsActive     bool
}

const RATE_LIMIT_SVC = "rate_limit_svc"

const (
	RateLimitGeneral = "api_general"
	RateLimitWrite   = "api_write"
	RateLimitImport  = "flashcard_import"
	RateLimitBackup  = "admin_backup"
)

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.disabled = os.Getenv("RATE_LIMIT_DISABLED") == "true"
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.initDefaultConfigs()
	return nil
}

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.records = make(map[string]*model.RateLimit)
	svc.configs = map[string]*RateLimitConfig{
		RateLimitGeneral: {
			EndpointType: RateLimitGeneral,
			MaxRequests:  600,
			WindowSize:   time.Minute,
			BlockTime:    time.Minute,
			Description:  "General API rate limit",
			IsActive:     true,
		},
		RateLimitWrite: {
			EndpointType: RateLimitWrite,
			MaxRequests:  120,
			WindowSize:   time.Minute,
			BlockTime:    2 * time.Minute,
			Description:  "Write operations rate limit",
			IsActive:     true,
		},
		RateLimitImport: {
			EndpointType: RateLimitImport,
			MaxRequests:  10,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "Flashcard import rate limit",
			IsActive:     true,
		},
		RateLimitBackup: {
			EndpointType: RateLimitBackup,
			MaxRequests:  5,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "Manual backup rate limit",
			IsActive:     true,
		},
	}
}

// SetConfig overrides the limits for an endpoint type.
func (svc *RateLimitService) SetConfig(config RateLimitConfig) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	if svc.configs == nil {
		svc.configs = make(map[string]*RateLimitConfig)
	}
	svc.configs[config.EndpointType] = &config
}

// IsAllowed counts one request for identifier against the endpoint type's window.
func (svc *RateLimitService) IsAllowed(identifier, endpointType string) (bool, *dto.RateLimitInfo) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	config, exists := svc.configs[endpointType]
	if svc.disabled || !exists || !config.IsActive {
		return true, &dto.RateLimitInfo{
			Allowed:   true,
			Remaining: -1,
		}
	}

	if svc.records == nil {
		svc.records = make(map[string]*model.RateLimit)
	}

	now := time.Now()
	key := endpointType + ":" + identifier
	rateLimit := svc.records[key]

	if rateLimit != nil && rateLimit.BlockedUntil != nil && now.Before(*rateLimit.BlockedUntil) {
		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    rateLimit.BlockedUntil,
			BlockedUntil: rateLimit.BlockedUntil,
		}
	}

	if rateLimit == nil || rateLimit.WindowStart.Add(config.WindowSize).Before(now) {
		svc.records[key] = &model.RateLimit{
			Identifier:   identifier,
			EndpointType: endpointType,
			RequestCount: 1,
			WindowStart:  now,
			UpdatedAt:    now,
		}

		resetTime := now.Add(config.WindowSize)
		return true, &dto.RateLimitInfo{
			Allowed:   true,
			Remaining: config.MaxRequests - 1,
			ResetTime: &resetTime,
		}
	}

	if rateLimit.RequestCount >= config.MaxRequests {
		blockedUntil := now.Add(config.BlockTime)
		rateLimit.BlockedUntil = &blockedUntil
		rateLimit.UpdatedAt = now

		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}
	}

	rateLimit.RequestCount++
	rateLimit.UpdatedAt = now

	resetTime := rateLimit.WindowStart.Add(config.WindowSize)
	return true, &dto.RateLimitInfo{
		Allowed:   true,
		Remaining: config.MaxRequests - rateLimit.RequestCount,
		ResetTime: &resetTime,
	}
}

// RateLimit limits requests of one endpoint type per user, falling back to client IP.
func (svc *RateLimitService) RateLimit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := svc.getIdentifier(c)

		allowed, info := svc.IsAllowed(identifier, endpointType)
		svc.addRateLimitHeaders(c, info)

		if !allowed {
			return svc.handleRateLimitExceeded(c, endpointType, info)
		}

		return c.Next()
	}
}

// WriteRateLimit applies the write limit to mutating methods only.
func (svc *RateLimitService) WriteRateLimit() fiber.Handler {
	limiter := svc.RateLimit(RateLimitWrite)
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
			return limiter(c)
		}
		return c.Next()
	}
}

func (svc *RateLimitService) getIdentifier(c *fiber.Ctx) string {
	if userID, ok := c.Locals(shared.UserID).(string); ok && userID != "" {
		return userID
	}
	return getClientIP(c)
}

func (svc *RateLimitService) addRateLimitHeaders(c *fiber.Ctx, info *dto.RateLimitInfo) {
	if info == nil {
		return
	}

	if info.Remaining >= 0 {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}

	if info.ResetTime != nil {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}

	if info.BlockedUntil != nil {
		retryAfter := int(time.Until(*info.BlockedUntil).Seconds())
		if retryAfter > 0 {
			c.Set("Retry-After", strconv.Itoa(retryAfter))
		}
	}
}

func (svc *RateLimitService) handleRateLimitExceeded(c *fiber.Ctx, endpointType string, info *dto.RateLimitInfo) error {
	log.WithFields(log.Fields{
		"endpoint_type": endpointType,
		"identifier":    svc.getIdentifier(c),
		"path":          c.Path(),
	}).Warn("Rate limit exceeded")

	return shared.NewTooManyRequestsError(svc.getRateLimitMessage(endpointType))
}

func (svc *RateLimitService) getRateLimitMessage(endpointType string) string {
	messages := map[string]string{
		RateLimitGeneral: "Too many requests. Please slow down.",
		RateLimitWrite:   "Too many changes in a short time. Please try again later.",
		RateLimitImport:  "Too many imports. You've reached the hourly limit.",
		RateLimitBackup:  "Too many backup requests. Please try again later.",
	}

	if message, exists := messages[endpointType]; exists {
		return message
	}

	return "Too many requests. Please try again later."
}

func getClientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(ips[0]); ip != "" {
			return ip
		}
	}

	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(c.Context().RemoteAddr().String())
	if err != nil {
		return c.Context().RemoteAddr().String()
	}

	return ip
}

// CleanupOldRecords drops windows that have expired and are not blocked.
func (svc *RateLimitService) CleanupOldRecords() int {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	now := time.Now()
	removed := 0
	for key, record := range svc.records {
		config, ok := svc.configs[record.EndpointType]
		if !ok {
			delete(svc.records, key)
			removed++
			continue
		}
		if record.BlockedUntil != nil && now.Before(*record.BlockedUntil) {
			continue
		}
		if record.WindowStart.Add(config.WindowSize).Before(now) {
			delete(svc.records, key)
			removed++
		}
	}
	return removed
}

func (svc *RateLimitService) GetRateLimitStats() dto.RateLimitStats {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	now := time.Now()
	stats := dto.RateLimitStats{ByEndpoint: map[string]int{}}
	for _, record := range svc.records {
		stats.TrackedIdentifiers++
		stats.ByEndpoint[record.EndpointType]++
		if record.BlockedUntil != nil && now.Before(*record.BlockedUntil) {
			stats.Blocked++
		}
	}
	return stats
}

func (svc *RateLimitService) ResetRateLimit(identifier, endpointType string) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	delete(svc.records, fmt.Sprintf("%s:%s", endpointType, identifier))
}
