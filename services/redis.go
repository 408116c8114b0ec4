package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/study_api/shared"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const REDIS_SVC = "redis_svc"

const defaultCacheTTL = 5 * time.Minute

var errRedisDisabled = errors.New("redis client not initialized")

// RedisService is an optional cache. When REDIS_ADDR is empty every call is a miss
// and writes are dropped.
type RedisService struct {
	appContext.DefaultService
	redis *redis.Client

	ttl time.Duration
}

func (svc RedisService) Id() string {
	return REDIS_SVC
}

func (svc *RedisService) Configure(ctx *appContext.Context) error {
	svc.ttl = defaultCacheTTL
	if ttl, err := time.ParseDuration(os.Getenv("CACHE_TTL")); err == nil && ttl > 0 {
		svc.ttl = ttl
	}

	svc.initRedisClient()
	return svc.DefaultService.Configure(ctx)
}

func (svc *RedisService) Start() error {
	if svc.redis == nil {
		log.Info("Redis cache disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := svc.redis.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.WithField("ttl", svc.ttl.String()).Info("Redis cache connected")
	return nil
}

func (svc *RedisService) Shutdown() {
	if svc.redis != nil {
		svc.redis.Close()
	}
}

func (svc *RedisService) initRedisClient() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		return
	}

	redisPassword := os.Getenv("REDIS_PASSWORD")

	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}

	svc.redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
}

func (svc *RedisService) Enabled() bool {
	return svc != nil && svc.redis != nil
}

func (svc *RedisService) TTL() time.Duration {
	if svc.ttl <= 0 {
		return defaultCacheTTL
	}
	return svc.ttl
}

func (svc *RedisService) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !svc.Enabled() {
		return errRedisDisabled
	}

	data, err := shared.JSON.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return svc.redis.Set(ctx, key, data, expiration).Err()
}

// GetJSON decodes the cached value into dest and reports whether the key existed.
func (svc *RedisService) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !svc.Enabled() {
		return false, errRedisDisabled
	}

	result, err := svc.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := shared.JSON.Unmarshal(result, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (svc *RedisService) Delete(ctx context.Context, keys ...string) error {
	if !svc.Enabled() {
		return errRedisDisabled
	}

	return svc.redis.Del(ctx, keys...).Err()
}

// DeletePattern removes every key matching pattern using SCAN.
func (svc *RedisService) DeletePattern(ctx context.Context, pattern string) error {
	if !svc.Enabled() {
		return errRedisDisabled
	}

	iter := svc.redis.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return svc.Delete(ctx, keys...)
}

// Remember serves key from the cache, or calls load and caches its result.
// Cache failures are logged and never returned.
func (svc *RedisService) Remember(key string, dest interface{}, load func() error) error {
	if !svc.Enabled() {
		return load()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	hit, err := svc.GetJSON(ctx, key, dest)
	if err != nil {
		log.WithFields(log.Fields{"key": key, "error": err}).Warn("Cache read failed")
	}
	if hit {
		return nil
	}

	if err := load(); err != nil {
		return err
	}

	if err := svc.SetJSON(ctx, key, dest, svc.TTL()); err != nil {
		log.WithFields(log.Fields{"key": key, "error": err}).Warn("Cache write failed")
	}
	return nil
}

// Invalidate drops keys matching any of the patterns, logging failures.
func (svc *RedisService) Invalidate(patterns ...string) {
	if !svc.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for _, pattern := range patterns {
		if err := svc.DeletePattern(ctx, pattern); err != nil {
			log.WithFields(log.Fields{"pattern": pattern, "error": err}).Warn("Cache invalidation failed")
		}
	}
}

func cacheKey(parts ...string) string {
	key := "study"
	for _, part := range parts {
		key += ":" + part
	}
	return key
}
