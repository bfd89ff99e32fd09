package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/layer-3/zkauth/adapters/events"
	"github.com/layer-3/zkauth/service"
)

const (
	StoreDriverMemory = "memory"
	StoreDriverRedis  = "redis"
)

type Config struct {
	Addr                 string        // HTTP listen address (default: :41337)
	Issuer               string        // Issuer claim for access tokens (default: zkauth)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	StoreDriver          string        // Store backend (memory, redis) (default: memory)
	RedisURL             string        // Required when StoreDriver is redis
	EventsTopic          string        // Topic for auth events (default: zkauth.events)
	ChallengeTTL         time.Duration // Lifetime of an unanswered challenge (default: 5m)
	SessionTTL           time.Duration // Lifetime of issued access tokens (default: 5m)
	AuthIDLength         int           // Length of generated auth ids (default: 16)
	SessionIDLength      int           // Length of generated session ids (default: 32)
	HousekeepingInterval time.Duration // Expired challenge sweep interval, memory store only (default: 1m)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Addr:                 getEnvOrDefault("ADDR", ":41337"),
		Issuer:               getEnvOrDefault("ISSUER", "zkauth"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		StoreDriver:          getEnvOrDefault("STORE_DRIVER", StoreDriverMemory),
		RedisURL:             os.Getenv("REDIS_URL"),
		EventsTopic:          getEnvOrDefault("EVENTS_TOPIC", events.DefaultTopic),
		ChallengeTTL:         getEnvDurationOrDefault("CHALLENGE_TTL", service.DefaultChallengeTTL),
		SessionTTL:           getEnvDurationOrDefault("SESSION_TTL", service.DefaultSessionTTL),
		AuthIDLength:         getEnvIntOrDefault("AUTH_ID_LENGTH", service.DefaultAuthIDLength),
		SessionIDLength:      getEnvIntOrDefault("SESSION_ID_LENGTH", service.DefaultSessionIDLength),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Minute),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreDriverMemory:
	case StoreDriverRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if c.ChallengeTTL <= 0 {
		errs = append(errs, errors.New("CHALLENGE_TTL must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.AuthIDLength < service.MinIDLength {
		errs = append(errs, fmt.Errorf("AUTH_ID_LENGTH must be at least %d", service.MinIDLength))
	}
	if c.SessionIDLength < service.MinIDLength {
		errs = append(errs, fmt.Errorf("SESSION_ID_LENGTH must be at least %d", service.MinIDLength))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
