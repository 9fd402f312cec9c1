package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// BackendURL is the storefront API base, e.g. http://localhost:8080.
	BackendURL string
	// RedisAddr enables redis-backed client state when set; empty keeps
	// everything in process memory.
	RedisAddr string

	PollInterval  time.Duration
	PollMaxWait   time.Duration
	RedirectDelay time.Duration

	MockAPIPort string
	JWTSecret   string
	// PaidAfterPolls controls the mock gateway: a pending qpay order flips to
	// paid after this many status checks.
	PaidAfterPolls int
}

func Load() Config {
	return Config{
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8080"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		PollInterval:   getDuration("PAYMENT_POLL_INTERVAL", 3*time.Second),
		PollMaxWait:    getDuration("PAYMENT_POLL_MAX_WAIT", 2*time.Minute),
		RedirectDelay:  getDuration("PAYMENT_REDIRECT_DELAY", 2*time.Second),
		MockAPIPort:    getEnv("MOCKAPI_PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", "mockapi-secret"),
		PaidAfterPolls: getInt("MOCKAPI_PAID_AFTER_POLLS", 3),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
