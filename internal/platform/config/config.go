package config

import (
	"os"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	Environment string
	PostgresDSN string
	RedisURL    string
	CookieName  string
	SessionTTL  time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Empty PostgresDSN or RedisURL selects the in-memory store for that concern,
// which keeps local development dependency-free.
func FromEnv() Server {
	addr := os.Getenv("PROCTOR_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	cookieName := os.Getenv("COOKIE_NAME")
	if cookieName == "" {
		cookieName = "proctor_session"
	}

	sessionTTL := 12 * time.Hour
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			sessionTTL = d
		}
	}

	return Server{
		Addr:        addr,
		Environment: env,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		RedisURL:    os.Getenv("REDIS_URL"),
		CookieName:  cookieName,
		SessionTTL:  sessionTTL,
	}
}
