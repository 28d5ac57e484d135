package config

import (
	"os"
	"strings"
	"time"
)

// Store backends accepted by POCKET_STORE.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        string
	Store           string
	DatabaseURL     string
	RedisURL        string
	KafkaBrokers    []string
	AuditTopic      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// DemoMode reports whether the server runs outside production.
func (s Server) DemoMode() bool {
	return s.Environment != "production"
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	store := strings.ToLower(os.Getenv("POCKET_STORE"))
	switch store {
	case StoreRedis, StorePostgres:
	default:
		store = StoreMemory
	}

	return Server{
		Addr:            envOr("POCKET_ADDR", ":8080"),
		Environment:     envOr("POCKET_ENV", "development"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		Store:           store,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		AuditTopic:      envOr("AUDIT_TOPIC", "pocket.audit"),
		RequestTimeout:  durationOr("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: durationOr("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// durationOr ignores unparsable values and keeps the fallback.
func durationOr(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
