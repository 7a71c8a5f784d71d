// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env  string // APP_ENV (dev, test, prod)
	Port string // APP_PORT

	DBUser        string
	DBPass        string // may be empty
	DBHost        string
	DBPort        string
	DBName        string
	DBAutoMigrate bool // apply the embedded schema at startup

	JWTSecret        string // signs access tokens
	JWTRefreshSecret string // signs refresh tokens; must differ from JWTSecret
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	BcryptCost       int

	AuditWorkers    int
	AuditQueueSize  int
	AuditMaxPending int // overflow senders allowed once the queue is full

	// RabbitMQ fan-out of audit.recorded events. Disabled when URL is empty.
	RabbitMQURL   string
	AuditConsumer bool // run the logs/audit.log consumer in-process
	AuditLogDir   string

	// Optional bootstrap administrator, created when the email is unknown.
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load reads the environment (after merging .env, if present) and returns
// a Config. Every missing required variable is reported in one error.
func Load() (Config, error) {
	_ = godotenv.Load()

	e := &env{}
	cfg := Config{
		Env:  getenv("APP_ENV", "dev"),
		Port: e.must("APP_PORT"),

		DBUser:        e.must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        e.must("DB_HOST"),
		DBPort:        e.must("DB_PORT"),
		DBName:        e.must("DB_NAME"),
		DBAutoMigrate: envBool("DB_AUTO_MIGRATE", false),

		JWTSecret:        e.must("JWT_SECRET"),
		JWTRefreshSecret: e.must("JWT_REFRESH_SECRET"),
		AccessTTL:        time.Duration(e.intOr("ACCESS_TOKEN_TTL_MIN", 15)) * time.Minute,
		RefreshTTL:       time.Duration(e.intOr("REFRESH_TOKEN_TTL_DAYS", 7)) * 24 * time.Hour,
		BcryptCost:       e.intOr("BCRYPT_COST", 10),

		AuditWorkers:    e.intOr("AUDIT_WORKERS", 4),
		AuditQueueSize:  e.intOr("AUDIT_QUEUE_SIZE", 1024),
		AuditMaxPending: e.intOr("AUDIT_MAX_PENDING", 256),

		RabbitMQURL:   strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		AuditConsumer: envBool("AUDIT_CONSUMER_ENABLED", true),
		AuditLogDir:   getenv("AUDIT_LOG_DIR", "logs"),

		AdminName:     getenv("ADMIN_NAME", "Administrator"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	if cfg.JWTSecret != "" && cfg.JWTSecret == cfg.JWTRefreshSecret {
		e.errs = append(e.errs, errors.New("JWT_REFRESH_SECRET must differ from JWT_SECRET"))
	}
	if err := errors.Join(e.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// env collects lookup failures so that all of them are reported together.
type env struct{ errs []error }

func (e *env) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		e.errs = append(e.errs, fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

func (e *env) intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid int for %s: %q", key, s))
		return def
	}
	return n
}
