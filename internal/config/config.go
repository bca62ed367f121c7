package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Rule store backends
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
)

// Config holds service configuration.
type Config struct {
	ServerAddr      string
	ShutdownTimeout time.Duration
	LogLevel        string

	GitHubToken        string
	GitHubAPIURL       string
	WebhookSecret      string
	FetchRetryAttempts uint
	RunTimeout         time.Duration

	RuleStore     string
	RuleStorePath string
	DatabaseURL   string
	MigrationsDir string

	NATSURL     string
	NATSSubject string
	NATSQueue   string

	// APITokenHash is a bcrypt hash of the bearer token required on /v1.
	// Empty disables authentication.
	APITokenHash string
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "automation")
		pass := getenv("POSTGRES_PASSWORD", "automation_pass")
		db := getenv("POSTGRES_DB", "automation")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}

	store := getenv("RULE_STORE", StoreFile)
	storePath := os.Getenv("RULE_STORE_PATH")
	switch store {
	case StoreMemory, StorePostgres:
	case StoreFile:
		if storePath == "" {
			storePath = "data/automation_rules.json"
		}
	case StoreBolt:
		if storePath == "" {
			storePath = "data/automation.bolt"
		}
	default:
		return nil, fmt.Errorf("invalid RULE_STORE %q: must be one of memory, file, bolt, postgres", store)
	}

	attempts, err := strconv.ParseUint(getenv("FETCH_RETRY_ATTEMPTS", "3"), 10, 32)
	if err != nil || attempts == 0 {
		return nil, fmt.Errorf("invalid FETCH_RETRY_ATTEMPTS %q", os.Getenv("FETCH_RETRY_ATTEMPTS"))
	}

	return &Config{
		ServerAddr:         getenv("SERVER_ADDR", "0.0.0.0:8080"),
		ShutdownTimeout:    parseDuration(getenv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		GitHubToken:        os.Getenv("GITHUB_TOKEN"),
		GitHubAPIURL:       os.Getenv("GITHUB_API_URL"),
		WebhookSecret:      os.Getenv("GITHUB_WEBHOOK_SECRET"),
		FetchRetryAttempts: uint(attempts),
		RunTimeout:         parseDuration(getenv("RUN_TIMEOUT", "60s"), time.Minute),
		RuleStore:          store,
		RuleStorePath:      storePath,
		DatabaseURL:        dsn,
		MigrationsDir:      getenv("MIGRATIONS_DIR", "internal/migrations"),
		NATSURL:            os.Getenv("NATS_URL"),
		NATSSubject:        getenv("NATS_SUBJECT", "automation.events"),
		NATSQueue:          getenv("NATS_QUEUE", "automation-workers"),
		APITokenHash:       os.Getenv("API_TOKEN_HASH"),
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}
