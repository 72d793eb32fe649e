// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultUserID owns data in single-user local mode.
const DefaultUserID = "00000000-0000-0000-0000-000000000001"

// Config holds every setting used by the synapse binaries.
type Config struct {
	// Application
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	UserID    string `envconfig:"SYNAPSE_USER_ID" default:"00000000-0000-0000-0000-000000000001"`

	// Storage. Local mode forces SQLite even when DATABASE_URL is set.
	LocalMode        bool   `envconfig:"SYNAPSE_LOCAL_MODE" default:"false"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	DatabaseDriver   string `envconfig:"DATABASE_DRIVER" default:"auto"`
	SQLitePath       string `envconfig:"SQLITE_PATH"`
	DatabaseMaxConns int    `envconfig:"DATABASE_MAX_CONNS" default:"10"`

	// View cache
	RedisURL string        `envconfig:"REDIS_URL"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// Events
	RabbitMQURL            string        `envconfig:"RABBITMQ_URL"`
	OutboxPollInterval     time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"100ms"`
	OutboxBatchSize        int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	OutboxMaxRetries       int           `envconfig:"OUTBOX_MAX_RETRIES" default:"5"`
	OutboxRetention        time.Duration `envconfig:"OUTBOX_RETENTION" default:"336h"`
	OutboxCleanupInterval  time.Duration `envconfig:"OUTBOX_CLEANUP_INTERVAL" default:"24h"`
	OutboxStatsInterval    time.Duration `envconfig:"OUTBOX_STATS_INTERVAL" default:"30s"`
	OutboxProcessorEnabled bool          `envconfig:"OUTBOX_PROCESSOR_ENABLED" default:"true"`

	// HTTP surfaces
	WorkerHealthAddr string `envconfig:"WORKER_HEALTH_ADDR" default:"0.0.0.0:8081"`
	APIAddr          string `envconfig:"API_ADDR" default:"0.0.0.0:8080"`
	APITokens        string `envconfig:"API_TOKENS"`
	GatewayAddr      string `envconfig:"GATEWAY_ADDR" default:"0.0.0.0:8090"`
	// GatewayURL switches classification to a remote gateway service.
	GatewayURL     string        `envconfig:"GATEWAY_URL"`
	GatewayTimeout time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"30s"`

	// Language model
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`

	BreakerMaxFailures uint32        `envconfig:"BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"BREAKER_OPEN_TIMEOUT" default:"30s"`

	// Enrichment sweeper
	SweepDebounce  time.Duration `envconfig:"SWEEP_DEBOUNCE" default:"1500ms"`
	SweepMaxWait   time.Duration `envconfig:"SWEEP_MAX_WAIT" default:"6s"`
	SweepBatchSize int           `envconfig:"SWEEP_BATCH_SIZE" default:"3"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`

	// MCP
	MCPAddr      string `envconfig:"MCP_ADDR" default:"0.0.0.0:8082"`
	MCPAuthToken string `envconfig:"MCP_AUTH_TOKEN"`
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.resolveDriver()
	return &cfg, nil
}

func (c *Config) resolveDriver() {
	switch {
	case c.LocalMode:
		c.DatabaseDriver = "sqlite"
	case c.DatabaseDriver == "" || c.DatabaseDriver == "auto":
		if strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://") {
			c.DatabaseDriver = "postgres"
		} else {
			c.DatabaseDriver = "sqlite"
		}
	}
}

// IsDevelopment reports APP_ENV=development.
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

// IsProduction reports APP_ENV=production.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// IsLocalMode reports whether storage is the embedded SQLite file.
func (c *Config) IsLocalMode() bool { return c.DatabaseDriver == "sqlite" }

// DefaultUser parses UserID.
func (c *Config) DefaultUser() (uuid.UUID, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("SYNAPSE_USER_ID: %w", err)
	}
	return id, nil
}

// ErrInvalidTokenSpec is returned for malformed API_TOKENS entries.
var ErrInvalidTokenSpec = errors.New("API_TOKENS entries must be token:uuid")

// APITokenMap parses API_TOKENS ("token:uuid,token:uuid") into a lookup of
// bearer token to user ID.
func (c *Config) APITokenMap() (map[string]uuid.UUID, error) {
	tokens := make(map[string]uuid.UUID)
	for _, pair := range strings.Split(c.APITokens, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, rawID, ok := strings.Cut(pair, ":")
		if !ok || token == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTokenSpec, pair)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTokenSpec, pair)
		}
		tokens[token] = id
	}
	return tokens, nil
}

// Validate checks settings that only fail at first use otherwise.
func (c *Config) Validate() error {
	if _, err := c.DefaultUser(); err != nil {
		return err
	}
	if _, err := c.APITokenMap(); err != nil {
		return err
	}
	if c.DatabaseDriver == "postgres" && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for the postgres driver")
	}
	if c.SweepBatchSize <= 0 {
		return errors.New("SWEEP_BATCH_SIZE must be positive")
	}
	return nil
}

// LogConfig returns logger settings for the named binary.
func (c *Config) LogConfig(service, version string) observability.LogConfig {
	lc := observability.DefaultLogConfig()
	lc.Level = c.LogLevel
	if c.IsDevelopment() && c.LogLevel == "" {
		lc.Level = "debug"
	}
	if strings.EqualFold(c.LogFormat, string(observability.LogFormatJSON)) {
		lc.Format = observability.LogFormatJSON
	}
	lc.ServiceName = service
	lc.ServiceVersion = version
	return lc
}
