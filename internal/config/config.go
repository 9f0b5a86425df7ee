package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/rafiq-frontend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr      string        `env:"SERVER_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Backend connector
	RafiqConnectorCfg RafiqConnectorConfig `envPrefix:"RAFIQ_"`

	// Conversation storage
	StoreCfg StoreConfig `envPrefix:"STORE_"`

	// Database configuration, used by the postgres store driver
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Redis configuration, used by the redis store driver
	RedisCfg RedisConfig `envPrefix:"REDIS_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Web frontend
	WebCfg WebConfig `envPrefix:"WEB_"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Folder ingestion
	WatchCfg WatchConfig `envPrefix:"WATCH_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string        `env:"BOT_TOKEN"`
	UpdateTimeout      int           `env:"UPDATE_TIMEOUT" envDefault:"60"`
	MaxConcurrentUsers int           `env:"MAX_CONCURRENT_USERS" envDefault:"100"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int           `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	StateTTL           time.Duration `env:"STATE_TTL" envDefault:"10m"`
}

type RafiqConnectorConfig struct {
	HTTPClientConfig
	IngestEndpoint string               `env:"INGEST_ENDPOINT" envDefault:"/ingest/"`
	ChatEndpoint   string               `env:"CHAT_ENDPOINT" envDefault:"/chat/"`
	HealthEndpoint string               `env:"HEALTH_ENDPOINT" envDefault:"/"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"120s"`
	TLSHandshakeTimeout   time.Duration `env:"TLS_HANDSHAKE_TIMEOUT" envDefault:"10s"`
	MaxIdleConns          int           `env:"MAX_IDLE_CONNS" envDefault:"100"`
	MaxIdleConnsPerHost   int           `env:"MAX_IDLE_CONNS_PER_HOST" envDefault:"10"`
	InsecureSkipVerify    bool          `env:"INSECURE_SKIP_VERIFY" envDefault:"false"`
	Token                 string        `env:"TOKEN"`
	UserAgent             string        `env:"USER_AGENT" envDefault:"rafiq-frontend"`
	Url                   string        `env:"SERVICE_URL" envDefault:"http://localhost:8000"`
}

// StoreConfig selects where conversations live
type StoreConfig struct {
	Driver          string        `env:"DRIVER" envDefault:"memory"`
	TTL             time.Duration `env:"TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

type RedisConfig struct {
	Addrs     []string `env:"ADDRS" envSeparator:"," envDefault:"localhost:6379"`
	Username  string   `env:"USERNAME"`
	Password  string   `env:"PASSWORD"`
	DB        int      `env:"DB" envDefault:"0"`
	KeyPrefix string   `env:"KEY_PREFIX" envDefault:"rafiq:conversation:"`
}

// WebConfig holds settings of the server-rendered chat page
type WebConfig struct {
	CookieName     string        `env:"COOKIE_NAME" envDefault:"rafiq_session"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CookieMaxAge   time.Duration `env:"COOKIE_MAX_AGE" envDefault:"720h"`
	PollInterval   time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"150s"`
	RenderMarkdown bool          `env:"RENDER_MARKDOWN" envDefault:"false"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"5242880"`    // 5 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10 MiB
}

// WatchConfig configures folder ingestion; an empty Dir disables it
type WatchConfig struct {
	Dir      string        `env:"DIR"`
	Debounce time.Duration `env:"DEBOUNCE" envDefault:"500ms"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment and validates it.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.RafiqConnectorCfg.Url == "" {
		errors = append(errors, "RAFIQ_SERVICE_URL must not be empty")
	}

	if cfg.RafiqConnectorCfg.Retry.Attempts < 1 || cfg.RafiqConnectorCfg.Retry.Attempts > 10 {
		errors = append(errors, fmt.Sprintf("RAFIQ_RETRY_ATTEMPTS must be between 1 and 10, got %d", cfg.RafiqConnectorCfg.Retry.Attempts))
	}

	switch cfg.StoreCfg.Driver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required for STORE_DRIVER=postgres")
		}
		if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
			errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
		}
		if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
			errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
		}
	case StoreDriverRedis:
		if len(cfg.RedisCfg.Addrs) == 0 {
			errors = append(errors, "REDIS_ADDRS is required for STORE_DRIVER=redis")
		}
	default:
		errors = append(errors, fmt.Sprintf("STORE_DRIVER must be one of memory, postgres, redis, got %q", cfg.StoreCfg.Driver))
	}

	if cfg.StoreCfg.TTL <= 0 {
		errors = append(errors, fmt.Sprintf("STORE_TTL must be positive, got %s", cfg.StoreCfg.TTL))
	}

	if cfg.WebCfg.PollInterval < 500*time.Millisecond {
		errors = append(errors, fmt.Sprintf("WEB_POLL_INTERVAL must be at least 500ms, got %s", cfg.WebCfg.PollInterval))
	}

	if cfg.FileUploadCfg.MaxFileSize < 1 || cfg.FileUploadCfg.MaxFileSize > cfg.FileUploadCfg.MaxUploadSize {
		errors = append(errors, fmt.Sprintf("FILE_UPLOAD_MAX_FILE_SIZE must be between 1 and FILE_UPLOAD_MAX_UPLOAD_SIZE(%d), got %d",
			cfg.FileUploadCfg.MaxUploadSize, cfg.FileUploadCfg.MaxFileSize))
	}

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
