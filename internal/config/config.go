package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	BackendHTTP     = "http"
	BackendPostgres = "postgres"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Database  DatabaseConfig  `yaml:"database"`
	Billing   BillingConfig   `yaml:"billing"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains local billing API settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// BackendConfig selects where sessions, rates and payments live
type BackendConfig struct {
	Type           string `yaml:"type"` // "http" or "postgres"
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// BillingConfig contains live cost and price entry settings
type BillingConfig struct {
	TickIntervalMillis int    `yaml:"tick_interval_ms"`
	SyncToleranceUSD   string `yaml:"sync_tolerance_usd"`
	SyncToleranceLBP   string `yaml:"sync_tolerance_lbp"`
	PaymentMethod      string `yaml:"payment_method"` // "cash" or "card"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	RefreshExchangeRate string `yaml:"refresh_exchange_rate"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level     string `yaml:"level"`      // "trace", "debug", "info", "warn", "error"
	Format    string `yaml:"format"`     // "json" or "text"
	CronLevel string `yaml:"cron_level"` // level of cron's per-run messages
}

// Load reads configuration from a YAML file. A .env file next to the
// process, when present, is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Backend
	if val := os.Getenv("BACKEND_TYPE"); val != "" {
		c.Backend.Type = val
	}
	if val := os.Getenv("POS_API_URL"); val != "" {
		c.Backend.BaseURL = val
	}

	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Billing
	if val := os.Getenv("BILLING_TICK_INTERVAL_MS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Billing.TickIntervalMillis)
	}
	if val := os.Getenv("BILLING_PAYMENT_METHOD"); val != "" {
		c.Billing.PaymentMethod = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
	if val := os.Getenv("LOG_CRON_LEVEL"); val != "" {
		c.Log.CronLevel = val
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Backend.Type == "" {
		c.Backend.Type = BackendHTTP
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = 10
	}
	switch c.Backend.Type {
	case BackendHTTP:
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("backend base_url is required for http backend")
		}
	case BackendPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unknown backend type: %q", c.Backend.Type)
	}

	// Billing defaults
	if c.Billing.TickIntervalMillis <= 0 {
		c.Billing.TickIntervalMillis = 1000
	}
	if c.Billing.SyncToleranceUSD == "" {
		c.Billing.SyncToleranceUSD = "0.01"
	}
	if c.Billing.SyncToleranceLBP == "" {
		c.Billing.SyncToleranceLBP = "1"
	}
	for name, v := range map[string]string{
		"sync_tolerance_usd": c.Billing.SyncToleranceUSD,
		"sync_tolerance_lbp": c.Billing.SyncToleranceLBP,
	} {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return fmt.Errorf("invalid billing %s: %q", name, v)
		}
	}
	if c.Billing.PaymentMethod == "" {
		c.Billing.PaymentMethod = "cash"
	}
	if c.Billing.PaymentMethod != "cash" && c.Billing.PaymentMethod != "card" {
		return fmt.Errorf("invalid billing payment_method: %q", c.Billing.PaymentMethod)
	}

	// Scheduler defaults
	if c.Scheduler.RefreshExchangeRate == "" {
		c.Scheduler.RefreshExchangeRate = "@every 30s"
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.CronLevel == "" {
		c.Log.CronLevel = "trace"
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the local API listen address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

func (c *Config) GetBackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func (c *Config) GetTickInterval() time.Duration {
	return time.Duration(c.Billing.TickIntervalMillis) * time.Millisecond
}

// GetSyncTolerance returns the USD and LBP thresholds for price entry.
// Validate has already checked both parse.
func (c *Config) GetSyncTolerance() (usd, lbp decimal.Decimal) {
	return decimal.RequireFromString(c.Billing.SyncToleranceUSD), decimal.RequireFromString(c.Billing.SyncToleranceLBP)
}
