package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Tracker    TrackerConfig    `envconfig:"TRACKER"`
	Database   DatabaseConfig   `envconfig:"DATABASE"`
	ClickHouse ClickHouseConfig `envconfig:"CLICKHOUSE"`
	Redis      RedisConfig      `envconfig:"REDIS"`
	Telegram   TelegramConfig   `envconfig:"TELEGRAM"`
	Logging    LoggingConfig    `envconfig:"LOGGING"`
}

// TrackerConfig represents statistical tracker parameters
type TrackerConfig struct {
	StartingCapital  float64       `envconfig:"TRACKER_STARTING_CAPITAL" default:"1000.0"`
	BreakevenWinRate float64       `envconfig:"TRACKER_BREAKEVEN_WIN_RATE" default:"0.50"`
	PriorAlpha       float64       `envconfig:"TRACKER_PRIOR_ALPHA" default:"1.0"`
	PriorBeta        float64       `envconfig:"TRACKER_PRIOR_BETA" default:"1.0"`
	RecentTradeCap   int           `envconfig:"TRACKER_RECENT_TRADE_CAP" default:"500"`
	Interval         time.Duration `envconfig:"TRACKER_INTERVAL" default:"5m"`
	SnapshotInterval time.Duration `envconfig:"TRACKER_SNAPSHOT_INTERVAL" default:"5m"`
}

// DatabaseConfig represents PostgreSQL connection parameters
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"edge_tracker"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// ClickHouseConfig represents ClickHouse connection parameters for the
// equity time series
type ClickHouseConfig struct {
	Enabled  bool   `envconfig:"CLICKHOUSE_ENABLED" default:"true"`
	Host     string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	Name     string `envconfig:"CLICKHOUSE_DB" default:"edge_tracker"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD" required:"false"`
}

// RedisConfig represents Redis connection parameters for distributed
// writer locks
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" required:"false"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// TelegramConfig represents Telegram alerting configuration
type TelegramConfig struct {
	BotToken        string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID          int64  `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
	AlertOnVerdicts bool   `envconfig:"TELEGRAM_ALERT_ON_VERDICTS" default:"true"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid. Fails fast so degenerate
// tracker parameters never reach the estimator.
func (c *Config) Validate() error {
	if c.Tracker.StartingCapital <= 0 {
		return fmt.Errorf("starting_capital must be positive")
	}
	if c.Tracker.BreakevenWinRate <= 0 || c.Tracker.BreakevenWinRate >= 1 {
		return fmt.Errorf("breakeven_win_rate must be in (0,1)")
	}
	if c.Tracker.PriorAlpha < 1 || c.Tracker.PriorBeta < 1 {
		return fmt.Errorf("prior alpha/beta must be at least 1")
	}
	if c.Tracker.RecentTradeCap < 1 {
		return fmt.Errorf("recent_trade_cap must be at least 1")
	}
	if c.Tracker.Interval <= 0 {
		return fmt.Errorf("tracker interval must be positive")
	}

	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram chat_id is required when bot token is set")
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetDSN returns ClickHouse connection string
func (c *ClickHouseConfig) GetDSN() string {
	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Name,
	)
}
