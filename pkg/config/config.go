package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tables    TablesConfig    `yaml:"tables"`
	Queue     QueueConfig     `yaml:"queue"`
	Redis     RedisConfig     `yaml:"redis"`
	Bookings  BookingsConfig  `yaml:"bookings"`
	Log       LogConfig       `yaml:"log"`
	Payouts   PayoutsConfig   `yaml:"payouts"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port string `yaml:"port"`
}

// TablesConfig holds the DynamoDB table names
type TablesConfig struct {
	Users         string `yaml:"users"`
	Ledger        string `yaml:"ledger"`
	Referrals     string `yaml:"referrals"`
	Campaigns     string `yaml:"campaigns"`
	Payouts       string `yaml:"payouts"`
	Notifications string `yaml:"notifications"`
}

// QueueConfig contains the notification queue settings. An empty URL
// disables notifications.
type QueueConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig contains the notification de-duplication store settings
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	DedupTTL time.Duration `yaml:"dedup_ttl"`
}

// BookingsConfig contains the Postgres connection of the booking store.
// An empty DSN means no booking earnings are counted.
type BookingsConfig struct {
	DSN string `yaml:"dsn"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// PayoutsConfig contains validator settings
type PayoutsConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	DuplicateWindow time.Duration `yaml:"duplicate_window"`
}

// ReconcileConfig contains the reconciliation thresholds
type ReconcileConfig struct {
	StaleClaimAfter    time.Duration `yaml:"stale_claim_after"`
	StuckReferralAfter time.Duration `yaml:"stuck_referral_after"`
}

// SchedulerConfig contains cron schedule settings (with seconds)
type SchedulerConfig struct {
	ProcessPayouts    string `yaml:"process_payouts"`
	DistributeRewards string `yaml:"distribute_rewards"`
	Reconcile         string `yaml:"reconcile"`
}

// Load reads configuration from an optional YAML file, then applies the
// environment. A .env file in the working directory is loaded first.
func Load(configPath string) (*Config, error) {
	// Missing .env is fine outside local development.
	_ = godotenv.Load()

	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Tables
	setString(&c.Tables.Users, "DYNAMODB_USERS_TABLE_NAME")
	setString(&c.Tables.Ledger, "DYNAMODB_LEDGER_TABLE_NAME")
	setString(&c.Tables.Referrals, "DYNAMODB_REFERRALS_TABLE_NAME")
	setString(&c.Tables.Campaigns, "DYNAMODB_CAMPAIGNS_TABLE_NAME")
	setString(&c.Tables.Payouts, "DYNAMODB_PAYOUTS_TABLE_NAME")
	setString(&c.Tables.Notifications, "DYNAMODB_NOTIFICATIONS_TABLE_NAME")

	setString(&c.Queue.URL, "SQS_QUEUE_URL")
	setString(&c.Server.Port, "HTTP_PORT")

	// Redis
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	if val := os.Getenv("REDIS_DB"); val != "" {
		fmt.Sscanf(val, "%d", &c.Redis.DB)
	}

	setString(&c.Bookings.DSN, "BOOKINGS_DATABASE_URL")

	// Log
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	// Payouts
	if val := os.Getenv("PAYOUT_MAX_ATTEMPTS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Payouts.MaxAttempts)
	}
	setDuration(&c.Payouts.DuplicateWindow, "PAYOUT_DUPLICATE_WINDOW")

	// Reconcile
	setDuration(&c.Reconcile.StaleClaimAfter, "STALE_CLAIM_AFTER")
	setDuration(&c.Reconcile.StuckReferralAfter, "STUCK_REFERRAL_AFTER")
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setDuration(dst *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Tables.Users == "" || c.Tables.Ledger == "" || c.Tables.Referrals == "" ||
		c.Tables.Campaigns == "" || c.Tables.Payouts == "" || c.Tables.Notifications == "" {
		return errors.New("one or more DynamoDB table names are not set")
	}

	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Redis.DedupTTL == 0 {
		c.Redis.DedupTTL = 24 * time.Hour
	}

	if c.Payouts.MaxAttempts < 0 {
		return fmt.Errorf("invalid payout max attempts: %d", c.Payouts.MaxAttempts)
	}
	if c.Payouts.MaxAttempts == 0 {
		c.Payouts.MaxAttempts = 3
	}
	if c.Payouts.DuplicateWindow == 0 {
		c.Payouts.DuplicateWindow = 5 * time.Minute
	}

	if c.Reconcile.StaleClaimAfter == 0 {
		c.Reconcile.StaleClaimAfter = 15 * time.Minute
	}
	if c.Reconcile.StuckReferralAfter == 0 {
		c.Reconcile.StuckReferralAfter = 20 * time.Minute
	}

	// Scheduler defaults
	if c.Scheduler.ProcessPayouts == "" {
		c.Scheduler.ProcessPayouts = "0 */10 * * * *" // every 10 minutes
	}
	if c.Scheduler.DistributeRewards == "" {
		c.Scheduler.DistributeRewards = "0 0 * * * *" // hourly
	}
	if c.Scheduler.Reconcile == "" {
		c.Scheduler.Reconcile = "0 */15 * * * *" // every 15 minutes
	}

	return nil
}

// Address returns the HTTP listen address
func (c *Config) Address() string {
	return ":" + c.Server.Port
}
