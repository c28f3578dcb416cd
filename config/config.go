package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"cardswap/database"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string `toml:"discord_token"`
	GuildID        string `toml:"guild_id"`         // Guild to register commands in, empty for global
	TradeChannelID string `toml:"trade_channel_id"` // Only channel commands are accepted in, empty allows all

	// Database configuration
	DatabaseURL  string `toml:"database_url"`
	DatabaseName string `toml:"database_name"`
	AutoMigrate  bool   `toml:"auto_migrate"`

	// NATS configuration
	NATSEnabled bool   `toml:"nats_enabled"`
	NATSServers string `toml:"nats_servers"` // NATS server addresses (comma-separated)

	// Trade configuration
	TradeTTL            time.Duration `toml:"-"`
	TradeExpiryInterval time.Duration `toml:"-"`
	TradeHistoryLimit   int           `toml:"trade_history_limit"`

	// OpenTelemetry configuration
	OTelEnabled              bool   `toml:"otel_enabled"`
	OTelServiceName          string `toml:"otel_service_name"`
	OTelExporterType         string `toml:"otel_exporter_type"` // console, otlp or none
	OTelOTLPEndpoint         string `toml:"otel_otlp_endpoint"`
	OTelExportIntervalMillis int    `toml:"otel_export_interval_millis"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // text or json

	// Environment
	Environment string `toml:"environment"` // development, production, debug or test
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
				instance.DiscordToken = "test-token"
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsDebug reports whether every interaction should be logged
func (c *Config) IsDebug() bool {
	return c.Environment == "debug"
}

// load reads the optional CONFIG_FILE and then applies environment overrides
func load() (*Config, error) {
	config := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	applyEnv(config)

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func defaults() *Config {
	return &Config{
		AutoMigrate:              true,
		NATSServers:              "nats://nats:4222",
		TradeTTL:                 24 * time.Hour,
		TradeExpiryInterval:      time.Minute,
		TradeHistoryLimit:        10,
		OTelServiceName:          "cardswap",
		OTelExporterType:         "none",
		OTelOTLPEndpoint:         "otel-collector:4317",
		OTelExportIntervalMillis: 30000,
		LogLevel:                 "info",
		LogFormat:                "text",
	}
}

// loadFile decodes a TOML file over the current values
func loadFile(path string, config *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var durations struct {
		TradeTTL            string `toml:"trade_ttl"`
		TradeExpiryInterval string `toml:"trade_expiry_interval"`
	}
	if err := toml.NewDecoder(file).Decode(config); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to rewind config file: %w", err)
	}
	if err := toml.NewDecoder(file).Decode(&durations); err != nil {
		return fmt.Errorf("failed to decode durations in %s: %w", path, err)
	}

	// Durations are written as Go duration strings, e.g. "24h"
	if durations.TradeTTL != "" {
		ttl, err := time.ParseDuration(durations.TradeTTL)
		if err != nil {
			return fmt.Errorf("invalid trade_ttl %q: %w", durations.TradeTTL, err)
		}
		config.TradeTTL = ttl
	}
	if durations.TradeExpiryInterval != "" {
		interval, err := time.ParseDuration(durations.TradeExpiryInterval)
		if err != nil {
			return fmt.Errorf("invalid trade_expiry_interval %q: %w", durations.TradeExpiryInterval, err)
		}
		config.TradeExpiryInterval = interval
	}
	return nil
}

func applyEnv(config *Config) {
	setString(&config.DiscordToken, "DISCORD_TOKEN")
	setString(&config.GuildID, "GUILD_ID")
	setString(&config.TradeChannelID, "TRADE_CHANNEL_ID")

	setString(&config.DatabaseURL, "DATABASE_URL")
	setString(&config.DatabaseName, "DATABASE_NAME")
	setBool(&config.AutoMigrate, "AUTO_MIGRATE")

	setBool(&config.NATSEnabled, "NATS_ENABLED")
	setString(&config.NATSServers, "NATS_SERVERS")

	setDuration(&config.TradeTTL, "TRADE_TTL")
	setDuration(&config.TradeExpiryInterval, "TRADE_EXPIRY_INTERVAL")
	if limit := os.Getenv("TRADE_HISTORY_LIMIT"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil && parsed > 0 {
			config.TradeHistoryLimit = parsed
		}
	}

	setBool(&config.OTelEnabled, "OTEL_ENABLED")
	setString(&config.OTelServiceName, "OTEL_SERVICE_NAME")
	setString(&config.OTelExporterType, "OTEL_EXPORTER_TYPE")
	setString(&config.OTelOTLPEndpoint, "OTEL_OTLP_ENDPOINT")
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}

	setString(&config.LogLevel, "LOG_LEVEL")
	setString(&config.LogFormat, "LOG_FORMAT")
	setString(&config.Environment, "ENVIRONMENT")

	if config.Environment == "" {
		config.Environment = "development"
	}
}

func (c *Config) validate() error {
	if c.TradeTTL <= 0 {
		return fmt.Errorf("TRADE_TTL must be positive")
	}
	if c.TradeExpiryInterval <= 0 {
		return fmt.Errorf("TRADE_EXPIRY_INTERVAL must be positive")
	}
	if c.Environment == "test" {
		return nil
	}
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	return nil
}

func setString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func setBool(target *bool, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func setDuration(target *time.Duration, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			*target = parsed
		}
	}
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	config := defaults()
	config.Environment = "test"
	config.AutoMigrate = false
	return config
}
