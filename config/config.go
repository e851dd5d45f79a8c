package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP adapter
	HTTPAddr string

	// Fixture provider (football-data.org v4)
	FootballDataBaseURL string
	FootballDataAPIKey  string
	FootballDataTimeout time.Duration
	ProviderCacheTTL    time.Duration

	// Scheduling
	SyncInterval         time.Duration
	SettlementInterval   time.Duration
	SyncCompetitionDelay time.Duration
	SyncCompetitionCodes []string // empty means every stored competition
	JobTimeout           time.Duration

	// Odds are drawn once per fixture unless this is set
	RegenerateOddsOnResync bool

	// Wallet
	MinDeposit decimal.Decimal

	// Optional integrations, disabled when empty
	RedisAddr        string
	NATSURL          string
	DiscordToken     string
	DiscordChannelID string

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.RWMutex
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		loaded, err := load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
		mu.Lock()
		if instance == nil {
			instance = loaded
		}
		mu.Unlock()
	})
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// load loads configuration from environment variables, reading .env first when present
func load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		HTTPAddr:    getEnvWithDefault("HTTP_ADDR", ":8080"),

		FootballDataBaseURL: getEnvWithDefault("FOOTBALL_DATA_BASE_URL", "https://api.football-data.org/v4/"),
		FootballDataAPIKey:  os.Getenv("FOOTBALL_DATA_API_KEY"),

		RegenerateOddsOnResync: os.Getenv("REGENERATE_ODDS_ON_RESYNC") == "true",

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		NATSURL:          os.Getenv("NATS_URL"),
		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		DiscordChannelID: os.Getenv("DISCORD_CHANNEL_ID"),

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	var err error
	durations := []struct {
		key      string
		fallback time.Duration
		target   *time.Duration
	}{
		{"FOOTBALL_DATA_TIMEOUT", 15 * time.Second, &config.FootballDataTimeout},
		{"PROVIDER_CACHE_TTL", 10 * time.Minute, &config.ProviderCacheTTL},
		{"SYNC_INTERVAL", 800 * time.Second, &config.SyncInterval},
		{"SETTLEMENT_INTERVAL", 10 * time.Second, &config.SettlementInterval},
		{"SYNC_COMPETITION_DELAY", 10 * time.Second, &config.SyncCompetitionDelay},
		{"JOB_TIMEOUT", 10 * time.Minute, &config.JobTimeout},
	}
	for _, d := range durations {
		if *d.target, err = getDurationWithDefault(d.key, d.fallback); err != nil {
			return nil, err
		}
	}

	config.MinDeposit = decimal.NewFromInt(10)
	if minDeposit := os.Getenv("MIN_DEPOSIT"); minDeposit != "" {
		parsed, err := decimal.NewFromString(minDeposit)
		if err != nil {
			return nil, fmt.Errorf("invalid MIN_DEPOSIT %q: %w", minDeposit, err)
		}
		config.MinDeposit = parsed
	}

	if codes := os.Getenv("SYNC_COMPETITION_CODES"); codes != "" {
		for _, code := range strings.Split(codes, ",") {
			code = strings.TrimSpace(code)
			if code != "" {
				config.SyncCompetitionCodes = append(config.SyncCompetitionCodes, strings.ToUpper(code))
			}
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.FootballDataAPIKey == "" {
			return nil, fmt.Errorf("FOOTBALL_DATA_API_KEY is required")
		}
		if config.DiscordToken != "" && config.DiscordChannelID == "" {
			return nil, fmt.Errorf("DISCORD_CHANNEL_ID is required when DISCORD_TOKEN is set")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationWithDefault accepts Go duration strings ("800s", "2m") or plain seconds
func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	once.Do(func() {})
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:          "test",
		HTTPAddr:             ":0",
		FootballDataBaseURL:  "http://localhost/v4/",
		FootballDataTimeout:  time.Second,
		ProviderCacheTTL:     time.Minute,
		SyncInterval:         800 * time.Second,
		SettlementInterval:   10 * time.Second,
		SyncCompetitionDelay: 0,
		JobTimeout:           time.Minute,
		MinDeposit:           decimal.NewFromInt(10),
		LogLevel:             "debug",
	}
}
