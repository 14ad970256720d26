package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the prospector server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Engine   EngineConfig
	Leads    LeadsConfig
	History  HistoryConfig
}

type ServerConfig struct {
	Port           int
	Env            string
	RequestsPerMin int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// EngineConfig configures the remote scraping engine client and the
// polling loop that drives active jobs.
type EngineConfig struct {
	BaseURL         string
	Timeout         time.Duration
	PollInterval    time.Duration
	MaxPollAttempts int
}

// LeadsConfig configures the lead-management service client used for
// result imports.
type LeadsConfig struct {
	BaseURL string
	Timeout time.Duration
}

type HistoryConfig struct {
	ListLimit int
	CacheTTL  time.Duration
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           envInt("PROSPECTOR_PORT", 8080),
			Env:            envString("PROSPECTOR_ENV", "development"),
			RequestsPerMin: envInt("PROSPECTOR_REQUESTS_PER_MIN", 60),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Engine: EngineConfig{
			BaseURL:         os.Getenv("ENGINE_BASE_URL"),
			Timeout:         envDuration("ENGINE_TIMEOUT", 30*time.Second),
			PollInterval:    envDuration("ENGINE_POLL_INTERVAL", 2*time.Second),
			MaxPollAttempts: envInt("ENGINE_MAX_POLL_ATTEMPTS", 300),
		},
		Leads: LeadsConfig{
			BaseURL: os.Getenv("LEADS_BASE_URL"),
			Timeout: envDuration("LEADS_TIMEOUT", 30*time.Second),
		},
		History: HistoryConfig{
			ListLimit: envInt("HISTORY_LIST_LIMIT", 50),
			CacheTTL:  envDuration("HISTORY_CACHE_TTL", 30*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Engine.BaseURL == "" {
		return fmt.Errorf("ENGINE_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Engine.BaseURL, "http://") && !strings.HasPrefix(c.Engine.BaseURL, "https://") {
		return fmt.Errorf("ENGINE_BASE_URL must start with http:// or https://, got %q", c.Engine.BaseURL)
	}
	if c.Engine.PollInterval <= 0 {
		return fmt.Errorf("ENGINE_POLL_INTERVAL must be positive, got %v", c.Engine.PollInterval)
	}
	if c.Engine.MaxPollAttempts <= 0 {
		return fmt.Errorf("ENGINE_MAX_POLL_ATTEMPTS must be positive, got %d", c.Engine.MaxPollAttempts)
	}

	if c.Leads.BaseURL == "" {
		return fmt.Errorf("LEADS_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Leads.BaseURL, "http://") && !strings.HasPrefix(c.Leads.BaseURL, "https://") {
		return fmt.Errorf("LEADS_BASE_URL must start with http:// or https://, got %q", c.Leads.BaseURL)
	}

	if c.History.ListLimit <= 0 {
		return fmt.Errorf("HISTORY_LIST_LIMIT must be positive, got %d", c.History.ListLimit)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
