package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Pipeline
	Pipeline PipelineConfig

	// External providers
	Cnyes  CnyesConfig
	TWSE   TWSEConfig
	GNews  GNewsConfig
	OpenAI OpenAIConfig

	// Redis (optional, rate limiting only)
	Redis RedisConfig

	// Watchlist warmer
	Watchlist     []string
	WatchSchedule string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// PipelineConfig holds the knobs of the event-to-signal pipeline
type PipelineConfig struct {
	WindowHours     int           // default recency window
	EventLimit      int           // max events considered per query
	EvalCap         int           // max events sent to the scorer
	EvalWorkers     int           // concurrent scorer calls
	EvalTimeout     time.Duration // per-item scoring timeout
	CacheSize       int           // judgment LRU capacity
	SameSourceLimit int           // selector per-source cap
	MMRLambda       float64       // redundancy penalty weight
	MMRSimThreshold float64       // near-duplicate rejection threshold
}

// CnyesConfig holds the structured news provider configuration
type CnyesConfig struct {
	BaseURL string
}

// TWSEConfig holds the announcement provider configuration
type TWSEConfig struct {
	BaseURL string
}

// GNewsConfig holds the syndicated-feed fallback configuration
type GNewsConfig struct {
	BaseURL string
}

// OpenAIConfig holds the LLM scoring provider configuration
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Pipeline: PipelineConfig{
			WindowHours:     getEnvAsInt("PIPELINE_WINDOW_HOURS", 48),
			EventLimit:      getEnvAsInt("PIPELINE_EVENT_LIMIT", 50),
			EvalCap:         getEnvAsInt("PIPELINE_EVAL_CAP", 30),
			EvalWorkers:     getEnvAsInt("PIPELINE_EVAL_WORKERS", 6),
			EvalTimeout:     getEnvAsDuration("PIPELINE_EVAL_TIMEOUT", "20s"),
			CacheSize:       getEnvAsInt("PIPELINE_CACHE_SIZE", 2048),
			SameSourceLimit: getEnvAsInt("PIPELINE_SAME_SOURCE_LIMIT", 1),
			MMRLambda:       getEnvAsFloat("PIPELINE_MMR_LAMBDA", 0.6),
			MMRSimThreshold: getEnvAsFloat("PIPELINE_MMR_SIM_THRESHOLD", 0.6),
		},

		Cnyes: CnyesConfig{
			BaseURL: getEnv("CNYES_BASE_URL", "https://api.cnyes.com"),
		},

		TWSE: TWSEConfig{
			BaseURL: getEnv("TWSE_BASE_URL", "https://www.twse.com.tw"),
		},

		GNews: GNewsConfig{
			BaseURL: getEnv("GNEWS_BASE_URL", "https://news.google.com"),
		},

		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Watchlist:     getEnvAsList("WATCHLIST", ""),
		WatchSchedule: getEnv("WATCH_SCHEDULE", "0 */30 * * * *"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9091"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	p := c.Pipeline
	if p.WindowHours <= 0 {
		return fmt.Errorf("PIPELINE_WINDOW_HOURS must be positive")
	}
	if p.EventLimit <= 0 {
		return fmt.Errorf("PIPELINE_EVENT_LIMIT must be positive")
	}
	if p.EvalWorkers <= 0 {
		return fmt.Errorf("PIPELINE_EVAL_WORKERS must be positive")
	}
	if p.EvalCap <= 0 {
		return fmt.Errorf("PIPELINE_EVAL_CAP must be positive")
	}
	if p.CacheSize <= 0 {
		return fmt.Errorf("PIPELINE_CACHE_SIZE must be positive")
	}
	if p.MMRLambda < 0 || p.MMRLambda > 1 {
		return fmt.Errorf("PIPELINE_MMR_LAMBDA must be within [0,1]")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key, defaultValue string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	if valueStr == "" {
		return nil
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
