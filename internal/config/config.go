package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string
	DBPath   string
	LogLevel string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	AITimeout     time.Duration

	GenerateWorkerCount int
	GenerateQueueSize   int
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:     envOr("ADDR", ":8080"),
		DBPath:   envOr("DB_PATH", "file:cardbox.db"),
		LogLevel: envOr("LOG_LEVEL", "INFO"),

		OpenAIAPIKey:  envOr("OPENAI_API_KEY", ""),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", ""),
		OpenAIModel:   envOr("OPENAI_MODEL", ""),
		AITimeout:     envDurationOr("AI_TIMEOUT", 20*time.Second),

		GenerateWorkerCount: envIntOr("GENERATE_WORKER_COUNT", 2),
		GenerateQueueSize:   envIntOr("GENERATE_QUEUE_SIZE", 32),
	}
}

// Validate checks the loaded configuration, collecting every problem into
// one error so misconfiguration is reported in a single pass.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.GenerateWorkerCount <= 0 {
		problems = append(problems, "GENERATE_WORKER_COUNT must be positive")
	}
	if c.GenerateQueueSize <= 0 {
		problems = append(problems, "GENERATE_QUEUE_SIZE must be positive")
	}
	if c.AITimeout <= 0 {
		problems = append(problems, "AI_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}
