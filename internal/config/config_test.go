package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlen/cardbox/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:                ":8080",
		DBPath:              "test.db",
		LogLevel:            "INFO",
		AITimeout:           20 * time.Second,
		GenerateWorkerCount: 2,
		GenerateQueueSize:   32,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR", "debug"} {
		cfg := validConfig()
		cfg.LogLevel = level
		assert.NoError(t, cfg.Validate(), "level %q should be accepted", level)
	}

	for _, level := range []string{"", "INVALID", "TRACE"} {
		cfg := validConfig()
		cfg.LogLevel = level
		err := cfg.Validate()
		require.Error(t, err, "level %q should be rejected", level)
		assert.Contains(t, err.Error(), "LOG_LEVEL")
	}
}

func TestValidate_WorkerSettings(t *testing.T) {
	cfg := validConfig()
	cfg.GenerateWorkerCount = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GENERATE_WORKER_COUNT")

	cfg = validConfig()
	cfg.GenerateQueueSize = -1
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GENERATE_QUEUE_SIZE")
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
	assert.Contains(t, err.Error(), "GENERATE_WORKER_COUNT")
	assert.Contains(t, err.Error(), "AI_TIMEOUT")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ADDR", "DB_PATH", "LOG_LEVEL", "AI_TIMEOUT", "GENERATE_WORKER_COUNT"} {
		require.NoError(t, os.Unsetenv(key))
	}

	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 20*time.Second, cfg.AITimeout)
	assert.Equal(t, 2, cfg.GenerateWorkerCount)
}
