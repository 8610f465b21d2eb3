package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: "stdio",
			HTTPPort:  8080,
		},
		Logging: LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
		Executor: ExecutorConfig{
			Workers:         2,
			MaxOutputLength: 10000,
			MaxCodeBytes:    10240,
		},
		Languages: map[string]Language{
			"python": {
				Command:       []string{"python3", "-c"},
				Extension:     ".py",
				Inline:        true,
				TimeoutSec:    30,
				MaxTimeoutSec: 60,
			},
		},
	}
}

func TestConfigValidation(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		err := validConfig().validate()
		require.NoError(t, err)
	})

	t.Run("InvalidServerTransport", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Transport = "grpc"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.transport")
	})

	t.Run("InvalidLoggingMode", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Mode = "verbose"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logging.mode")
	})

	t.Run("ZeroWorkers", func(t *testing.T) {
		cfg := validConfig()
		cfg.Executor.Workers = 0
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "executor.workers")
	})

	t.Run("ZeroMaxOutputLength", func(t *testing.T) {
		cfg := validConfig()
		cfg.Executor.MaxOutputLength = 0
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "executor.max_output_length")
	})

	t.Run("NoLanguages", func(t *testing.T) {
		cfg := validConfig()
		cfg.Languages = map[string]Language{}
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one language")
	})

	t.Run("EmptyLanguageCommand", func(t *testing.T) {
		cfg := validConfig()
		cfg.Languages["python"] = Language{Extension: ".py", TimeoutSec: 30, MaxTimeoutSec: 60}
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "languages.python.command")
	})

	t.Run("CeilingBelowDefaultTimeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.Languages["python"] = Language{
			Command:       []string{"python3", "-c"},
			Extension:     ".py",
			TimeoutSec:    30,
			MaxTimeoutSec: 10,
		}
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_timeout_sec")
	})
}

func TestLanguageTimeouts(t *testing.T) {
	lang := Language{TimeoutSec: 30, MaxTimeoutSec: 60}
	assert.Equal(t, "30s", lang.Timeout().String())
	assert.Equal(t, "1m0s", lang.MaxTimeout().String())
}

func TestNewWithDefaults(t *testing.T) {
	// Run from an empty directory so no config.yaml is picked up and
	// the built-in defaults apply.
	t.Chdir(t.TempDir())

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, 2, cfg.Executor.Workers)
	assert.Equal(t, 10000, cfg.Executor.MaxOutputLength)
	assert.Contains(t, cfg.Languages, "python")
	assert.Contains(t, cfg.Languages, "javascript")
	assert.Contains(t, cfg.Languages, "bash")
	assert.True(t, cfg.Languages["python"].Inline)
	assert.Equal(t, []string{"bash", "-n"}, cfg.Languages["bash"].CheckCommand)
}

func TestNewWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	raw := map[string]any{
		"server": map[string]any{
			"transport": "http",
			"http_port": 9090,
		},
		"executor": map[string]any{
			"workers": 4,
		},
	}
	data, err := yaml.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o600))
	t.Chdir(dir)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.Server.Transport)
	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 4, cfg.Executor.Workers)
	// Untouched sections keep their defaults.
	assert.Equal(t, 10240, cfg.Executor.MaxCodeBytes)
}
