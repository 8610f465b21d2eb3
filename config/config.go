package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig        `mapstructure:"server"`
	Logging   LoggingConfig       `mapstructure:"logging"`
	Executor  ExecutorConfig      `mapstructure:"executor"`
	Languages map[string]Language `mapstructure:"languages"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// ExecutorConfig holds the execution engine configuration
type ExecutorConfig struct {
	Workers         int    `mapstructure:"workers"`
	MaxOutputLength int    `mapstructure:"max_output_length"`
	MaxCodeBytes    int    `mapstructure:"max_code_bytes"`
	TempDir         string `mapstructure:"temp_dir"`
}

// Language holds one language's launch configuration
type Language struct {
	Command       []string `mapstructure:"command"`
	Extension     string   `mapstructure:"extension"`
	Inline        bool     `mapstructure:"inline"`
	TimeoutSec    int      `mapstructure:"timeout_sec"`
	MaxTimeoutSec int      `mapstructure:"max_timeout_sec"`
	CheckCommand  []string `mapstructure:"check_command"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	viper.SetDefault("server.transport", "stdio")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("executor.workers", 2)
	viper.SetDefault("executor.max_output_length", 10000)
	viper.SetDefault("executor.max_code_bytes", 10240)
	viper.SetDefault("executor.temp_dir", "")

	// Python defaults
	viper.SetDefault("languages.python.command", []string{"python3", "-c"})
	viper.SetDefault("languages.python.extension", ".py")
	viper.SetDefault("languages.python.inline", true)
	viper.SetDefault("languages.python.timeout_sec", 30)
	viper.SetDefault("languages.python.max_timeout_sec", 60)
	viper.SetDefault("languages.python.check_command", []string{"python3", "-m", "py_compile"})

	// JavaScript defaults
	viper.SetDefault("languages.javascript.command", []string{"node"})
	viper.SetDefault("languages.javascript.extension", ".js")
	viper.SetDefault("languages.javascript.inline", false)
	viper.SetDefault("languages.javascript.timeout_sec", 30)
	viper.SetDefault("languages.javascript.max_timeout_sec", 60)
	viper.SetDefault("languages.javascript.check_command", []string{"node", "--check"})

	// Bash defaults
	viper.SetDefault("languages.bash.command", []string{"bash"})
	viper.SetDefault("languages.bash.extension", ".sh")
	viper.SetDefault("languages.bash.inline", false)
	viper.SetDefault("languages.bash.timeout_sec", 30)
	viper.SetDefault("languages.bash.max_timeout_sec", 60)
	viper.SetDefault("languages.bash.check_command", []string{"bash", "-n"})

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	if c.Executor.Workers <= 0 {
		return fmt.Errorf("executor.workers must be positive, got: %d", c.Executor.Workers)
	}

	if c.Executor.MaxOutputLength <= 0 {
		return fmt.Errorf("executor.max_output_length must be positive, got: %d", c.Executor.MaxOutputLength)
	}

	if c.Executor.MaxCodeBytes <= 0 {
		return fmt.Errorf("executor.max_code_bytes must be positive, got: %d", c.Executor.MaxCodeBytes)
	}

	if len(c.Languages) == 0 {
		return fmt.Errorf("at least one language must be configured")
	}

	for name, lang := range c.Languages {
		if len(lang.Command) == 0 {
			return fmt.Errorf("languages.%s.command must not be empty", name)
		}
		if lang.Extension == "" {
			return fmt.Errorf("languages.%s.extension must not be empty", name)
		}
		if lang.TimeoutSec <= 0 {
			return fmt.Errorf("languages.%s.timeout_sec must be positive, got: %d", name, lang.TimeoutSec)
		}
		if lang.MaxTimeoutSec < lang.TimeoutSec {
			return fmt.Errorf("languages.%s.max_timeout_sec must be >= timeout_sec, got: %d < %d",
				name, lang.MaxTimeoutSec, lang.TimeoutSec)
		}
	}

	return nil
}

// Timeout returns a language's default execution timeout as a duration
func (l Language) Timeout() time.Duration {
	return time.Duration(l.TimeoutSec) * time.Second
}

// MaxTimeout returns a language's timeout ceiling as a duration
func (l Language) MaxTimeout() time.Duration {
	return time.Duration(l.MaxTimeoutSec) * time.Second
}
