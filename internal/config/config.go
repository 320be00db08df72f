// Package config provides configuration loading, validation, and management
// for the chat service. It handles reading from YAML files and CHATKURD_*
// environment variables, setting default values, and validating parameters.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration parameters for all components
// of the chat service, including the HTTP server, logging, the Gemini API
// credentials, chat behavior, and optional hosted auth verification.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Logger LoggerConfig `mapstructure:"logger"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	Chat   ChatConfig   `mapstructure:"chat"`
	Auth   AuthConfig   `mapstructure:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"min=1s,max=5m"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"min=1s,max=5m"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s,max=5m"`
	ProbeInterval   time.Duration `mapstructure:"probe_interval"   validate:"min=10s,max=24h"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// GeminiConfig holds the generative API settings. Two independent API keys are
// required: the secondary key is used only when a call with the primary fails.
type GeminiConfig struct {
	PrimaryAPIKey   string        `mapstructure:"primary_api_key"   validate:"required"`
	SecondaryAPIKey string        `mapstructure:"secondary_api_key" validate:"required"`
	Model           string        `mapstructure:"model"             validate:"required"`
	AttemptTimeout  time.Duration `mapstructure:"attempt_timeout"   validate:"min=1s,max=10m"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens" validate:"min=1,max=8192"`
	Temperature     float32       `mapstructure:"temperature"       validate:"min=0,max=2"`
	TopP            float32       `mapstructure:"top_p"             validate:"min=0,max=1"`
	TopK            float32       `mapstructure:"top_k"             validate:"min=1,max=100"`
}

// ChatConfig holds chat behavior settings. The reserved persona id and its
// passcode are configuration, never hardcoded.
type ChatConfig struct {
	ReservedPersonaID string `mapstructure:"reserved_persona_id" validate:"required"`
	Passcode          string `mapstructure:"passcode"            validate:"required,numeric"`
}

// AuthConfig holds optional hosted auth (Supabase) verification settings.
// When disabled, requests are served without any token check.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"      validate:"required_with=Enabled,omitempty,url"`
	AnonKey string `mapstructure:"anon_key" validate:"required_with=Enabled"`
}

// LoadConfig reads configuration from the given YAML file (optional) and
// CHATKURD_* environment variables, applies defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("CHATKURD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// A missing config file is fine; env vars and defaults still apply.
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.probe_interval", 5*time.Minute)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	// Empty defaults so viper binds CHATKURD_GEMINI_* env vars during Unmarshal.
	v.SetDefault("gemini.primary_api_key", "")
	v.SetDefault("gemini.secondary_api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.attempt_timeout", 20*time.Second)
	v.SetDefault("gemini.max_output_tokens", 500)
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.top_p", 0.95)
	v.SetDefault("gemini.top_k", 40)

	v.SetDefault("chat.reserved_persona_id", "h")
	v.SetDefault("chat.passcode", "2103")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.url", "")
	v.SetDefault("auth.anon_key", "")
}
