package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. MEMOASK_SERVER_ADDR.
const EnvPrefix = "MEMOASK"

// ServerConfig holds settings for the chat backend.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`

	// DBPath is the SQLite file recording exchanges.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// AllowedOrigins feeds the CORS middleware.
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	// RatePerMinute limits chat requests; 0 disables limiting.
	RatePerMinute int `mapstructure:"rate_per_minute" yaml:"rate_per_minute"`
}

// ClientConfig holds settings for the terminal client.
type ClientConfig struct {
	// BaseURL is where the backend listens.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// EnforceTimeout makes the client abort calls after ai.timeout seconds
	// instead of only forwarding the value.
	EnforceTimeout bool `mapstructure:"enforce_timeout" yaml:"enforce_timeout"`

	// ClearAnswerOnSubmit empties the previous answer when a new question
	// is sent.
	ClearAnswerOnSubmit bool `mapstructure:"clear_answer_on_submit" yaml:"clear_answer_on_submit"`
}

// LogConfig holds logging level and format ("text" or "json").
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`

	// File, when set, receives log output instead of stdout.
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Client ClientConfig `mapstructure:"client" yaml:"client"`
	AI     AISettings   `mapstructure:"ai" yaml:"ai"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// ConfigDir returns ~/.config/memoask.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "memoask")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/memoask/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Addr:           "127.0.0.1:8081",
			DBPath:         filepath.Join(ConfigDir(), "memoask.db"),
			AllowedOrigins: []string{"http://localhost:3001"},
			RatePerMinute:  30,
		},
		Client: ClientConfig{
			BaseURL: "http://127.0.0.1:8081",
		},
		AI: DefaultAISettings(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// setDefaults registers every default so environment overrides resolve
// even when the key is missing from the file.
func setDefaults(v *viper.Viper, cfg *AppConfig) {
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.db_path", cfg.Server.DBPath)
	v.SetDefault("server.allowed_origins", cfg.Server.AllowedOrigins)
	v.SetDefault("server.rate_per_minute", cfg.Server.RatePerMinute)

	v.SetDefault("client.base_url", cfg.Client.BaseURL)
	v.SetDefault("client.enforce_timeout", cfg.Client.EnforceTimeout)
	v.SetDefault("client.clear_answer_on_submit", cfg.Client.ClearAnswerOnSubmit)

	v.SetDefault("ai.api_provider", string(cfg.AI.APIProvider))
	v.SetDefault("ai.timeout", cfg.AI.Timeout)
	v.SetDefault("ai.max_tokens", cfg.AI.MaxTokens)
	v.SetDefault("ai.temperature", cfg.AI.Temperature)
	v.SetDefault("ai.max_context", cfg.AI.MaxContext)
	v.SetDefault("ai.model", cfg.AI.Model)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.proxy", cfg.AI.Proxy)
	v.SetDefault("ai.api_base_url", cfg.AI.APIBaseURL)
	v.SetDefault("ai.user_agent", cfg.AI.UserAgent)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults (plus environment overrides) are
// returned.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed. The API key is never written.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", map[string]any{
		"addr":            cfg.Server.Addr,
		"db_path":         cfg.Server.DBPath,
		"allowed_origins": cfg.Server.AllowedOrigins,
		"rate_per_minute": cfg.Server.RatePerMinute,
	})
	v.Set("client", map[string]any{
		"base_url":               cfg.Client.BaseURL,
		"enforce_timeout":        cfg.Client.EnforceTimeout,
		"clear_answer_on_submit": cfg.Client.ClearAnswerOnSubmit,
	})
	v.Set("ai", map[string]any{
		"api_provider": string(cfg.AI.APIProvider),
		"timeout":      cfg.AI.Timeout,
		"max_tokens":   cfg.AI.MaxTokens,
		"temperature":  cfg.AI.Temperature,
		"max_context":  cfg.AI.MaxContext,
		"model":        cfg.AI.Model,
		"proxy":        cfg.AI.Proxy,
		"api_base_url": cfg.AI.APIBaseURL,
		"user_agent":   cfg.AI.UserAgent,
	})
	v.Set("log", map[string]any{
		"level":  cfg.Log.Level,
		"format": cfg.Log.Format,
		"file":   cfg.Log.File,
	})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
