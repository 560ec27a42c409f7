package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingCredential is returned when no model provider key is configured.
var ErrMissingCredential = errors.New("missing MISTRAL_API_KEY environment variable")

const (
	DefaultProvider      = "mistral"
	DefaultModel         = "mistral-small-latest"
	DefaultMistralURL    = "https://api.mistral.ai/v1"
	DefaultTemperature   = 0.3
	DefaultHistoryWindow = 10
	DefaultServerAddress = ":8090"
	DefaultIdleMinutes   = 30
)

// Config represents runtime configuration for the service.
type Config struct {
	LLM         LLMConfig   `mapstructure:"llm"`
	BasicConfig BasicConfig `mapstructure:"basic_config"`
	Log         LogConfig   `mapstructure:"log"`
}

type LLMConfig struct {
	Provider      string  `mapstructure:"provider"`
	Model         string  `mapstructure:"model"`
	BaseURL       string  `mapstructure:"base_url"`
	APIKey        string  `mapstructure:"api_key"`
	Temperature   float32 `mapstructure:"temperature"`
	HistoryWindow int     `mapstructure:"history_window"`
}

type BasicConfig struct {
	ServerAddress      string `mapstructure:"server_address"`
	QueueSize          int    `mapstructure:"queue_size"`
	// SessionIdleTimeout is in minutes; 0 keeps sessions until deleted.
	SessionIdleTimeout int    `mapstructure:"session_idle_timeout"`
}

type LogConfig struct {
	Debug bool `mapstructure:"debug"`
}

// Load reads configuration from an optional file, a .env file in the working
// directory and the environment. A missing credential is reported as
// ErrMissingCredential; other validation problems come back as warnings.
func Load(path string) (*Config, []string, error) {
	// .env is optional, real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("llm.provider", DefaultProvider)
	v.SetDefault("llm.model", DefaultModel)
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", DefaultTemperature)
	v.SetDefault("llm.history_window", DefaultHistoryWindow)
	v.SetDefault("basic_config.server_address", DefaultServerAddress)
	v.SetDefault("basic_config.queue_size", 4)
	v.SetDefault("basic_config.session_idle_timeout", DefaultIdleMinutes)
	v.SetDefault("log.debug", false)

	v.SetEnvPrefix("BANKASSIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", "MISTRAL_API_KEY", "BANKASSIST_LLM_API_KEY"); err != nil {
		return nil, nil, fmt.Errorf("bind credential env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()

	warnings, err := cfg.Validate()
	if err != nil {
		return nil, warnings, err
	}
	return &cfg, warnings, nil
}

func (c *Config) applyDefaults() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.Provider == DefaultProvider && c.LLM.BaseURL == "" {
		c.LLM.BaseURL = DefaultMistralURL
	}
	if c.LLM.HistoryWindow <= 0 {
		c.LLM.HistoryWindow = DefaultHistoryWindow
	}
	if c.BasicConfig.ServerAddress == "" {
		c.BasicConfig.ServerAddress = DefaultServerAddress
	}
}

// Validate returns ErrMissingCredential when no key is configured and a list
// of non-fatal warnings otherwise.
func (c *Config) Validate() ([]string, error) {
	var warnings []string
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2.0 {
		warnings = append(warnings, fmt.Sprintf("llm temperature %.2f is outside recommended range [0.0, 2.0]", c.LLM.Temperature))
	}
	if c.BasicConfig.SessionIdleTimeout < 0 {
		warnings = append(warnings, fmt.Sprintf("session_idle_timeout %d is negative, idle sessions are never closed", c.BasicConfig.SessionIdleTimeout))
	}
	if c.BasicConfig.QueueSize < 0 {
		warnings = append(warnings, fmt.Sprintf("queue_size %d is negative", c.BasicConfig.QueueSize))
	}
	if c.LLM.APIKey == "" {
		return warnings, ErrMissingCredential
	}
	return warnings, nil
}

// PrintWarnings writes config warnings to stderr before the logger exists.
func PrintWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
}
