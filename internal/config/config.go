package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	PublishersFile string `mapstructure:"publishers_file"`
	EventBuffer    int    `mapstructure:"event_buffer"`

	SummarizerURL            string        `mapstructure:"summarizer_url"`
	SummarizerTimeoutSeconds int64         `mapstructure:"summarizer_timeout_seconds"`
	SummarizerTimeout        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "vidsum")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("publishers_file", "")
	v.SetDefault("event_buffer", 16)
	v.SetDefault("summarizer_url", "http://localhost:5000")
	v.SetDefault("summarizer_timeout_seconds", 120)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks field ranges and fills the derived duration fields.
func (cfg *Config) validate() error {
	cfg.SummarizerURL = strings.TrimRight(strings.TrimSpace(cfg.SummarizerURL), "/")
	u, err := url.Parse(cfg.SummarizerURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid summarizer_url %q (must be an absolute http(s) URL)", cfg.SummarizerURL)
	}

	// zero disables the transport timeout
	if cfg.SummarizerTimeoutSeconds < 0 {
		return fmt.Errorf("invalid summarizer_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.SummarizerTimeout = time.Duration(cfg.SummarizerTimeoutSeconds) * time.Second

	if cfg.EventBuffer <= 0 {
		return fmt.Errorf("invalid event_buffer (must be positive)")
	}
	cfg.PublishersFile = strings.TrimSpace(cfg.PublishersFile)
	return nil
}
