package config

import (
	"time"

	"tickrflow/pkg/config"
)

// Notifier holds notifier-service specific configuration.
type Notifier struct {
	MaxArticlesPerDigest int           `mapstructure:"max_articles_per_digest"`
	NewsWindowDays       int           `mapstructure:"news_window_days"`
	DigestCron           string        `mapstructure:"digest_cron"`
	StreamReadTimeout    time.Duration `mapstructure:"stream_read_timeout"`
	CheckpointTTL        time.Duration `mapstructure:"checkpoint_ttl"`
	StepMaxRetries       int           `mapstructure:"step_max_retries"`
	StepRetryInterval    time.Duration `mapstructure:"step_retry_interval"`
}

// Finnhub holds the configuration for the market news API.
type Finnhub struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// SMTP holds the outbound mail transport configuration.
type SMTP struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

// Telegram holds configuration for the optional ops notification channel.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the notifier service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	Notifier Notifier        `mapstructure:"notifier"`
	Finnhub  Finnhub         `mapstructure:"finnhub"`
	Gemini   Gemini          `mapstructure:"gemini"`
	SMTP     SMTP            `mapstructure:"smtp"`
	Telegram Telegram        `mapstructure:"telegram"`
}

// Load loads the notifier configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
