package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName            string        `mapstructure:"app_name"`
	Env                string        `mapstructure:"app_env"`
	LogLevel           string        `mapstructure:"log_level"`
	BaseURL            string        `mapstructure:"base_url"`
	UserAgent          string        `mapstructure:"user_agent"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	EndpointsFile      string        `mapstructure:"endpoints_file"`
	ReportersFile      string        `mapstructure:"reporters_file"`
	BatchConcurrency   int           `mapstructure:"batch_concurrency"`

	CookieStoreType       string        `mapstructure:"cookie_store_type"`
	BBoltPath             string        `mapstructure:"bbolt_path"`
	CookieTTLSeconds      int64         `mapstructure:"cookie_ttl_seconds"`
	CookieCleanupSeconds  int64         `mapstructure:"cookie_cleanup_interval_seconds"`
	CookieTTL             time.Duration `mapstructure:"-"`
	CookieCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "apicall")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("base_url", "")
	v.SetDefault("user_agent", "apicall/1.0")
	v.SetDefault("http_timeout_seconds", 0) // 0 leaves the transport without a deadline
	v.SetDefault("endpoints_file", "./configs/endpoints.yaml")
	v.SetDefault("reporters_file", "")
	v.SetDefault("batch_concurrency", 4)
	v.SetDefault("cookie_store_type", "none")
	v.SetDefault("bbolt_path", "./data/cookies.db")
	v.SetDefault("cookie_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("cookie_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	if cfg.HTTPTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.BatchConcurrency <= 0 {
		return nil, fmt.Errorf("invalid batch_concurrency (must be positive)")
	}

	if cfg.CookieTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid cookie_ttl_seconds (must be positive seconds)")
	}
	if cfg.CookieCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid cookie_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.CookieTTL = time.Duration(cfg.CookieTTLSeconds) * time.Second
	cfg.CookieCleanupInterval = time.Duration(cfg.CookieCleanupSeconds) * time.Second

	return &cfg, nil
}
