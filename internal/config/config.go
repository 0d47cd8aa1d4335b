package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Log     LogConfig     `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL        string `mapstructure:"base_url" envconfig:"API_BASE_URL"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" envconfig:"API_TIMEOUT_SECONDS"`
	MaxReadRetries int    `mapstructure:"max_read_retries" envconfig:"API_MAX_READ_RETRIES"`
	RateLimitRPS   int    `mapstructure:"rate_limit_rps" envconfig:"API_RATE_LIMIT_RPS"`
}

type SessionConfig struct {
	Backend  string `mapstructure:"backend" envconfig:"SESSION_BACKEND"`
	Path     string `mapstructure:"path" envconfig:"SESSION_PATH"`
	RedisURL string `mapstructure:"redis_url" envconfig:"SESSION_REDIS_URL"`
	Channel  string `mapstructure:"channel" envconfig:"SESSION_CHANNEL"`
}

type CacheConfig struct {
	TTLSeconds     int `mapstructure:"ttl_seconds" envconfig:"CACHE_TTL_SECONDS"`
	CleanupSeconds int `mapstructure:"cleanup_seconds" envconfig:"CACHE_CLEANUP_SECONDS"`
}

type LogConfig struct {
	Level string `mapstructure:"level" envconfig:"LOG_LEVEL"`
}

func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func (c CacheConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:4000")
	v.SetDefault("api.timeout_seconds", 10)
	v.SetDefault("api.max_read_retries", 2)
	v.SetDefault("api.rate_limit_rps", 0)
	v.SetDefault("session.backend", "file")
	v.SetDefault("session.path", ".healthcompare/session.json")
	v.SetDefault("session.channel", "healthcompare:session")
	v.SetDefault("cache.ttl_seconds", 60)
	v.SetDefault("cache.cleanup_seconds", 300)
	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yaml when present, falling back to defaults,
// then applies HEALTHCOMPARE_* environment overrides.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("HEALTHCOMPARE", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	return &config, nil
}
