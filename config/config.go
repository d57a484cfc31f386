package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Uploads   UploadConfig    `mapstructure:"uploads"`
	Cache     CacheConfig     `mapstructure:"cache"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port" envconfig:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig selects and parameterizes the record store backend.
// Type is "sqlite" or "postgres"; Path feeds the embedded backend, URL
// the client/server one. Environment variables follow the deployment
// contract: DATABASE_TYPE, SQLITE_DB_PATH, DATABASE_URL.
type DatabaseConfig struct {
	Type         string `mapstructure:"type" envconfig:"DATABASE_TYPE"`
	Path         string `mapstructure:"path" envconfig:"SQLITE_DB_PATH"`
	URL          string `mapstructure:"url" envconfig:"DATABASE_URL"`
	MaxOpenConns int    `mapstructure:"max_open_conns" envconfig:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" envconfig:"DATABASE_MAX_IDLE_CONNS"`
}

type UploadConfig struct {
	Dir string `mapstructure:"dir" envconfig:"UPLOAD_DIR"`
}

type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url" envconfig:"REDIS_URL"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret" envconfig:"JWT_SECRET"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" envconfig:"LOG_LEVEL"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Load reads config.yaml (when present) and then lets environment
// variables win, so containerized deployments can run without a file.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to process server env overrides: %w", err)
	}
	if err := envconfig.Process("", &cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to process database env overrides: %w", err)
	}
	if err := envconfig.Process("", &cfg.Uploads); err != nil {
		return nil, fmt.Errorf("failed to process upload env overrides: %w", err)
	}
	if err := envconfig.Process("", &cfg.Cache); err != nil {
		return nil, fmt.Errorf("failed to process cache env overrides: %w", err)
	}
	if err := envconfig.Process("", &cfg.JWT); err != nil {
		return nil, fmt.Errorf("failed to process jwt env overrides: %w", err)
	}
	if err := envconfig.Process("", &cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to process logging env overrides: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("database.type", "sqlite")
	viper.SetDefault("database.path", "medscan.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("uploads.dir", "uploads/medical_images")
	viper.SetDefault("cache.ttl", 30*time.Second)
	viper.SetDefault("jwt.expiry_hours", 12)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests_per_second", 50.0)
	viper.SetDefault("rate_limit.burst", 100)
}
