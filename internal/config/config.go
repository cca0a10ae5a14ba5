// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port        string `mapstructure:"PORT"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	DBPath      string `mapstructure:"DB_PATH"`
	StaticDir   string `mapstructure:"STATIC_DIR"`
	UploadDir   string `mapstructure:"UPLOAD_DIR"`
	BodyLimitMB int    `mapstructure:"BODY_LIMIT_MB"`
	// RedisURL points at the optional Redis used for request throttling.
	// Empty disables throttling entirely.
	RedisURL string `mapstructure:"REDIS_URL"`
	// EnforceCommentOwnership restricts comment deletion to the comment's
	// author. Off by default: historically any authenticated user could
	// delete any comment, and some deployments rely on that.
	EnforceCommentOwnership bool   `mapstructure:"ENFORCE_COMMENT_OWNERSHIP"`
	Env                     string `mapstructure:"APP_ENV"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; env vars and defaults cover everything.
	_ = viper.ReadInConfig()

	viper.SetDefault("PORT", "5000")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("DB_PATH", "board.db")
	viper.SetDefault("STATIC_DIR", "static")
	viper.SetDefault("UPLOAD_DIR", "")
	viper.SetDefault("BODY_LIMIT_MB", 16)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("ENFORCE_COMMENT_OWNERSHIP", false)
	viper.SetDefault("APP_ENV", "development")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Uploads live under the static root so they are publicly servable.
	if config.UploadDir == "" {
		config.UploadDir = filepath.Join(config.StaticDir, "uploads")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH is required")
	}
	if c.BodyLimitMB <= 0 {
		return errors.New("BODY_LIMIT_MB must be positive")
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction {
		if c.JWTSecret == "change-this-secret-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
