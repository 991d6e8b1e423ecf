// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port            string `mapstructure:"PORT"`
	Env             string `mapstructure:"APP_ENV"`
	DBHost          string `mapstructure:"DB_HOST"`
	DBPort          string `mapstructure:"DB_PORT"`
	DBUser          string `mapstructure:"DB_USER"`
	DBPassword      string `mapstructure:"DB_PASSWORD"`
	DBName          string `mapstructure:"DB_NAME"`
	DBSSLMode       string `mapstructure:"DB_SSLMODE"`
	RedisURL        string `mapstructure:"REDIS_URL"`
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	JWTExpiresHours int    `mapstructure:"JWT_EXPIRES_HOURS"`
	PasswordMinLen  int    `mapstructure:"PASSWORD_MIN_LENGTH"`
	IconDir         string `mapstructure:"ICON_DIR"`
	AIBaseURL       string `mapstructure:"AI_BASE_URL"`
	AIModel         string `mapstructure:"AI_MODEL"`
	AIToken         string `mapstructure:"AI_TOKEN"`
	AllowedOrigins  string `mapstructure:"ALLOWED_ORIGINS"`
}

// LoadConfig loads application configuration from .env, config file and
// environment variables. Environment variables take precedence.
func LoadConfig() (*Config, error) {
	// .env is optional; system environment wins when both are present.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file may not exist; env vars and defaults are enough.
	_ = viper.ReadInConfig()

	viper.SetDefault("PORT", "3000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "kms")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_EXPIRES_HOURS", 24)
	viper.SetDefault("PASSWORD_MIN_LENGTH", 8)
	viper.SetDefault("ICON_DIR", "./uploads/images")
	viper.SetDefault("AI_BASE_URL", "https://router.huggingface.co/v1")
	viper.SetDefault("AI_MODEL", "HuggingFaceTB/SmolLM3-3B:hf-inference")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:8080,http://localhost:8081")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTExpiresHours <= 0 {
		return errors.New("JWT_EXPIRES_HOURS must be positive")
	}
	if c.PasswordMinLen <= 0 {
		return errors.New("PASSWORD_MIN_LENGTH must be positive")
	}
	return nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
