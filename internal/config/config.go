package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Logging    LoggingConfig
	Prediction PredictionConfig
}

type ServerConfig struct {
	Port               string
	Environment        string
	ShutdownTimeout    time.Duration
	Timezone           string
	CookieSecure       bool
	CORSAllowedOrigins string
}

type DatabaseConfig struct {
	Path string
}

type AuthConfig struct {
	SecretKey string
	TokenTTL  time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string // json or console
}

type PredictionConfig struct {
	LutealPhaseDays int
	DefaultHorizon  int
	MaxHorizon      int
}

const minSecretKeyLength = 32

var placeholderSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
	"secret":                                     {},
}

// Load reads configuration from environment variables on top of the defaults.
func Load() (*Config, error) {
	return load(true)
}

// LoadForOperator loads configuration for offline commands such as
// reset-password. They never issue tokens, so SECRET_KEY is not required.
func LoadForOperator() (*Config, error) {
	return load(false)
}

func load(requireSecret bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()

	validate := cfg.Validate
	if !requireSecret {
		validate = cfg.validateWithoutSecret
	}
	if err := validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 10*time.Second)
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("server.cookiesecure", false)
	v.SetDefault("server.corsallowedorigins", "http://localhost:3000")

	v.SetDefault("database.path", filepath.Join("data", "cyclecast.db"))

	v.SetDefault("auth.tokenttl", 7*24*time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("prediction.lutealphasedays", 14)
	v.SetDefault("prediction.defaulthorizon", 3)
	v.SetDefault("prediction.maxhorizon", 12)
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.environment", "ENV", "ENVIRONMENT")
	_ = v.BindEnv("server.shutdowntimeout", "SHUTDOWN_TIMEOUT")
	_ = v.BindEnv("server.timezone", "TZ")
	_ = v.BindEnv("server.cookiesecure", "COOKIE_SECURE")
	_ = v.BindEnv("server.corsallowedorigins", "CORS_ALLOWED_ORIGINS")

	_ = v.BindEnv("database.path", "DB_PATH")

	_ = v.BindEnv("auth.secretkey", "SECRET_KEY")
	_ = v.BindEnv("auth.tokenttl", "AUTH_TOKEN_TTL")

	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")

	_ = v.BindEnv("prediction.lutealphasedays", "LUTEAL_PHASE_DAYS")
	_ = v.BindEnv("prediction.defaulthorizon", "PREDICTION_HORIZON")
	_ = v.BindEnv("prediction.maxhorizon", "PREDICTION_MAX_HORIZON")
}

func (c *Config) normalize() {
	c.Server.Port = strings.TrimSpace(c.Server.Port)
	c.Server.Environment = strings.ToLower(strings.TrimSpace(c.Server.Environment))
	c.Server.Timezone = strings.TrimSpace(c.Server.Timezone)
	c.Auth.SecretKey = strings.TrimSpace(c.Auth.SecretKey)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validateSecretKey(c.Auth.SecretKey); err != nil {
		return err
	}
	return c.validateWithoutSecret()
}

func (c *Config) validateWithoutSecret() error {
	if err := validatePort(c.Server.Port); err != nil {
		return err
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("DB_PATH is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	if c.Prediction.LutealPhaseDays < 1 || c.Prediction.LutealPhaseDays > 20 {
		return fmt.Errorf("LUTEAL_PHASE_DAYS must be between 1 and 20, got %d", c.Prediction.LutealPhaseDays)
	}
	if c.Prediction.MaxHorizon < 1 || c.Prediction.MaxHorizon > 36 {
		return fmt.Errorf("PREDICTION_MAX_HORIZON must be between 1 and 36, got %d", c.Prediction.MaxHorizon)
	}
	if c.Prediction.DefaultHorizon < 1 || c.Prediction.DefaultHorizon > c.Prediction.MaxHorizon {
		return fmt.Errorf("PREDICTION_HORIZON must be between 1 and %d, got %d", c.Prediction.MaxHorizon, c.Prediction.DefaultHorizon)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Location resolves the configured time zone, falling back to UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Server.Timezone == "" {
		return time.UTC, nil
	}
	location, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid TZ %q: %w", c.Server.Timezone, err)
	}
	return location, nil
}

func validatePort(raw string) error {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", raw)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateSecretKey(secret string) error {
	if secret == "" {
		return errors.New("SECRET_KEY is required")
	}
	if _, placeholder := placeholderSecretKeys[strings.ToLower(secret)]; placeholder {
		return errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return nil
}
