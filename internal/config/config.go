// Package config loads the server settings from the environment, an optional
// .env file and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DevJWTSecret is the fallback signing secret. Override JWT_SECRET outside development.
const DevJWTSecret = "change-me-in-production"

// Config holds the server settings.
type Config struct {
	AppPort        string
	LogLevel       string
	StoreDriver    string
	UserFile       string
	DatabaseDSN    string
	PasswordHasher string
	JWTSecret      string
	SessionTTL     time.Duration
	ModelPath      string
	PlotsDir       string
	AssetsDir      string
	RabbitMQURL    string
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", "file")
	v.SetDefault("USER_FILE", "users.json")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("PASSWORD_HASHER", "sha256")
	v.SetDefault("JWT_SECRET", DevJWTSecret)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("MODEL_PATH", "rfr_model.json")
	v.SetDefault("PLOTS_DIR", "plots")
	v.SetDefault("ASSETS_DIR", "assets")
	v.SetDefault("RABBITMQ_URL", "")
}

// LoadDotEnv loads the given .env files (".env" when none is given) into the
// process environment. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("could not load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration from v after applying defaults and
// environment overrides.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	ttl, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL: must be positive")
	}

	cfg := &Config{
		AppPort:        v.GetString("APP_PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		StoreDriver:    v.GetString("STORE_DRIVER"),
		UserFile:       v.GetString("USER_FILE"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		PasswordHasher: v.GetString("PASSWORD_HASHER"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		SessionTTL:     ttl,
		ModelPath:      v.GetString("MODEL_PATH"),
		PlotsDir:       v.GetString("PLOTS_DIR"),
		AssetsDir:      v.GetString("ASSETS_DIR"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
	}

	switch cfg.StoreDriver {
	case "sqlite", "postgres":
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for store driver %s", cfg.StoreDriver)
		}
	}
	return cfg, nil
}

// NewLogger builds a production zap logger at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
