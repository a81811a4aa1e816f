package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers supported by the server.
const (
	StoreMySQL = "mysql"
	StoreMongo = "mongo"
)

// DefaultTokenTTL is how long a session token stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// EnvDevelopment is the only APP_ENV that may run without a JWT_SECRET.
const EnvDevelopment = "development"

// devJWTSecret signs tokens on development machines only. Validate refuses it elsewhere.
const devJWTSecret = "dev-only-insecure-secret"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppEnv           string        `env:"APP_ENV" envDefault:"production"`
	ServerPort       string        `env:"SERVER_PORT" envDefault:"3000"`
	StoreDriver      string        `env:"STORE_DRIVER" envDefault:"mysql"`
	MySQLDSN         string        `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/notes?charset=utf8mb4&parseTime=True&loc=UTC"`
	MongoURI         string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB          string        `env:"MONGO_DB" envDefault:"minimalist-notes"`
	RedisAddr        string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	RedisPass        string        `env:"REDIS_PASSWORD"`
	JWTSecret        string        `env:"JWT_SECRET"`
	TokenTTL         time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	GoogleClientID   string        `env:"GOOGLE_CLIENT_ID"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"12"`
	AllowOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:5500"`
	EnforceOwnership bool          `env:"ENFORCE_OWNERSHIP" envDefault:"false"`
	ResetDB          bool          `env:"RESET_DB" envDefault:"false"`
	SwaggerHost      string        `env:"SWAGGER_HOST"`
	Logging          LoggingConfig `envPrefix:"LOG_"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level             string `env:"LEVEL" envDefault:"info"`
	Format            string `env:"FORMAT" envDefault:"console"`
	DisableStacktrace bool   `env:"DISABLE_STACKTRACE" envDefault:"true"`
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = devJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMySQL, StoreMongo:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required unless APP_ENV=%s", EnvDevelopment)
	}
	if c.JWTSecret == devJWTSecret && !c.IsDevelopment() {
		return fmt.Errorf("JWT_SECRET must be set to a private value outside %s", EnvDevelopment)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

// IsDevelopment reports whether the server runs on a developer machine.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}
