package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	AppEnv         string     `env:"APP_ENV" envDefault:"development"`
	LogLevel       slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	ApiServicePort string     `env:"API_SERVICE_PORT" envDefault:"8080"`
	ApiGrpcPort    string     `env:"API_GRPC_PORT" envDefault:"50052"`

	// Database: "postgres" or "sqlite"
	DatabaseDriver     string `env:"DB_DRIVER" envDefault:"postgres"`
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"db"`
	PostgreSQLPort     int64  `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"recipe_user"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"recipe_password"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"recipe_db"`
	SQLitePath         string `env:"SQLITE_PATH" envDefault:"recipes.db"`

	JWTSecret              string        `env:"JWT_SECRET" envDefault:"recipe_secret"`
	AccessTokenExpiration  time.Duration `env:"ACCESS_TOKEN_EXPIRATION" envDefault:"15m"`
	RefreshTokenExpiration time.Duration `env:"REFRESH_TOKEN_EXPIRATION" envDefault:"168h"`

	RedisHost     string `env:"REDIS_HOST" envDefault:"redis"`
	RedisPort     int64  `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int64  `env:"REDIS_DATABASE" envDefault:"0"`

	// Failed logins allowed per email inside LoginAttemptWindow
	LoginMaxAttempts   int64         `env:"LOGIN_MAX_ATTEMPTS" envDefault:"10"`
	LoginAttemptWindow time.Duration `env:"LOGIN_ATTEMPT_WINDOW" envDefault:"15m"`

	TokenCleanupInterval time.Duration `env:"TOKEN_CLEANUP_INTERVAL" envDefault:"1h"`
	HealthCheckInterval  time.Duration `env:"HEALTH_CHECK_INTERVAL" envDefault:"30s"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.DatabaseDriver = strings.ToLower(cfg.DatabaseDriver)
	if cfg.DatabaseDriver != "postgres" && cfg.DatabaseDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DatabaseDriver)
	}

	// Periodic tasks tick on these
	for name, d := range map[string]time.Duration{
		"TOKEN_CLEANUP_INTERVAL": cfg.TokenCleanupInterval,
		"HEALTH_CHECK_INTERVAL":  cfg.HealthCheckInterval,
	} {
		if d <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.ToLower(c.AppEnv) == "production"
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		c.PostgreSQLHost,
		c.PostgreSQLUser,
		c.PostgreSQLPassword,
		c.PostgreSQLDatabase,
		c.PostgreSQLPort,
	)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
