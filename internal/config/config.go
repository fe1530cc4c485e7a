package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"PORT"`
		Mode         string `yaml:"mode" env:"SERVER_MODE"`
		StoragePath  string `yaml:"storage_path" env:"STORAGE_PATH"`
		ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		// Driver is "postgres" or "memory"
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
		Seed            bool   `yaml:"seed" env:"DB_SEED"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_EXPIRES_IN"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Mail struct {
		// Transport is "smtp", "sendgrid" or "log"
		Transport      string `yaml:"transport" env:"EMAIL_TRANSPORT"`
		Host           string `yaml:"host" env:"EMAIL_HOST"`
		Port           int    `yaml:"port" env:"EMAIL_PORT"`
		Username       string `yaml:"username" env:"EMAIL_USER"`
		Password       string `yaml:"password" env:"EMAIL_PASS"`
		UseTLS         bool   `yaml:"use_tls" env:"EMAIL_USE_TLS"`
		SendgridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
		FromName       string `yaml:"from_name" env:"EMAIL_FROM_NAME"`
		FromEmail      string `yaml:"from_email" env:"EMAIL_FROM"`
		FrontendURL    string `yaml:"frontend_url" env:"FRONTEND_URL"`
	} `yaml:"mail"`

	RateLimit struct {
		Enabled  bool   `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
		Requests int    `yaml:"requests" env:"RATE_LIMIT_MAX"`
		Period   string `yaml:"period" env:"RATE_LIMIT_WINDOW"`
		Burst    int    `yaml:"burst" env:"RATE_LIMIT_BURST"`
		RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
		FailOpen bool   `yaml:"fail_open" env:"RATE_LIMIT_FAIL_OPEN"`
	} `yaml:"rate_limit"`

	Upload struct {
		MaxSizeMB int64 `yaml:"max_size_mb" env:"UPLOAD_MAX_SIZE_MB"`
	} `yaml:"upload"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string, dotEnvPaths ...string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadDotEnv(dotEnvPaths...); err != nil {
		return nil, err
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadDotEnv loads .env files into the process environment; missing files are skipped
// and variables already set keep their value.
func loadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5000"
	config.Server.Mode = "development"
	config.Server.StoragePath = "uploads"
	config.Server.ReadTimeout = "10s"
	config.Server.WriteTimeout = "30s"

	config.Database.Driver = "postgres"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "innovators_hub"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"
	config.Database.Seed = true

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "innovators-hub"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Mail.Transport = "smtp"
	config.Mail.Host = "smtp.gmail.com"
	config.Mail.Port = 587
	config.Mail.FromName = "UCU Innovators Hub"
	config.Mail.FrontendURL = "http://localhost:3000"

	config.RateLimit.Enabled = true
	config.RateLimit.Requests = 100
	config.RateLimit.Period = "15m"
	config.RateLimit.Burst = 100
	config.RateLimit.FailOpen = true

	config.Upload.MaxSizeMB = 10
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return applyEnv(reflect.ValueOf(config), "")
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch strings.ToLower(config.Database.Driver) {
	case "postgres":
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
		"server read timeout":         config.Server.ReadTimeout,
		"server write timeout":        config.Server.WriteTimeout,
		"rate limit period":           config.RateLimit.Period,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch strings.ToLower(config.Mail.Transport) {
	case "smtp", "log":
	case "sendgrid":
		if config.Mail.SendgridAPIKey == "" {
			return fmt.Errorf("sendgrid API key is required for the sendgrid transport")
		}
	default:
		return fmt.Errorf("unsupported mail transport %q", config.Mail.Transport)
	}

	if config.RateLimit.Enabled && config.RateLimit.Requests <= 0 {
		return fmt.Errorf("rate limit requests must be positive")
	}

	if config.Upload.MaxSizeMB <= 0 {
		return fmt.Errorf("upload max size must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Server.Mode) == "production"
}

// UsesMemoryStore reports whether the in-memory store backs the repositories
func (c *Config) UsesMemoryStore() bool {
	return strings.ToLower(c.Database.Driver) == "memory"
}
