package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"skillboard/backend/database"
)

// DefaultPath is read when no config file is given and it exists.
const DefaultPath = "./skillboard.yaml"

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Record sources
const (
	SourceDatabase = "database"
	SourceDatasets = "datasets"
)

// Config is the runtime configuration of the dashboard backend.
type Config struct {
	Env             string          `yaml:"env"`
	Addr            string          `yaml:"addr"`
	LogLevel        string          `yaml:"logLevel"`
	Database        database.Config `yaml:"database"`
	Source          string          `yaml:"source"`
	DatasetDir      string          `yaml:"datasetDir"`
	WatchDatasets   bool            `yaml:"watchDatasets"`
	RefreshInterval time.Duration   `yaml:"refreshInterval"`
	EncryptionKey   string          `yaml:"encryptionKey"`
	CORS            CORSConfig      `yaml:"cors"`
	Firebase        FirebaseConfig  `yaml:"firebase"`
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// FirebaseConfig holds the credentials used to verify ID tokens. Without
// credentials requests run as the development user.
type FirebaseConfig struct {
	ProjectID         string `yaml:"projectId"`
	CredentialsJSON   string `yaml:"credentialsJSON"`
	CredentialsBase64 string `yaml:"credentialsBase64"`
	DevUserID         string `yaml:"devUserId"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Env:      EnvDevelopment,
		Addr:     ":8080",
		LogLevel: "info",
		Database: database.Config{
			Driver: database.DriverSQLite,
			Path:   "./skillboard.db",
			Postgres: database.PostgresConfig{
				Host:    "localhost",
				Port:    "5432",
				User:    "postgres",
				DBName:  "skillboard",
				SSLMode: "disable",
			},
		},
		Source:     SourceDatabase,
		DatasetDir: "./datasets",
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Firebase: FirebaseConfig{
			DevUserID: "dev-user",
		},
	}
}

// Load builds the configuration from, in increasing priority: built-in
// defaults, the YAML file at path (or DefaultPath), .env files and the
// process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := loadDotEnv(envName(cfg.Env)); err != nil {
		return nil, err
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile merges a YAML file into cfg. Keys absent from the file keep their value.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func envName(fallback string) string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return fallback
}

// loadDotEnv loads .env.<env> and .env when present. Variables already set in
// the environment are not overridden.
func loadDotEnv(env string) error {
	for _, name := range []string{".env." + strings.ToLower(env), ".env"} {
		if _, err := os.Stat(name); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("config.os.Stat(%s): %w", name, err)
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("config.godotenv(%s): %w", name, err)
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	envMappings := map[string]func(string) error{
		"APP_ENV":   func(v string) error { c.Env = v; return nil },
		"PORT":      func(v string) error { c.Addr = ":" + strings.TrimPrefix(v, ":"); return nil },
		"LOG_LEVEL": func(v string) error { c.LogLevel = v; return nil },

		// Database
		"DB_DRIVER":    func(v string) error { c.Database.Driver = v; return nil },
		"DB_PATH":      func(v string) error { c.Database.Path = v; return nil },
		"DB_HOST":      func(v string) error { c.Database.Postgres.Host = v; return nil },
		"DB_PORT":      func(v string) error { c.Database.Postgres.Port = v; return nil },
		"DB_USER":      func(v string) error { c.Database.Postgres.User = v; return nil },
		"DB_PASSWORD":  func(v string) error { c.Database.Postgres.Password = v; return nil },
		"DB_NAME":      func(v string) error { c.Database.Postgres.DBName = v; return nil },
		"DB_SSL_MODE":  func(v string) error { c.Database.Postgres.SSLMode = v; return nil },
		"DATABASE_URL": func(v string) error { c.Database.Postgres.URL = v; return nil },

		// Record source
		"RECORD_SOURCE":    func(v string) error { c.Source = v; return nil },
		"DATASET_DIR":      func(v string) error { c.DatasetDir = v; return nil },
		"WATCH_DATASETS":   func(v string) error { return parseBool(v, &c.WatchDatasets) },
		"REFRESH_INTERVAL": func(v string) error { return parseDuration(v, &c.RefreshInterval) },

		"ENCRYPTION_KEY":       func(v string) error { c.EncryptionKey = v; return nil },
		"CORS_ALLOWED_ORIGINS": func(v string) error { c.CORS.AllowedOrigins = splitList(v); return nil },

		// Firebase
		"FIREBASE_PROJECT_ID":             func(v string) error { c.Firebase.ProjectID = v; return nil },
		"FIREBASE_SERVICE_ACCOUNT_JSON":   func(v string) error { c.Firebase.CredentialsJSON = v; return nil },
		"FIREBASE_SERVICE_ACCOUNT_BASE64": func(v string) error { c.Firebase.CredentialsBase64 = v; return nil },
		"DEV_USER_ID":                     func(v string) error { c.Firebase.DevUserID = v; return nil },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("invalid env %q (valid: %s, %s)", c.Env, EnvDevelopment, EnvProduction))
	}

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}

	switch c.Database.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("invalid database driver %q (valid: %s, %s)",
			c.Database.Driver, database.DriverSQLite, database.DriverPostgres))
	}

	switch c.Source {
	case SourceDatabase:
	case SourceDatasets:
		if strings.TrimSpace(c.DatasetDir) == "" {
			errs = append(errs, errors.New("datasetDir is required when source is datasets"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid source %q (valid: %s, %s)", c.Source, SourceDatabase, SourceDatasets))
	}

	if c.RefreshInterval < 0 {
		errs = append(errs, errors.New("refreshInterval must not be negative"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(v string, target *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*target = b
	return nil
}

func parseDuration(v string, target *time.Duration) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*target = d
	return nil
}
