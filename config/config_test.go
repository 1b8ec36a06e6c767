package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"skillboard/backend/database"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skillboard.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected defaults to load, got %v", err)
	}

	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected env %s, got %s", EnvDevelopment, cfg.Env)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Expected addr :8080, got %s", cfg.Addr)
	}
	if cfg.Database.Driver != database.DriverSQLite {
		t.Errorf("Expected sqlite3 driver, got %s", cfg.Database.Driver)
	}
	if cfg.Source != SourceDatabase {
		t.Errorf("Expected database source, got %s", cfg.Source)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
addr: ":9000"
logLevel: debug
source: datasets
datasetDir: /srv/datasets
refreshInterval: 30s
database:
  driver: postgres
  postgres:
    host: db.internal
cors:
  allowedOrigins:
    - https://admin.example.org
`)

	t.Setenv("PORT", "7000")
	t.Setenv("DB_NAME", "placements")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.org, https://b.example.org")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	testCases := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Env overrides file addr", cfg.Addr, ":7000"},
		{"File sets log level", cfg.LogLevel, "debug"},
		{"File sets source", cfg.Source, SourceDatasets},
		{"File sets refresh interval", cfg.RefreshInterval, 30 * time.Second},
		{"File sets driver", cfg.Database.Driver, database.DriverPostgres},
		{"File sets nested host", cfg.Database.Postgres.Host, "db.internal"},
		{"Default survives partial nested block", cfg.Database.Postgres.Port, "5432"},
		{"Env sets database name", cfg.Database.Postgres.DBName, "placements"},
		{"Env list is split and trimmed", cfg.CORS.AllowedOrigins, []string{"https://a.example.org", "https://b.example.org"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if !reflect.DeepEqual(tc.got, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, tc.got)
			}
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "Unknown driver", body: "database:\n  driver: mysql\n"},
		{name: "Unknown source", body: "source: spreadsheet\n"},
		{name: "Datasets without dir", body: "source: datasets\ndatasetDir: \"\"\n"},
		{name: "Negative refresh", body: "refreshInterval: -1m\n"},
		{name: "Unknown env", body: "env: staging\n"},
		{name: "Bad env value", body: "", env: map[string]string{"WATCH_DATASETS": "sometimes"}},
		{name: "Malformed YAML", body: "addr: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Error("Expected an error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}
