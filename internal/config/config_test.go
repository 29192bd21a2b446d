package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("MONGO_URI", "")
	t.Setenv("DB_PATH", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Driver != "memory" || cfg.Cache.TeamListTTL != 24*time.Hour || cfg.Auth.Provider != "local" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  name: statshub
  port: 9090
  timezone: Europe/Warsaw
store:
  driver: sqlite
  sqlite_path: data/statshub.db
cache:
  team_list_ttl: 12h
scheduler:
  recompute_interval: 15m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SUMMARY_API_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("PORT", "7070")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SUMMARY_API_KEY", "")
	os.Unsetenv("SUMMARY_API_KEY")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != 7070 {
		t.Fatalf("expected env port override, got %d", cfg.App.Port)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.SQLitePath != "data/statshub.db" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if cfg.Cache.TeamListTTL != 12*time.Hour || cfg.Scheduler.RecomputeInterval != 15*time.Minute {
		t.Fatalf("unexpected durations %+v %+v", cfg.Cache, cfg.Scheduler)
	}
	if cfg.Summary.APIKey != "from-dotenv" {
		t.Fatalf("expected api key from .env, got %q", cfg.Summary.APIKey)
	}
	if cfg.Location().String() != "Europe/Warsaw" {
		t.Fatalf("unexpected location %s", cfg.Location())
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"postgres without dsn": func(c *Config) { c.Store.Driver = "postgres" },
		"clerk without key":    func(c *Config) { c.Auth.Provider = "clerk" },
		"unknown driver":       func(c *Config) { c.Store.Driver = "firestore" },
		"bad timezone":         func(c *Config) { c.App.Timezone = "Mars/Olympus" },
	}
	for name, mutate := range cases {
		cfg := Default()
		cfg.Store.Driver = "memory"
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		} else if strings.TrimSpace(err.Error()) == "" {
			t.Fatalf("%s: empty error", name)
		}
	}
}
