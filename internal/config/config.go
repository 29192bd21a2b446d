package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Port        int    `yaml:"port"`
	Timezone    string `yaml:"timezone"`
	SeedDemo    bool   `yaml:"seed_demo"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver"`
	SQLitePath    string `yaml:"sqlite_path"`
	PostgresDSN   string `yaml:"-"`
	MongoURI      string `yaml:"-"`
	MongoDatabase string `yaml:"mongo_database"`
	MigrationsDir string `yaml:"migrations_dir"`
}

type AuthConfig struct {
	Provider       string        `yaml:"provider"`
	ClerkSecretKey string        `yaml:"-"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	// BootstrapEmail is promoted to Creator when it first signs in with the
	// local provider.
	BootstrapEmail    string `yaml:"bootstrap_email"`
	BootstrapPassword string `yaml:"-"`
}

type SummaryConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"-"`
	Timeout  time.Duration `yaml:"timeout"`
	PerMin   float64       `yaml:"requests_per_minute"`
	Burst    int           `yaml:"burst"`
}

type CacheConfig struct {
	TeamListTTL   time.Duration `yaml:"team_list_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type EventsConfig struct {
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type SchedulerConfig struct {
	// RecomputeInterval of zero disables the periodic recompute job.
	RecomputeInterval time.Duration `yaml:"recompute_interval"`
	RecomputeWorkers  int           `yaml:"recompute_workers"`
}

type HTTPConfig struct {
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Config struct {
	App       AppConfig       `yaml:"app"`
	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	Summary   SummaryConfig   `yaml:"summary"`
	Cache     CacheConfig     `yaml:"cache"`
	Events    EventsConfig    `yaml:"events"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	HTTP      HTTPConfig      `yaml:"http"`
}

func Default() Config {
	return Config{
		App: AppConfig{
			Name:        "statshub",
			Environment: "development",
			Port:        8080,
			Timezone:    "UTC",
		},
		Store: StoreConfig{
			MongoDatabase: "statshub",
		},
		Auth: AuthConfig{
			Provider:   "local",
			SessionTTL: 7 * 24 * time.Hour,
		},
		Summary: SummaryConfig{
			Endpoint: "https://api.openai.com/v1",
			Model:    "gpt-4o-mini",
			Timeout:  30 * time.Second,
			PerMin:   30,
			Burst:    5,
		},
		Cache: CacheConfig{
			TeamListTTL:   24 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		Events: EventsConfig{
			SubjectPrefix: "statshub",
		},
		Scheduler: SchedulerConfig{
			RecomputeWorkers: 4,
		},
		HTTP: HTTPConfig{
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load reads the .env next to configPath, then the YAML file over the
// defaults, then environment overrides. A missing YAML file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath != "" {
		envPath := filepath.Join(filepath.Dir(configPath), ".env")
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := env("APP"); v != "" {
		cfg.App.Environment = v
	}
	if v := env("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = port
		}
	}
	if v := env("APP_TIMEZONE"); v != "" {
		cfg.App.Timezone = v
	}
	if v := env("SEED_DEMO"); v != "" {
		cfg.App.SeedDemo, _ = strconv.ParseBool(v)
	}

	if v := env("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := env("DB_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := env("DB_MIGRATIONS_DIR"); v != "" {
		cfg.Store.MigrationsDir = v
	}
	cfg.Store.PostgresDSN = env("POSTGRES_DSN")
	cfg.Store.MongoURI = env("MONGO_URI")
	if v := env("MONGO_DATABASE"); v != "" {
		cfg.Store.MongoDatabase = v
	}
	if cfg.Store.Driver == "" {
		switch {
		case cfg.Store.PostgresDSN != "":
			cfg.Store.Driver = "postgres"
		case cfg.Store.MongoURI != "":
			cfg.Store.Driver = "mongo"
		case cfg.Store.SQLitePath != "":
			cfg.Store.Driver = "sqlite"
		default:
			cfg.Store.Driver = "memory"
		}
	}

	if v := env("AUTH_PROVIDER"); v != "" {
		cfg.Auth.Provider = v
	}
	cfg.Auth.ClerkSecretKey = env("CLERK_SECRET_KEY")
	if v := env("BOOTSTRAP_EMAIL"); v != "" {
		cfg.Auth.BootstrapEmail = v
	}
	cfg.Auth.BootstrapPassword = env("BOOTSTRAP_PASSWORD")

	cfg.Summary.APIKey = env("SUMMARY_API_KEY")
	if v := env("SUMMARY_ENDPOINT"); v != "" {
		cfg.Summary.Endpoint = v
	}
	if v := env("SUMMARY_MODEL"); v != "" {
		cfg.Summary.Model = v
	}

	if v := env("NATS_URL"); v != "" {
		cfg.Events.NATSURL = v
	}
	if v := env("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = strings.Split(v, ",")
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port <= 0 {
		return fmt.Errorf("app port is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q", c.App.Timezone)
	}

	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for sqlite")
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for postgres")
		}
	case "mongo":
		if c.Store.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for mongo")
		}
	default:
		return fmt.Errorf("unsupported store driver: %s", c.Store.Driver)
	}

	switch c.Auth.Provider {
	case "local":
	case "clerk":
		if c.Auth.ClerkSecretKey == "" {
			return fmt.Errorf("CLERK_SECRET_KEY is required for clerk")
		}
	default:
		return fmt.Errorf("unsupported auth provider: %s", c.Auth.Provider)
	}

	if c.Cache.TeamListTTL <= 0 {
		return fmt.Errorf("cache team_list_ttl must be positive")
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("cache sweep_interval must be positive")
	}
	if c.Scheduler.RecomputeInterval < 0 {
		return fmt.Errorf("scheduler recompute_interval must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.App.Environment)
	return env == "prod" || env == "production"
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
