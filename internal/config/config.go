// ABOUTME: Fitness configuration management with backend selection.
// ABOUTME: Loads the JSON config file, .env and FITNESS_* overrides; builds stores and requirement providers.

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/harperreed/fitness/internal/charm"
	"github.com/harperreed/fitness/internal/diary"
	"github.com/harperreed/fitness/internal/goals"
	"github.com/harperreed/fitness/internal/storage"
	"github.com/joho/godotenv"
)

// Backends lists the supported storage backends.
var Backends = []string{"sqlite", "postgres", "badger", "charm", "dynamodb"}

// DefaultListen is the HTTP API address when none is configured.
const DefaultListen = "127.0.0.1:8080"

// Config stores fitness tool configuration.
type Config struct {
	// Backend selects the storage backend; see Backends. Defaults to sqlite.
	Backend string `json:"backend,omitempty" env:"FITNESS_BACKEND"`

	// DataDir is the root directory for local storage. SQLite puts fitness.db
	// here, Badger a badger/ directory. Supports ~ expansion.
	DataDir string `json:"data_dir,omitempty" env:"FITNESS_DATA_DIR"`

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `json:"database_url,omitempty" env:"FITNESS_DATABASE_URL"`

	// DynamoTablePrefix is prepended to meal_diaries, exercise_diaries and weight_diaries.
	DynamoTablePrefix string `json:"dynamo_table_prefix,omitempty" env:"FITNESS_DYNAMO_TABLE_PREFIX"`

	UserID   string `json:"user_id,omitempty" env:"FITNESS_USER_ID"`
	LogLevel string `json:"log_level,omitempty" env:"FITNESS_LOG_LEVEL"`
	Listen   string `json:"listen,omitempty" env:"FITNESS_LISTEN"`

	// DailyCalories is a fixed requirement. It wins over Profile when set.
	DailyCalories float64 `json:"daily_calories,omitempty" env:"FITNESS_DAILY_CALORIES"`

	Profile goals.Profile `json:"profile,omitzero" envPrefix:"FITNESS_PROFILE_"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetUserID returns the configured user, falling back to the OS user name.
func (c *Config) GetUserID() string {
	if c.UserID != "" {
		return c.UserID
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "default"
}

// GetListen returns the HTTP listen address.
func (c *Config) GetListen() string {
	if c.Listen == "" {
		return DefaultListen
	}
	return c.Listen
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Store implementation based on the configured backend.
func (c *Config) OpenStorage(ctx context.Context) (storage.Store, error) {
	return c.OpenBackend(ctx, c.GetBackend())
}

// OpenBackend opens the named backend with this config's settings.
func (c *Config) OpenBackend(ctx context.Context, backend string) (storage.Store, error) {
	dataDir := c.GetDataDir()

	switch backend {
	case "sqlite":
		return storage.OpenSQLite(filepath.Join(dataDir, "fitness.db"))
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("postgres backend needs database_url")
		}
		return storage.OpenPostgres(c.DatabaseURL)
	case "badger":
		return storage.OpenBadger(filepath.Join(dataDir, "badger"))
	case "charm":
		client, err := charm.InitClient()
		if err != nil {
			return nil, fmt.Errorf("init charm: %w", err)
		}
		return storage.NewKVStore(client), nil
	case "dynamodb":
		return storage.OpenDynamo(ctx, c.DynamoTablePrefix)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// Requirements returns the daily caloric requirement provider, or nil when
// neither a fixed value nor a profile is configured.
func (c *Config) Requirements() diary.RequirementProvider {
	switch {
	case c.DailyCalories > 0:
		return goals.Static(c.DailyCalories)
	case !c.Profile.IsZero():
		return c.Profile
	default:
		return nil
	}
}

// Goals returns the nutrition goal provider, or nil when no profile is configured.
func (c *Config) Goals() diary.GoalProvider {
	if c.Profile.IsZero() {
		return nil
	}
	return c.Profile
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "fitness", "config.json")
}

// Load reads config from disk, then applies .env and FITNESS_* overrides.
func Load() (*Config, error) {
	cfg, err := loadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// LoadFile reads config from disk without environment overrides.
func LoadFile() (*Config, error) {
	return loadFile(GetConfigPath())
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Set assigns a config field by its JSON name.
func (c *Config) Set(key, value string) error {
	switch key {
	case "backend":
		v := strings.ToLower(value)
		for _, b := range Backends {
			if v == b {
				c.Backend = v
				return nil
			}
		}
		return fmt.Errorf("unknown backend %q (want one of %s)", value, strings.Join(Backends, ", "))
	case "data_dir":
		c.DataDir = value
	case "database_url":
		c.DatabaseURL = value
	case "dynamo_table_prefix":
		c.DynamoTablePrefix = value
	case "user_id":
		c.UserID = value
	case "log_level":
		c.LogLevel = value
	case "listen":
		c.Listen = value
	case "daily_calories":
		var kcal float64
		if _, err := fmt.Sscanf(value, "%g", &kcal); err != nil || kcal < 0 {
			return fmt.Errorf("daily_calories must be a non-negative number, got %q", value)
		}
		c.DailyCalories = kcal
	case "profile.gender":
		c.Profile.Gender = value
	case "profile.age":
		if _, err := fmt.Sscanf(value, "%d", &c.Profile.Age); err != nil {
			return fmt.Errorf("profile.age must be an integer, got %q", value)
		}
	case "profile.height_cm":
		if _, err := fmt.Sscanf(value, "%g", &c.Profile.HeightCm); err != nil {
			return fmt.Errorf("profile.height_cm must be a number, got %q", value)
		}
	case "profile.weight_kg":
		if _, err := fmt.Sscanf(value, "%g", &c.Profile.WeightKg); err != nil {
			return fmt.Errorf("profile.weight_kg must be a number, got %q", value)
		}
	case "profile.activity_level":
		c.Profile.ActivityLevel = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
