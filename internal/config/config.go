// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigDir is the default configuration directory
	DefaultConfigDir = ".learnmap/configs"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.json"
	// EnvPrefix prefixes environment overrides, e.g. LEARNMAP_STORAGE_TYPE
	EnvPrefix = "LEARNMAP"
)

// Load reads configuration from ~/.learnmap/configs/config.json. A missing
// file is not an error. Environment variables override file values.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(homeDir, DefaultConfigDir))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key needs a default
// so that AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.transport", d.Server.Transport)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.root_path", d.Storage.RootPath)
	v.SetDefault("storage.git", d.Storage.Git)
	v.SetDefault("storage.reload_interval", d.Storage.ReloadInterval)

	v.SetDefault("database.type", d.Database.Type)
	v.SetDefault("database.sqlite_path", d.Database.SQLitePath)
	v.SetDefault("database.postgres_dsn", d.Database.PostgresDSN)

	v.SetDefault("decoder.strict", d.Decoder.Strict)

	v.SetDefault("analysis.min_streak_days", d.Analysis.MinStreakDays)
	v.SetDefault("analysis.timezone", d.Analysis.Timezone)
	v.SetDefault("analysis.hotspot_limit", d.Analysis.HotspotLimit)

	v.SetDefault("privacy.fuzz_radius", d.Privacy.FuzzRadius)
	v.SetDefault("privacy.hash_ids", d.Privacy.HashIDs)
	v.SetDefault("privacy.remove_names", d.Privacy.RemoveNames)
	v.SetDefault("privacy.remove_interests", d.Privacy.RemoveInterests)
	v.SetDefault("privacy.remove_address", d.Privacy.RemoveAddress)
	v.SetDefault("privacy.generalize_type", d.Privacy.GeneralizeType)

	v.SetDefault("logging.level", d.Logging.Level)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !isValidType(c.Server.Transport, ValidTransports()) {
		return fmt.Errorf("server.transport must be 'stdio' or 'http', got '%s'", c.Server.Transport)
	}
	if c.Server.Transport == TransportHTTP && (c.Server.Port < 1 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if !isValidType(c.Storage.Type, ValidStorageTypes()) {
		return fmt.Errorf("storage.type must be one of %v, got '%s'", ValidStorageTypes(), c.Storage.Type)
	}
	if c.Storage.Type == StorageFile && c.Storage.RootPath == "" {
		return fmt.Errorf("storage.root_path is required when storage.type is 'file'")
	}
	if c.Storage.ReloadInterval < 0 {
		return fmt.Errorf("storage.reload_interval must not be negative, got %d", c.Storage.ReloadInterval)
	}

	if c.Storage.Type == StorageDatabase {
		if c.Database.Type != "sqlite" && c.Database.Type != "postgres" {
			return fmt.Errorf("database.type must be 'sqlite' or 'postgres', got '%s'", c.Database.Type)
		}
		if c.Database.Type == "sqlite" && c.Database.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path is required when type is 'sqlite'")
		}
		if c.Database.Type == "postgres" && c.Database.PostgresDSN == "" {
			return fmt.Errorf("database.postgres_dsn is required when type is 'postgres'")
		}
	}

	if c.Analysis.MinStreakDays < 1 {
		return fmt.Errorf("analysis.min_streak_days must be at least 1, got %d", c.Analysis.MinStreakDays)
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Privacy.FuzzRadius <= 0 {
		return fmt.Errorf("privacy.fuzz_radius must be positive, got %g", c.Privacy.FuzzRadius)
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if !isValidType(c.Logging.Level, ValidLogLevels()) {
		return fmt.Errorf("logging.level must be one of %v, got '%s'", ValidLogLevels(), c.Logging.Level)
	}

	return nil
}

// Location resolves analysis.timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Analysis.Timezone == "" || strings.EqualFold(c.Analysis.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Analysis.Timezone)
	if err != nil {
		return nil, fmt.Errorf("analysis.timezone %q is not a known zone: %w", c.Analysis.Timezone, err)
	}
	return loc, nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, DefaultConfigDir)
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Server: ServerConfig{
			Transport: TransportStdio,
			Host:      "localhost",
			Port:      8080,
		},
		Storage: StorageConfig{
			Type:     StorageFile,
			RootPath: filepath.Join(homeDir, ".learnmap", "store"),
			Git:      true,
		},
		Database: DatabaseConfig{
			Type:       "sqlite",
			SQLitePath: filepath.Join(homeDir, ".learnmap", "db", "learnmap.db"),
		},
		Analysis: AnalysisConfig{
			MinStreakDays: 3,
			Timezone:      "Local",
			HotspotLimit:  10,
		},
		Privacy: PrivacyConfig{
			FuzzRadius:    0.01,
			HashIDs:       true,
			RemoveNames:   true,
			RemoveAddress: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
