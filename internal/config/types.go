// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Decoder  DecoderConfig  `mapstructure:"decoder"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Privacy  PrivacyConfig  `mapstructure:"privacy"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds transport configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"` // "stdio" or "http"
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Type     string `mapstructure:"type"` // "file", "database" or "memory"
	RootPath string `mapstructure:"root_path"`
	Git      bool   `mapstructure:"git"` // commit every captured record

	// ReloadInterval re-reads the backend every N minutes in HTTP mode, 0 disables
	ReloadInterval int `mapstructure:"reload_interval"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Type        string `mapstructure:"type"` // "sqlite" or "postgres"
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// DecoderConfig controls how loosely shaped input is accepted
type DecoderConfig struct {
	Strict bool `mapstructure:"strict"` // reject unknown enum values instead of defaulting
}

// AnalysisConfig tunes pattern analysis
type AnalysisConfig struct {
	MinStreakDays int    `mapstructure:"min_streak_days"`
	Timezone      string `mapstructure:"timezone"` // IANA name or "Local"
	HotspotLimit  int    `mapstructure:"hotspot_limit"`
}

// PrivacyConfig holds anonymization defaults for shared datasets
type PrivacyConfig struct {
	FuzzRadius      float64 `mapstructure:"fuzz_radius"`
	HashIDs         bool    `mapstructure:"hash_ids"`
	RemoveNames     bool    `mapstructure:"remove_names"`
	RemoveInterests bool    `mapstructure:"remove_interests"`
	RemoveAddress   bool    `mapstructure:"remove_address"`
	GeneralizeType  bool    `mapstructure:"generalize_type"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Valid option values
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	StorageFile     = "file"
	StorageDatabase = "database"
	StorageMemory   = "memory"
)

// ValidTransports returns all valid server transports
func ValidTransports() []string {
	return []string{TransportStdio, TransportHTTP}
}

// ValidStorageTypes returns all valid storage backends
func ValidStorageTypes() []string {
	return []string{StorageFile, StorageDatabase, StorageMemory}
}

// ValidLogLevels returns the accepted logging levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// isValidType is a generic helper to check if a type is in a list of valid types
func isValidType(aType string, validTypes []string) bool {
	for _, valid := range validTypes {
		if aType == valid {
			return true
		}
	}
	return false
}
