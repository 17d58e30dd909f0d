package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// Supported persistence drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig selects and configures the snapshot persistence backend.
// The memory driver keeps state only for the life of the process.
type DatabaseConfig struct {
	Driver      string        `mapstructure:"driver"       validate:"required,oneof=memory postgres sqlite"`
	URL         string        `mapstructure:"url"          validate:"required_if=Driver postgres"`
	Path        string        `mapstructure:"path"         validate:"required_if=Driver sqlite"`
	SaveTimeout time.Duration `mapstructure:"save_timeout" validate:"gt=0"`
}

// SeedConfig controls the data loaded into an empty library at startup.
type SeedConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// File is a YAML seed file. The built-in seed is used when empty.
	File string `mapstructure:"file"`
}
