// ABOUTME: Configuration loading and parsing for the media agent store tooling
// ABOUTME: Supports YAML files with environment variable expansion and validation

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete media agent storage configuration.
type Config struct {
	// DataDir is the directory holding the database and key files.
	DataDir    string           `yaml:"data_dir"`
	Database   DatabaseConfig   `yaml:"database"`
	Encryption EncryptionConfig `yaml:"encryption"`
	Sessions   SessionsConfig   `yaml:"sessions"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	// File is the database file name inside the data directory.
	File string `yaml:"file"`
}

// EncryptionConfig holds encryption key configuration.
type EncryptionConfig struct {
	// Key optionally supplies the base64url-encoded key directly,
	// bypassing the key file. Usually set via ${MEDIA_AGENT_KEY}.
	Key string `yaml:"key"`
}

// SessionsConfig holds login session configuration.
type SessionsConfig struct {
	TTL time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TTLRaw string `yaml:"ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultSessionTTL is used when sessions.ttl is not configured.
const DefaultSessionTTL = 24 * time.Hour

// Default returns the configuration used when no config file exists:
// current-directory data dir, default database name, 24h sessions.
func Default() *Config {
	return &Config{
		DataDir:  ".",
		Sessions: SessionsConfig{TTL: DefaultSessionTTL},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Sessions.TTLRaw != "" {
		cfg.Sessions.TTL, err = time.ParseDuration(cfg.Sessions.TTLRaw)
		if err != nil {
			return nil, fmt.Errorf("parsing sessions.ttl %q: %w", cfg.Sessions.TTLRaw, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all configuration fields are usable.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	// The database file lives inside the data directory; path components
	// would escape it.
	if strings.ContainsAny(c.Database.File, `/\`) {
		return fmt.Errorf("database.file must be a bare file name, got %q", c.Database.File)
	}

	if c.Sessions.TTL < 0 {
		return fmt.Errorf("sessions.ttl must not be negative")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}
