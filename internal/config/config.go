package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the CLI, HTTP server and MCP server.
type Config struct {
	DBPath    string `yaml:"db_path"`
	DBUrl     string `yaml:"db_url"`
	User      string `yaml:"user"`
	Port      int    `yaml:"port"`
	Bind      string `yaml:"bind"`
	TLSCert   string `yaml:"tls_cert"`
	TLSKey    string `yaml:"tls_key"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	PageLimit int    `yaml:"page_limit"`

	// CORSOrigins lists browser origins allowed to call the API. Empty
	// disables CORS handling.
	CORSOrigins []string `yaml:"cors_origins"`
}

// Dir returns ~/.aikinote, or .aikinote when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".aikinote"
	}
	return filepath.Join(home, ".aikinote")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DBPath:    filepath.Join(Dir(), "aikinote.db"),
		User:      "local",
		Port:      8378,
		Bind:      "127.0.0.1",
		LogLevel:  "info",
		LogFormat: "console",
		PageLimit: 20,
	}
}

// Load reads ~/.aikinote/config.yaml over the defaults, then applies
// environment overrides: AIKINOTE_DB, AIKINOTE_DB_URL, AIKINOTE_USER, AIKINOTE_PORT,
// AIKINOTE_BIND, AIKINOTE_TLS_CERT, AIKINOTE_TLS_KEY, AIKINOTE_LOG_LEVEL,
// AIKINOTE_LOG_FORMAT, AIKINOTE_PAGE_LIMIT, AIKINOTE_CORS_ORIGINS (comma-separated).
func Load() (Config, error) {
	return LoadFile(filepath.Join(Dir(), "config.yaml"))
}

// LoadFile is Load with an explicit file path. A missing file is not an
// error; a malformed one is.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// Environment variables override file config
	if v := os.Getenv("AIKINOTE_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("AIKINOTE_DB_URL"); v != "" {
		cfg.DBUrl = v
	}
	if v := os.Getenv("AIKINOTE_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("AIKINOTE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("AIKINOTE_BIND"); v != "" {
		cfg.Bind = v
	}
	if v := os.Getenv("AIKINOTE_TLS_CERT"); v != "" {
		cfg.TLSCert = v
	}
	if v := os.Getenv("AIKINOTE_TLS_KEY"); v != "" {
		cfg.TLSKey = v
	}
	if v := os.Getenv("AIKINOTE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("AIKINOTE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("AIKINOTE_PAGE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PageLimit = n
		}
	}

	if v := os.Getenv("AIKINOTE_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	return cfg, nil
}

// Addr returns the listen address as "bind:port".
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// HasTLS returns true if both TLS cert and key are configured.
func (c Config) HasTLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}
