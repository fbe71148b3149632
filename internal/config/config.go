// Package config handles loading and parsing application configuration.
// The config file path comes from (in priority order):
//  1. A command-line flag:      --config=/path/to/config.yaml
//  2. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//
// Every field can also be overridden by its env:"..." variable.
//
// The parsed values are returned as a *Config so the struct is shared by
// reference between the CLI, the controllers and the server.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
//
// env-required:"true" means the app refuses to start if that value is
// missing; env-default supplies a value when neither YAML nor env set it.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// StoragePath is the filesystem path to the SQLite .db file that
	// holds the users, todos and theme keys.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`

	// The sections below are embedded (not pointers), so a missing YAML
	// section still gets its env-default values.
	HTTPServer `yaml:"http_server"`
	Remote     `yaml:"remote"`
	Todo       `yaml:"todo"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`
}

// Remote configures the client for the remote user API.
// Nested under remote: in the YAML file.
type Remote struct {
	// BaseURL is the API root; /users and /users/{id} are joined onto it.
	BaseURL string `yaml:"base_url" env:"REMOTE_BASE_URL" env-default:"https://jsonplaceholder.typicode.com"`

	// Timeout bounds each request. Requests are never retried.
	Timeout time.Duration `yaml:"timeout" env:"REMOTE_TIMEOUT" env-default:"10s"`
}

// Todo configures the todo list.
// Nested under todo: in the YAML file.
type Todo struct {
	// AnimationDelay is how long a freshly added todo keeps its
	// "fade-in" flag before it is cleared.
	AnimationDelay time.Duration `yaml:"animation_delay" env:"TODO_ANIMATION_DELAY" env-default:"300ms"`
}

// Load reads the YAML file at path, applies env overrides and defaults,
// and validates required fields.
func Load(path string) (*Config, error) {
	// ── Source 1: the --config flag, passed in by the caller ─────────
	// ── Source 2: environment variable ───────────────────────────────
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	// Neither source provided a path.
	if path == "" {
		return nil, errors.New("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	// Report a missing file by name.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	// cleanenv.ReadConfig parses the YAML, applies env:"..." overrides
	// and env-default values, then checks env-required fields.
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	return &cfg, nil
}
