// Package config loads settings from ~/.tada/config.yaml, a .env file in the
// working directory and TADA_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/tada/internal/store/jsonstore"
	"github.com/idilsaglam/tada/internal/store/kv"
)

const (
	configFileName  = "config.yaml"
	sessionFileName = ".tada-session.json"
	sessionDBName   = ".tada-session.db"
)

type Store struct {
	Backend  string `yaml:"backend"`   // none | memory | file | sqlite | redis
	Path     string `yaml:"path"`      // file and sqlite backends
	RedisURL string `yaml:"redis_url"` // redis backend
	Key      string `yaml:"key"`       // counter key, empty = default
}

type Config struct {
	Store    Store  `yaml:"store"`
	DataFile string `yaml:"data_file"`
	Theme    string `yaml:"theme"`
	LogLevel string `yaml:"log_level"`
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tada"), nil
}

// DefaultPath is ~/.tada/config.yaml.
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Overrides come from command-line flags and beat every other source.
type Overrides struct {
	Store string
	Theme string
}

// Load reads the config at path. An empty path means DefaultPath, which may
// be missing; an explicit path must exist.
func Load(path string, ov Overrides) (*Config, error) {
	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()
	if ov.Store != "" {
		cfg.Store.Backend = ov.Store
	}
	if ov.Theme != "" {
		cfg.Theme = ov.Theme
	}

	if err := cfg.fillDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, name string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	set(&c.Store.Backend, "TADA_STORE")
	set(&c.Store.Path, "TADA_STORE_PATH")
	set(&c.Store.RedisURL, "TADA_REDIS_URL")
	set(&c.Store.Key, "TADA_COUNTER_KEY")
	set(&c.DataFile, "TADA_DATA")
	set(&c.Theme, "TADA_THEME")
	set(&c.LogLevel, "TADA_LOG_LEVEL")
}

func (c *Config) fillDefaults() error {
	b, err := kv.ParseBackend(c.Store.Backend)
	if err != nil {
		return err
	}
	c.Store.Backend = string(b)

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getwd: %w", err)
	}
	if c.DataFile == "" {
		c.DataFile = filepath.Join(wd, jsonstore.DataFileName)
	}
	if c.Store.Path == "" {
		switch b {
		case kv.BackendFile:
			c.Store.Path = filepath.Join(wd, sessionFileName)
		case kv.BackendSQLite:
			c.Store.Path = filepath.Join(wd, sessionDBName)
		}
	}
	if c.Theme == "" {
		c.Theme = "classic"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	return nil
}

// KV is the store section in the form kv.Open takes.
func (c *Config) KV() kv.Config {
	return kv.Config{
		Backend:  kv.Backend(c.Store.Backend),
		Path:     c.Store.Path,
		RedisURL: c.Store.RedisURL,
	}
}
