package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/nao1215/flixsearch/internal/registry"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".flixsearch.yaml"

// Environment variables read by ApplyEnv.
const (
	EnvConfig  = "FLIXSEARCH_CONFIG"
	EnvTimeout = "FLIXSEARCH_TIMEOUT"
	EnvListen  = "FLIXSEARCH_LISTEN"
	EnvProxy   = "FLIXSEARCH_PROXY"
	EnvRPS     = "FLIXSEARCH_RPS"
)

// File is the structure of the YAML configuration file.
type File struct {
	Timeout           time.Duration    `yaml:"timeout,omitempty"`
	Deadline          time.Duration    `yaml:"deadline,omitempty"`
	Concurrency       int              `yaml:"concurrency,omitempty"`
	Listen            string           `yaml:"listen,omitempty"`
	Proxy             string           `yaml:"proxy,omitempty"`
	UserAgent         string           `yaml:"userAgent,omitempty"`
	MaxBodySize       int64            `yaml:"maxBodySize,omitempty"`
	RequestsPerSecond float64          `yaml:"requestsPerSecond,omitempty"`
	Servers           []registry.Entry `yaml:"servers,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. configPath, if specified
//  2. .flixsearch.yaml in the current directory
//  3. config.yaml in the XDG config directory (~/.config/flixsearch)
//  4. .flixsearch.yaml in the user's home directory
//
// It returns an empty string if nothing was found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// ApplyFile copies the values set in f over c.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.Timeout != 0 {
		c.Timeout = f.Timeout
	}
	if f.Deadline != 0 {
		c.Deadline = f.Deadline
	}
	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if f.Listen != "" {
		c.ListenAddress = f.Listen
	}
	if f.Proxy != "" {
		c.ProxyAddress = f.Proxy
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.MaxBodySize != 0 {
		c.MaxBodySize = f.MaxBodySize
	}
	if f.RequestsPerSecond != 0 {
		c.RequestsPerSecond = f.RequestsPerSecond
	}
	if len(f.Servers) > 0 {
		c.Servers = f.Servers
	}
}

// LoadDotEnv loads environment variables from .env files.
// Existing variables are not overwritten and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv applies environment overrides. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvListen); ok && v != "" {
		c.ListenAddress = v
	}
	if v, ok := lookup(EnvProxy); ok && v != "" {
		c.ProxyAddress = v
	}
	if v, ok := lookup(EnvRPS); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRPS, err)
		}
		c.RequestsPerSecond = rps
	}
	return nil
}

// Load resolves the configuration from defaults, the configuration file and
// the environment. An explicitly given configPath (or FLIXSEARCH_CONFIG) must
// exist; otherwise a missing file just means defaults.
func Load(configPath string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := NewConfig()

	if configPath == "" {
		if v, ok := lookup(EnvConfig); ok {
			configPath = v
		}
	}

	if path := FindConfigFile(configPath); path != "" {
		f, err := LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.ApplyFile(f)
		cfg.ConfigFilePath = path
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}
