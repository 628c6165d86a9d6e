// Package config provides configuration management for cx.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultThemesPath   = "themes"
	DefaultThemesURL    = "/themes/"
	DefaultRootURL      = "/"
	DefaultDatabaseName = "cx.db"
	DefaultTheme        = "default"
	DefaultTemplate     = "index"
	DefaultListenAddr   = "127.0.0.1:8080"
	DefaultLogLevel     = "info"
	DefaultSiteID       = 1
	configDirName       = "cx"
	configFileName      = "config.yml"
)

// Config holds the cx configuration.
type Config struct {
	ThemesPath      string `yaml:"themes_path,omitempty"`
	ThemesURL       string `yaml:"themes_url,omitempty"`
	RootURL         string `yaml:"root_url,omitempty"`
	AssetsURL       string `yaml:"assets_url,omitempty"`
	DatabasePath    string `yaml:"database_path,omitempty"`
	SiteID          int64  `yaml:"site_id,omitempty"`
	DefaultTheme    string `yaml:"default_theme,omitempty"`
	DefaultTemplate string `yaml:"default_template,omitempty"`
	ListenAddr      string `yaml:"listen_addr,omitempty"`
	RemoteURL       string `yaml:"remote_url,omitempty"`
	APIToken        string `yaml:"api_token,omitempty"`
	LogLevel        string `yaml:"log_level,omitempty"`
	OutputFormat    string `yaml:"output_format,omitempty"`
}

// ApplyDefaults fills unset fields with their defaults. The database lives
// next to the config file unless set.
func (c *Config) ApplyDefaults() {
	if c.ThemesPath == "" {
		c.ThemesPath = DefaultThemesPath
	}
	if c.ThemesURL == "" {
		c.ThemesURL = DefaultThemesURL
	}
	if c.RootURL == "" {
		c.RootURL = DefaultRootURL
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(filepath.Dir(DefaultConfigPath()), DefaultDatabaseName)
	}
	if c.SiteID == 0 {
		c.SiteID = DefaultSiteID
	}
	if c.DefaultTheme == "" {
		c.DefaultTheme = DefaultTheme
	}
	if c.DefaultTemplate == "" {
		c.DefaultTemplate = DefaultTemplate
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks that all set fields are valid.
func (c *Config) Validate() error {
	if c.ThemesPath == "" {
		return errors.New("themes_path is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.SiteID < 0 {
		return errors.New("site_id must not be negative")
	}

	for name, u := range map[string]string{"themes_url": c.ThemesURL, "root_url": c.RootURL, "assets_url": c.AssetsURL} {
		if u != "" && !strings.HasSuffix(u, "/") {
			return fmt.Errorf("%s must end with /", name)
		}
	}

	// Validate remote URL scheme
	if c.RemoteURL != "" && !strings.HasPrefix(c.RemoteURL, "https://") && !strings.HasPrefix(c.RemoteURL, "http://") {
		return errors.New("remote_url must use http or https")
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	return nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
func (c *Config) LoadFromEnv() {
	setFromEnv("CX_THEMES_PATH", &c.ThemesPath)
	setFromEnv("CX_THEMES_URL", &c.ThemesURL)
	setFromEnv("CX_ROOT_URL", &c.RootURL)
	setFromEnv("CX_ASSETS_URL", &c.AssetsURL)
	setFromEnv("CX_DATABASE_PATH", &c.DatabasePath)
	setFromEnv("CX_DEFAULT_THEME", &c.DefaultTheme)
	setFromEnv("CX_DEFAULT_TEMPLATE", &c.DefaultTemplate)
	setFromEnv("CX_LISTEN_ADDR", &c.ListenAddr)
	setFromEnv("CX_REMOTE_URL", &c.RemoteURL)
	setFromEnv("CX_API_TOKEN", &c.APIToken)
	setFromEnv("CX_LOG_LEVEL", &c.LogLevel)
	setFromEnv("CX_OUTPUT_FORMAT", &c.OutputFormat)
	if v := os.Getenv("CX_SITE_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.SiteID = id
		}
	}
}

func setFromEnv(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, configDirName, configFileName)
	}

	// Fall back to ~/.config/cx/config.yml
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+configDirName, configFileName)
	}

	return filepath.Join(home, ".config", configDirName, configFileName)
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Restrict permissions (user read/write only); the token may be stored here
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file, overrides with environment
// variables and fills in defaults.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		// If file doesn't exist, start with empty config
		cfg = &Config{}
	}

	cfg.LoadFromEnv()
	cfg.ApplyDefaults()
	return cfg, nil
}
