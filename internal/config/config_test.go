package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		ThemesPath:   "themes",
		ThemesURL:    "/themes/",
		RootURL:      "https://example.com/",
		DatabasePath: "/tmp/cx.db",
		SiteID:       1,
		LogLevel:     "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing themes path",
			modify:  func(c *Config) { c.ThemesPath = "" },
			wantErr: true,
			errMsg:  "themes_path is required",
		},
		{
			name:    "missing database path",
			modify:  func(c *Config) { c.DatabasePath = "" },
			wantErr: true,
			errMsg:  "database_path is required",
		},
		{
			name:    "negative site id",
			modify:  func(c *Config) { c.SiteID = -1 },
			wantErr: true,
			errMsg:  "site_id must not be negative",
		},
		{
			name:    "root url without trailing slash",
			modify:  func(c *Config) { c.RootURL = "https://example.com" },
			wantErr: true,
			errMsg:  "root_url must end with /",
		},
		{
			name:    "invalid remote URL scheme",
			modify:  func(c *Config) { c.RemoteURL = "ftp://cms.example.com" },
			wantErr: true,
			errMsg:  "remote_url must use http or https",
		},
		{
			name:    "http remote URL",
			modify:  func(c *Config) { c.RemoteURL = "http://localhost:9000" },
			wantErr: false,
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: true,
			errMsg:  "invalid log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	cfg := &Config{DefaultTheme: "dark"}
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultThemesPath, cfg.ThemesPath)
	assert.Equal(t, DefaultThemesURL, cfg.ThemesURL)
	assert.Equal(t, DefaultRootURL, cfg.RootURL)
	assert.Equal(t, filepath.Join("/xdg", "cx", "cx.db"), cfg.DatabasePath)
	assert.Equal(t, int64(DefaultSiteID), cfg.SiteID)
	assert.Equal(t, "dark", cfg.DefaultTheme)
	assert.Equal(t, DefaultTemplate, cfg.DefaultTemplate)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Run("loads env vars", func(t *testing.T) {
		t.Setenv("CX_THEMES_PATH", "/srv/themes")
		t.Setenv("CX_DATABASE_PATH", "/srv/cx.db")
		t.Setenv("CX_REMOTE_URL", "https://cms.example.com")
		t.Setenv("CX_API_TOKEN", "env-token")
		t.Setenv("CX_SITE_ID", "7")

		cfg := &Config{}
		cfg.LoadFromEnv()

		assert.Equal(t, "/srv/themes", cfg.ThemesPath)
		assert.Equal(t, "/srv/cx.db", cfg.DatabasePath)
		assert.Equal(t, "https://cms.example.com", cfg.RemoteURL)
		assert.Equal(t, "env-token", cfg.APIToken)
		assert.Equal(t, int64(7), cfg.SiteID)
	})

	t.Run("empty env vars do not override", func(t *testing.T) {
		t.Setenv("CX_THEMES_PATH", "")
		t.Setenv("CX_LISTEN_ADDR", ":9090")
		t.Setenv("CX_SITE_ID", "not-a-number")

		cfg := &Config{ThemesPath: "original", SiteID: 3}
		cfg.LoadFromEnv()

		assert.Equal(t, "original", cfg.ThemesPath)
		assert.Equal(t, ":9090", cfg.ListenAddr)
		assert.Equal(t, int64(3), cfg.SiteID)
	})
}

func TestDefaultConfigPath(t *testing.T) {
	t.Run("xdg config home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		assert.Equal(t, filepath.Join("/xdg", "cx", "config.yml"), DefaultConfigPath())
	})

	t.Run("home directory", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		path := DefaultConfigPath()

		home, err := os.UserHomeDir()
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(path, home))
		assert.Contains(t, path, "cx")
		assert.Equal(t, ".yml", filepath.Ext(path))
	})
}

func TestConfig_Save_and_Load(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yml")

	original := validConfig()
	original.APIToken = "secret"
	original.OutputFormat = "json"

	require.NoError(t, original.Save(configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, original, *loaded)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yml")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWithEnv(t *testing.T) {
	t.Run("missing file uses env and defaults", func(t *testing.T) {
		t.Setenv("CX_DEFAULT_THEME", "env-theme")

		cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yml"))
		require.NoError(t, err)
		assert.Equal(t, "env-theme", cfg.DefaultTheme)
		assert.Equal(t, DefaultTemplate, cfg.DefaultTemplate)
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("site_id: [unclosed"), 0600))

		_, err := LoadWithEnv(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}
