package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ClientConfig is the liftlog CLI configuration.
type ClientConfig struct {
	DataDir string      `yaml:"data_dir"`
	Sync    SyncConfig  `yaml:"sync"`
	OAuth   OAuthConfig `yaml:"oauth"`
}

type SyncConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

type OAuthConfig struct {
	ClientID      string   `yaml:"client_id"`
	DeviceAuthURL string   `yaml:"device_auth_url"`
	TokenURL      string   `yaml:"token_url"`
	Scopes        []string `yaml:"scopes"`
}

// DefaultClient returns the built-in client configuration.
func DefaultClient() *ClientConfig {
	dataDir := ".liftlog"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".liftlog")
	}
	return &ClientConfig{
		DataDir: dataDir,
		Sync: SyncConfig{
			BaseURL:  "http://localhost:8080",
			Interval: 5 * time.Minute,
			Timeout:  30 * time.Second,
		},
		OAuth: OAuthConfig{
			DeviceAuthURL: "https://github.com/login/device/code",
			TokenURL:      "https://github.com/login/oauth/access_token",
			Scopes:        []string{"gist"},
		},
	}
}

// LoadClient reads the client config. A missing file (or empty path) yields
// the defaults. Env overrides:
//
//	LIFTLOG_DATA_DIR, LIFTLOG_SYNC_URL, LIFTLOG_SYNC_INTERVAL,
//	LIFTLOG_SYNC_TIMEOUT, LIFTLOG_OAUTH_CLIENT_ID
func LoadClient(path string) (*ClientConfig, error) {
	cfg := DefaultClient()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	applyClientEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyClientEnvOverrides(cfg *ClientConfig) {
	if v := os.Getenv("LIFTLOG_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LIFTLOG_SYNC_URL"); v != "" {
		cfg.Sync.BaseURL = v
	}
	if v := os.Getenv("LIFTLOG_SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Sync.Interval = d
		}
	}
	if v := os.Getenv("LIFTLOG_SYNC_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Sync.Timeout = d
		}
	}
	if v := os.Getenv("LIFTLOG_OAUTH_CLIENT_ID"); v != "" {
		cfg.OAuth.ClientID = v
	}
}

func (c *ClientConfig) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Sync.BaseURL == "" {
		return fmt.Errorf("sync.base_url is required")
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync.interval must be positive")
	}
	if c.Sync.Timeout <= 0 {
		return fmt.Errorf("sync.timeout must be positive")
	}
	return nil
}
