// Package appconfig loads cswitch's own settings (not the Claude Code
// settings file) from ~/.config/cswitch/config.yaml with CSWITCH_*
// environment overrides.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the tool's own settings.
type Config struct {
	RemoteBaseURL     string
	RemoteTimeout     time.Duration
	CredentialBackend string
}

// Dir returns the tool's config directory, honoring XDG_CONFIG_HOME.
func Dir() (string, error) {
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		xdgConfigHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(xdgConfigHome, "cswitch"), nil
}

// Load reads config.yaml from the config directory when present and
// applies environment overrides. Missing file means defaults.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return load(filepath.Join(dir, "config.yaml"))
}

func load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("remote.base_url", "http://localhost:8080/api/v1")
	v.SetDefault("remote.timeout", "15s")
	v.SetDefault("credentials.backend", "keyring")

	v.SetEnvPrefix("CSWITCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		RemoteBaseURL:     v.GetString("remote.base_url"),
		RemoteTimeout:     v.GetDuration("remote.timeout"),
		CredentialBackend: v.GetString("credentials.backend"),
	}
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = 15 * time.Second
	}
	return cfg, nil
}
