package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const appName = "domainadmin"

// LoadConfig overlays the TOML file at path on top of the embedded defaults.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate rejects values that would make the importer produce invalid records.
func (c *Config) Validate() error {
	if c.Import.DefaultPort < 1 || c.Import.DefaultPort > 65535 {
		return fmt.Errorf("import.default_port %d out of range", c.Import.DefaultPort)
	}
	if len(c.Import.Columns.Domain) == 0 {
		return fmt.Errorf("import.columns.domain must name at least one header")
	}
	if c.PSL.File != "" && c.PSL.URL != "" {
		return fmt.Errorf("psl.file and psl.url are mutually exclusive")
	}
	if _, err := c.ICP.TTL(); err != nil {
		return err
	}
	return nil
}

// TTL parses icp.cache_ttl; empty means no expiry.
func (c ICPConfig) TTL() (time.Duration, error) {
	if c.CacheTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid icp.cache_ttl=%q: %w", c.CacheTTL, err)
	}
	return d, nil
}

// EnsureConfig writes the default config file into the app data dir unless it
// already exists (or force is set) and returns its path.
func EnsureConfig(force bool) (string, error) {
	appDir, err := GetAppDataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(appDir, 0700); err != nil {
		return "", err
	}
	path := filepath.Join(appDir, "config.toml")
	if err := ensureFile(path, DefaultConfigTOML, force); err != nil {
		return "", err
	}
	return path, nil
}

func ensureFile(path, content string, force bool) error {
	if _, err := os.Stat(path); os.IsNotExist(err) || force {
		return os.WriteFile(path, []byte(content), 0644)
	} else if err != nil {
		return err
	}
	return nil
}

// DefaultPath is the config file location used when no --config flag is given.
func DefaultPath() string {
	appDir, err := GetAppDataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(appDir, "config.toml")
}

func GetAppDataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}
