package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config is the operator-authored TOML configuration file.
// Every field is optional; empty values keep the defaults.
type Config struct {
	Store    StoreConfig    `toml:"store"`
	Diskutil DiskutilConfig `toml:"diskutil"`
	Audit    AuditConfig    `toml:"audit"`
}

// StoreConfig configures the credentials file.
type StoreConfig struct {
	// Path overrides the credentials file location.
	Path string `toml:"path"`
}

// DiskutilConfig configures the external disk utility.
type DiskutilConfig struct {
	// Path overrides the diskutil binary.
	Path string `toml:"path"`
}

// AuditConfig configures the audit trail.
type AuditConfig struct {
	// Path overrides the audit log location. The value "off" disables auditing.
	Path string `toml:"path"`
}

// ConfigFilePath returns the expected config file location.
func ConfigFilePath() string {
	return filepath.Join(baseDir, "config.toml")
}

// LoadConfigFile applies the config file at path on top of the current
// settings. An empty path means the default location. A missing file is not
// an error; the defaults stand.
func LoadConfigFile(path string) error {
	if path == "" {
		path = ConfigFilePath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	var config Config
	if err := LoadTOML(path, &config); err != nil {
		return fmt.Errorf("could not read config file %s: %w", path, err)
	}

	if config.Store.Path != "" {
		UnlockSettings.StorePath = config.Store.Path
	}
	if config.Diskutil.Path != "" {
		UnlockSettings.DiskutilPath = config.Diskutil.Path
	}
	switch config.Audit.Path {
	case "":
	case "off":
		UnlockSettings.AuditLogPath = ""
	default:
		UnlockSettings.AuditLogPath = config.Audit.Path
	}
	return nil
}
