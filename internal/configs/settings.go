package configs

import "path/filepath"

// Settings holds the resolved runtime configuration.
type Settings struct {
	// ConfigPath is the optional TOML config file location. A missing file
	// leaves the defaults in place.
	ConfigPath string

	// StorePath is the credentials file location.
	StorePath string

	// StoreOwnerUID is the uid that must own the credentials file.
	// Root in production; tests point it at the current user.
	StoreOwnerUID int

	// DiskutilPath is the diskutil binary to invoke.
	DiskutilPath string

	// AuditLogPath is the JSONL audit trail location. Empty disables auditing.
	AuditLogPath string
}

// baseDir is the privileged directory holding every file this tool owns.
const baseDir = "/Library/PrivilegedHelperTools/unlock-redux"

// UnlockSettings is the active configuration. The root command finalizes it
// before any operation runs; tests swap in their own value.
var UnlockSettings *Settings

func init() {
	UnlockSettings = DefaultSettings()
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() *Settings {
	return &Settings{
		ConfigPath:    filepath.Join(baseDir, "config.toml"),
		StorePath:     filepath.Join(baseDir, "credentials.json"),
		StoreOwnerUID: 0,
		DiskutilPath:  "diskutil",
		AuditLogPath:  filepath.Join(baseDir, "audit.jsonl"),
	}
}
