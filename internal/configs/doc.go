// Package configs manages runtime settings for unlock-redux.
//
// Settings resolve in three layers, later layers winning:
//
//  1. Built-in defaults under /Library/PrivilegedHelperTools/unlock-redux/
//  2. The operator-authored TOML config file (config.toml in the same
//     directory)
//  3. Command-line flags (--store)
//
// The resolved values live in the package-level UnlockSettings pointer,
// finalized by the root command before any operation runs. Tests swap the
// pointer for a Settings value rooted in a temp directory, which keeps every
// test away from the real privileged paths.
//
// # Config File
//
// All fields are optional:
//
//	[store]
//	path = "/Library/PrivilegedHelperTools/unlock-redux/credentials.json"
//
//	[diskutil]
//	path = "/usr/sbin/diskutil"
//
//	[audit]
//	path = "off"   # or a JSONL file path
package configs
