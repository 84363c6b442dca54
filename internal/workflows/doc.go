// Package workflows provides high-level orchestration for Unlock-Redux
// commands.
//
// Workflows coordinate the credentials store and the disk surface to
// implement complete user-facing features. Each workflow handles a single
// command's business logic, independent of CLI concerns like flag parsing,
// prompting, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Collects any interactive input (disk paths, passphrases)
//   - Calls the appropriate method on a Manager
//   - Formats the result for display and records the audit entry
//
// Workflows handle everything else:
//   - Resolving disk targets to volume identity
//   - Enforcing store invariants (uniqueness, secret match on delete)
//   - Verifying passphrases before they are persisted
//   - Persisting every mutation as one atomic save
//
// # Available Workflows
//
// Each command has a corresponding Manager method:
//
//   - UnlockAll: Unlocks every saved volume (the boot-time path)
//   - Add: Verifies and saves a credential for a new volume
//   - Delete: Removes a credential, re-authenticated by its secret
//   - Replace: Moves a credential to a new volume UUID in one save
//   - Resolve: Maps a disk target to its UUID and kind, read-only
//
// Reading the audit trail needs neither the store nor the disk surface, so
// Log is a package-level function rather than a Manager method.
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	result, err := manager.Add(ctx, opts)
//	if errors.Is(err, kerrors.ErrDuplicateVolume) {
//	    // Point the user at the replace command
//	}
//
// # Context Usage
//
// All workflow methods accept a context.Context as their first parameter. It
// is handed through to every diskutil invocation.
package workflows
