// Package errors provides typed error values for the unlock-redux application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. This makes
// error handling more robust and refactoring-safe.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Platform errors: wrong OS or insufficient privilege (ErrUnsupportedPlatform, ErrRootRequired)
//   - Store errors: credentials file owner/permission/content problems (ErrStoreIntegrity, ErrStoreCorrupt)
//   - Resolution errors: a disk target could not be mapped to a volume (ErrNoVolumeUUID)
//   - Credential errors: lifecycle operations that could not proceed (ErrDuplicateVolume, ErrVolumeNotFound)
//
// # Usage
//
// Return errors from internal packages:
//
//	if present {
//	    return nil, fmt.Errorf("volume %s: %w", uuid, errors.ErrDuplicateVolume)
//	}
//
// Handle errors in the CLI layer:
//
//	result, err := manager.Add(ctx, opts)
//	if errors.Is(err, kerrors.ErrDuplicateVolume) {
//	    // Direct the operator to the replace command.
//	}
//
// Platform and store integrity errors are fatal for the invocation; every
// other sentinel is local to a single administrative operation and implies
// no change to persisted state.
package errors
