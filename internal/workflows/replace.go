package workflows

import (
	"context"
	"fmt"

	"github.com/ptao/Unlock-Redux/internal/diskutil"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	"github.com/ptao/Unlock-Redux/internal/store"
)

// ReplaceOptions configures the replace workflow.
type ReplaceOptions struct {
	// OldUUID identifies the saved record to retire.
	OldUUID string

	// NewUUID is the volume that inherits the old record's secret and kind.
	// Typical after restoring a backup onto a re-created volume.
	NewUUID string

	// ConfirmSecret collects the passphrase again when the carried secret
	// cannot be verified against the new volume by unlocking. The re-entered
	// value must match the saved secret.
	ConfirmSecret func() (string, error)
}

// ReplaceResult contains the outcome of a replace operation.
type ReplaceResult struct {
	// OldUUID is the retired volume UUID.
	OldUUID string

	// NewUUID is the volume UUID that now holds the credential.
	NewUUID string

	// Kind is the volume kind carried over from the old record.
	Kind diskutil.Kind

	// AutoVerified reports whether the passphrase was proven by an actual
	// unlock rather than by re-entry.
	AutoVerified bool
}

// Replace moves a saved credential from one volume UUID to another. The new
// record carries the old record's secret and kind; only the UUID changes.
//
// The carried secret is verified against the new volume exactly as in Add.
// The whole change (old record removed, new record appended) is computed in
// memory and persisted with a single save, so no failure or crash can leave
// the credential deleted but not re-added.
//
// Returns ErrVolumeNotFound if the old UUID has no saved record.
// Returns ErrDuplicateVolume if the new UUID already has one.
// Returns ErrVerificationFailed if the carried secret could not be verified.
// Replacing a UUID with itself is a no-op rewrite.
func (m *Manager) Replace(ctx context.Context, opts ReplaceOptions) (*ReplaceResult, error) {
	records, err := m.Store.Load(store.FailOnCorrupt)
	if err != nil {
		return nil, err
	}

	old, ok := store.Find(records, opts.OldUUID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrVolumeNotFound, opts.OldUUID)
	}
	if opts.NewUUID != opts.OldUUID {
		if _, ok := store.Find(records, opts.NewUUID); ok {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrDuplicateVolume, opts.NewUUID)
		}
	}

	vol := diskutil.Volume{UUID: opts.NewUUID, Kind: old.Kind}
	verified, err := m.verifySecret(ctx, vol, old.Secret, opts.ConfirmSecret)
	if err != nil {
		return nil, err
	}

	next := make([]store.Record, 0, len(records))
	for _, r := range records {
		if r.UUID != opts.OldUUID {
			next = append(next, r)
		}
	}
	next = append(next, store.Record{UUID: opts.NewUUID, Secret: old.Secret, Kind: old.Kind})
	if err := m.Store.Save(next); err != nil {
		return nil, err
	}

	return &ReplaceResult{
		OldUUID:      opts.OldUUID,
		NewUUID:      opts.NewUUID,
		Kind:         old.Kind,
		AutoVerified: verified,
	}, nil
}
