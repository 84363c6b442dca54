package workflows

import (
	"context"
	"fmt"

	"github.com/ptao/Unlock-Redux/internal/diskutil"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	"github.com/ptao/Unlock-Redux/internal/store"
)

// DeleteOptions configures the delete workflow.
type DeleteOptions struct {
	// Target is a disk path for the resolver. Ignored when UUID is set.
	Target string

	// UUID and Kind identify the volume directly, skipping resolution.
	UUID string
	Kind diskutil.Kind

	// Secret must match the saved record for the delete to proceed.
	Secret string
}

// DeleteResult contains the outcome of a delete operation.
type DeleteResult struct {
	// UUID is the volume whose record was removed.
	UUID string

	// Kind is the removed record's volume kind.
	Kind diskutil.Kind
}

// Delete removes the saved credential for a volume.
//
// Removing a credential requires knowing it: the record is deleted only when
// the volume UUID and the supplied secret both match what is saved.
//
// Returns ErrVolumeNotFound if no record exists for the volume.
// Returns ErrSecretMismatch if a record exists but the secret differs.
// The two failures are reported distinctly and both leave the store
// untouched.
func (m *Manager) Delete(ctx context.Context, opts DeleteOptions) (*DeleteResult, error) {
	vol, err := m.targetVolume(ctx, opts.Target, opts.UUID, opts.Kind)
	if err != nil {
		return nil, err
	}

	records, err := m.Store.Load(store.FailOnCorrupt)
	if err != nil {
		return nil, err
	}

	existing, ok := store.Find(records, vol.UUID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrVolumeNotFound, vol.UUID)
	}
	if existing.Secret != opts.Secret {
		return nil, fmt.Errorf("%w for volume %s", kerrors.ErrSecretMismatch, vol.UUID)
	}

	kept := make([]store.Record, 0, len(records)-1)
	for _, r := range records {
		if r.UUID != vol.UUID {
			kept = append(kept, r)
		}
	}
	if err := m.Store.Save(kept); err != nil {
		return nil, err
	}

	return &DeleteResult{UUID: existing.UUID, Kind: existing.Kind}, nil
}
