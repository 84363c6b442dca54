package workflows

import (
	"context"
	"fmt"

	"github.com/ptao/Unlock-Redux/internal/diskutil"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	"github.com/ptao/Unlock-Redux/internal/store"
)

// AddOptions configures the add workflow.
type AddOptions struct {
	// Target is a disk path for the resolver, such as /dev/disk3 or
	// /Volumes/Media. Ignored when UUID is set.
	Target string

	// UUID and Kind identify the volume directly, skipping resolution.
	// Useful when the volume is not attached right now.
	UUID string
	Kind diskutil.Kind

	// Secret is the candidate passphrase for the volume.
	Secret string

	// ConfirmSecret collects the passphrase a second time when it cannot be
	// verified by unlocking. nil means non-interactive: an unverifiable
	// secret is rejected outright.
	ConfirmSecret func() (string, error)
}

// AddResult contains the outcome of an add operation.
type AddResult struct {
	// UUID and Kind identify the volume the credential was saved for.
	UUID string
	Kind diskutil.Kind

	// AutoVerified reports whether the passphrase was proven by an actual
	// unlock rather than by re-entry.
	AutoVerified bool
}

// Add verifies a passphrase and saves it as the credential for a volume.
//
// The workflow:
//  1. Resolves the target to a volume UUID and kind (or takes them directly)
//  2. Refuses volumes that already have a saved credential
//  3. Verifies the passphrase (unlock attempt, then re-entry fallback)
//  4. Appends the record and persists the store in one atomic save
//
// Returns ErrDuplicateVolume if the volume already has a credential; use
// Replace to change it.
// Returns ErrVerificationFailed if the passphrase could not be verified.
// Returns a resolver error if the target is not a CoreStorage or APFS volume.
// Every failure leaves the store untouched.
func (m *Manager) Add(ctx context.Context, opts AddOptions) (*AddResult, error) {
	vol, err := m.targetVolume(ctx, opts.Target, opts.UUID, opts.Kind)
	if err != nil {
		return nil, err
	}

	records, err := m.Store.Load(store.FailOnCorrupt)
	if err != nil {
		return nil, err
	}
	if _, ok := store.Find(records, vol.UUID); ok {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrDuplicateVolume, vol.UUID)
	}

	verified, err := m.verifySecret(ctx, vol, opts.Secret, opts.ConfirmSecret)
	if err != nil {
		return nil, err
	}

	records = append(records, store.Record{UUID: vol.UUID, Secret: opts.Secret, Kind: vol.Kind})
	if err := m.Store.Save(records); err != nil {
		return nil, err
	}

	return &AddResult{UUID: vol.UUID, Kind: vol.Kind, AutoVerified: verified}, nil
}
