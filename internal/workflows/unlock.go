package workflows

import (
	"context"

	"github.com/ptao/Unlock-Redux/internal/diskutil"
	"github.com/ptao/Unlock-Redux/internal/store"
)

// Failure records one volume that could not be unlocked during a bulk run.
type Failure struct {
	UUID string
	Kind diskutil.Kind
	Err  error
}

// UnlockResult contains the outcome of a bulk unlock run.
type UnlockResult struct {
	// Attempted is the number of saved records processed.
	Attempted int

	// Unlocked counts volumes whose unlock sequence fully succeeded.
	Unlocked int

	// Failures lists the volumes that could not be unlocked, in store order.
	Failures []Failure
}

// UnlockAll unlocks every saved volume, in store order. This is the boot-time
// path: it never prompts, never verifies, and never mutates the store.
//
// A failing record is captured in the result and never prevents the remaining
// records from being tried. An unreadable credentials file is treated as
// empty so a damaged store cannot block startup.
//
// Returns ErrStoreIntegrity if the credentials file has the wrong owner or
// loose permissions; that is the one condition that stops the run.
func (m *Manager) UnlockAll(ctx context.Context) (*UnlockResult, error) {
	records, err := m.Store.Load(store.TreatCorruptAsEmpty)
	if err != nil {
		return nil, err
	}

	result := &UnlockResult{Attempted: len(records)}
	for _, r := range records {
		m.Logger.Debugf("Unlocking volume %s (%s)", r.UUID, r.Kind)
		if err := m.unlockRecord(ctx, r); err != nil {
			result.Failures = append(result.Failures, Failure{UUID: r.UUID, Kind: r.Kind, Err: err})
			continue
		}
		result.Unlocked++
	}
	return result, nil
}

// unlockRecord runs the kind-specific unlock sequence for one record.
// CoreStorage volumes need an explicit mount after unlocking; APFS volumes
// mount as part of the unlock.
func (m *Manager) unlockRecord(ctx context.Context, r store.Record) error {
	if err := m.Disk.Unlock(ctx, r.Kind, r.UUID, r.Secret); err != nil {
		return err
	}
	if r.Kind == diskutil.CoreStorage {
		if err := m.Disk.Mount(ctx, r.UUID); err != nil {
			return err
		}
	}
	return nil
}
