package workflows

import (
	"context"
	"fmt"

	"github.com/ptao/Unlock-Redux/internal/diskutil"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	logger "github.com/ptao/Unlock-Redux/internal/logging"
	"github.com/ptao/Unlock-Redux/internal/store"
)

// DiskManager is the disk surface the workflows need. *diskutil.Client
// implements it; tests substitute a fake.
type DiskManager interface {
	Resolve(ctx context.Context, target string) (diskutil.Volume, error)
	Unlock(ctx context.Context, kind diskutil.Kind, uuid, passphrase string) error
	Mount(ctx context.Context, uuid string) error
	Unmount(ctx context.Context, uuid string) error
}

// Manager runs the credential lifecycle operations against one credentials
// store and one disk surface.
type Manager struct {
	Store  *store.Store
	Disk   DiskManager
	Logger logger.Logger
}

// NewManager returns a Manager operating on s through disk.
func NewManager(s *store.Store, disk DiskManager, log logger.Logger) *Manager {
	return &Manager{Store: s, Disk: disk, Logger: log}
}

// targetVolume resolves a disk target through diskutil, or validates a
// directly supplied uuid and kind pair when uuid is non-empty.
func (m *Manager) targetVolume(ctx context.Context, target, uuid string, kind diskutil.Kind) (diskutil.Volume, error) {
	if uuid != "" {
		if kind != diskutil.CoreStorage && kind != diskutil.APFS {
			return diskutil.Volume{}, fmt.Errorf("%w %q", kerrors.ErrUnknownKind, kind)
		}
		return diskutil.Volume{UUID: uuid, Kind: kind}, nil
	}
	return m.Disk.Resolve(ctx, target)
}

// verifySecret checks that secret actually opens the volume before it is
// persisted. The returned bool reports whether the proof was a real unlock.
//
// The volume is unmounted first (best-effort; an already-mounted volume would
// make the unlock meaningless). When the unlock cannot decide, confirm is
// invoked to collect the secret a second time, and a byte-for-byte match
// counts as verified.
//
// Returns ErrVerificationFailed when neither path can vouch for the secret,
// including when confirm is nil (non-interactive invocation).
func (m *Manager) verifySecret(ctx context.Context, vol diskutil.Volume, secret string, confirm func() (string, error)) (bool, error) {
	if err := m.Disk.Unmount(ctx, vol.UUID); err != nil {
		m.Logger.Debugf("Unmount before verification did not succeed: %v", err)
	}

	unlockErr := m.Disk.Unlock(ctx, vol.Kind, vol.UUID, secret)
	if unlockErr == nil {
		m.Logger.Debugf("Verified the password by unlocking volume %s", vol.UUID)
		return true, nil
	}
	m.Logger.Debugf("Could not verify by unlocking volume %s: %v", vol.UUID, unlockErr)

	if confirm == nil {
		return false, fmt.Errorf("%w: %v", kerrors.ErrVerificationFailed, unlockErr)
	}

	reentered, err := confirm()
	if err != nil {
		return false, fmt.Errorf("%w: %v", kerrors.ErrVerificationFailed, err)
	}
	if reentered != secret {
		return false, fmt.Errorf("%w: the passwords don't match", kerrors.ErrVerificationFailed)
	}
	return false, nil
}
