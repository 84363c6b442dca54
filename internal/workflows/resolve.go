package workflows

import (
	"context"

	"github.com/ptao/Unlock-Redux/internal/diskutil"
)

// Resolve maps a disk target to its volume UUID and kind. It is a pure
// query: no prompting, no store access, no state change.
func (m *Manager) Resolve(ctx context.Context, target string) (diskutil.Volume, error) {
	return m.Disk.Resolve(ctx, target)
}
