// Package platform verifies the host can safely run credential operations.
//
// Saving volume passwords only makes sense on macOS (where diskutil lives)
// and only as root (the credentials file is root-owned). Both checks run
// before any other work.
package platform

import (
	"fmt"
	"os"
	"runtime"

	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
)

// Package-level function variables for dependency injection in tests.
var (
	runtimeGOOS = func() string { return runtime.GOOS }
	osGeteuid   = os.Geteuid
)

// Check returns ErrUnsupportedPlatform off macOS and ErrRootRequired when
// the effective uid is not root.
func Check() error {
	if goos := runtimeGOOS(); goos != "darwin" {
		return fmt.Errorf("%w (running on %s)", kerrors.ErrUnsupportedPlatform, goos)
	}
	if uid := osGeteuid(); uid != 0 {
		return fmt.Errorf("%w (running as uid %d)", kerrors.ErrRootRequired, uid)
	}
	return nil
}
