package cmd

// Testing utilities shared with the integration suites under
// test/integration. They expose the package-level seams (flags, logger,
// disk manager, preflight) so tests can drive the real command tree.

import (
	logger "github.com/ptao/Unlock-Redux/internal/logging"
	"github.com/ptao/Unlock-Redux/internal/platform"
	"github.com/ptao/Unlock-Redux/internal/workflows"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// GetRootCmd returns the real root command for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// SetVerbose sets the global verbose flag for testing.
func SetVerbose(v bool) {
	verbose = v
}

// SetDebug sets the global debug flag for testing.
func SetDebug(d bool) {
	debug = d
}

// SetLogger sets the global logger instance for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}

// SetDiskManager injects a replacement for the diskutil client. The next
// command run builds its manager around it.
func SetDiskManager(d workflows.DiskManager) {
	diskOverride = d
}

// SetPreflight replaces the platform preflight check for testing.
func SetPreflight(f func() error) {
	preflight = f
}

// ResetGlobalState resets all package-level command state between tests.
func ResetGlobalState() {
	verbose = false
	debug = false
	storePath = ""
	Logger = logger.Logger{}
	manager = nil
	diskOverride = nil
	preflight = platform.Check

	resetAddCommandState()
	resetDeleteCommandState()
	resetReplaceCommandState()
	resetUUIDCommandState()
	resetLogCommandState()

	// Parsed flag values survive between Execute calls, so a --version or
	// --store from one test would leak into the next run.
	resetFlagDefaults(rootCmd)
	for _, c := range rootCmd.Commands() {
		resetFlagDefaults(c)
	}

	// Cobra builds the completion command on the first Execute and binds its
	// output writer then and there, so a run under a captured stdout would
	// leave later runs writing to a closed pipe. Dropping the command makes
	// the next Execute rebuild it against the stdout active at that point.
	for _, c := range rootCmd.Commands() {
		if c.Name() == "completion" {
			rootCmd.RemoveCommand(c)
		}
	}
}

func resetFlagDefaults(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
}
