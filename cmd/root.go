// Package cmd implements the unlock-redux CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/ptao/Unlock-Redux/internal/configs"
	"github.com/ptao/Unlock-Redux/internal/diskutil"
	logger "github.com/ptao/Unlock-Redux/internal/logging"
	"github.com/ptao/Unlock-Redux/internal/platform"
	"github.com/ptao/Unlock-Redux/internal/store"
	"github.com/ptao/Unlock-Redux/internal/workflows"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "3.0.0"

var (
	verbose   bool
	debug     bool
	storePath string

	// Logger is the shared logger, built from the persistent flags before
	// any command body runs.
	Logger logger.Logger

	// manager runs the credential workflows against the active settings.
	manager *workflows.Manager

	// diskOverride replaces the diskutil client when set. Production leaves
	// it nil; tests inject a fake through SetDiskManager.
	diskOverride workflows.DiskManager

	// preflight guards every disk and store operation. Swapped out in tests.
	preflight = platform.Check
)

var rootCmd = &cobra.Command{
	Use:   "unlock-redux",
	Short: "Unlock encrypted volumes at boot with saved passwords",
	Long: `Unlock-Redux saves the passwords of encrypted CoreStorage disks and APFS
volumes, then unlocks every saved volume in one go. Run it from a launch
daemon so external drives come back after a reboot without anyone typing
a password.

Passwords are kept in a root-only credentials file. Every command other
than help and completion must run as root on macOS.

Running with no subcommand unlocks every saved volume.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Help, completion, and the hidden completion machinery never touch
		// disks or the store. The completion shells are subcommands, so the
		// whole parent chain has to be checked.
		for c := cmd; c != nil; c = c.Parent() {
			switch c.Name() {
			case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
				return nil
			}
		}

		Logger = logger.Logger{
			Verbose: verbose,
			Debug:   debug,
		}

		if err := preflight(); err != nil {
			return err
		}

		if err := configs.LoadConfigFile(configs.UnlockSettings.ConfigPath); err != nil {
			return Logger.ErrorfAndReturn("Failed to load config file: %v", err)
		}
		if storePath != "" {
			configs.UnlockSettings.StorePath = storePath
		}

		manager = buildManager()
		return nil
	},
	RunE: runExecute,
}

// buildManager wires the store and diskutil client from the active settings.
func buildManager() *workflows.Manager {
	settings := configs.UnlockSettings

	disk := diskOverride
	if disk == nil {
		disk = diskutil.NewClient(settings.DiskutilPath, Logger)
	}

	s := store.New(settings.StorePath, settings.StoreOwnerUID, Logger)
	return workflows.NewManager(s, disk, Logger)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "override the credentials file location")
}

// Execute runs the root command. On failure it prints the error and exits
// with a non-zero status; commands that already printed a styled message
// still return their error so the exit code reflects the outcome.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
