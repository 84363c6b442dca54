package cmd

import (
	"errors"

	"github.com/ptao/Unlock-Redux/internal/diskutil"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	"github.com/ptao/Unlock-Redux/internal/ui"
	"github.com/spf13/cobra"
)

var uuidDisk string

func init() {
	uuidCmd.Flags().StringVarP(&uuidDisk, "disk", "d", "", `path to the disk, in the form "/dev/<disk>" or "/Volumes/<name>"`)

	rootCmd.AddCommand(uuidCmd)
}

// resetUUIDCommandState resets the uuid command's flag state for testing.
func resetUUIDCommandState() {
	uuidDisk = ""
}

var uuidCmd = &cobra.Command{
	Use:   "uuid",
	Short: "Print the CoreStorage or APFS UUID of a volume",
	Long: `Prints the volume UUID that diskutil reports for a disk path.

The UUID is printed bare on stdout so it can be fed into other commands.
Verbose mode also reports whether the volume is CoreStorage or APFS.

Examples:
  unlock-redux uuid -d /Volumes/Media
  unlock-redux add -u "$(unlock-redux uuid -d /dev/disk3)" -t APFS`,
	RunE: runUUID,
}

func runUUID(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting uuid command")

	disk, err := promptValue(uuidDisk, "Introduce the path to the disk to unlock: ")
	if err != nil {
		return err
	}

	spinner, cleanup := startSpinner("Resolving the volume...", verbose)
	defer cleanup()

	vol, err := manager.Resolve(cmd.Context(), disk)
	if err != nil {
		spinner.FinalMSG = formatResolveError(err)
		return err
	}

	Logger.Infof("Resolved %s to %s (%s)", disk, vol.UUID, vol.Kind)
	spinner.FinalMSG = vol.UUID
	return nil
}

// formatResolveError maps a resolution failure to its user-facing message.
// The three failure shapes (diskutil missing, diskutil refusing the target,
// and a report we cannot classify) are reported distinctly.
func formatResolveError(err error) string {
	var cmdErr *diskutil.CommandError

	switch {
	case errors.Is(err, kerrors.ErrNoVolumeUUID), errors.Is(err, kerrors.ErrUnsupportedFilesystem):
		return ui.Error.Sprint("✗") + " The given path is neither a CoreStorage disk nor an APFS volume"

	case errors.As(err, &cmdErr):
		return ui.Error.Sprint("✗") + " diskutil could not inspect that path\n" +
			ui.Info.Sprint("→") + " " + cmdErr.Error()

	default:
		return ui.Error.Sprint("✗") + " Could not inspect the disk: " + err.Error()
	}
}
