package cmd

import (
	"errors"

	"github.com/ptao/Unlock-Redux/internal/audit"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	"github.com/ptao/Unlock-Redux/internal/workflows"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	deleteDisk     string
	deleteUUID     string
	deleteType     string
	deletePassword string
)

func init() {
	deleteCmd.Flags().StringVarP(&deleteDisk, "disk", "d", "", `path to the disk, in the form "/dev/<disk>" or "/Volumes/<name>"`)
	deleteCmd.Flags().StringVarP(&deleteUUID, "uuid", "u", "", "UUID of the disk")
	deleteCmd.Flags().StringVarP(&deleteType, "type", "t", "", `type of the disk ("CoreStorage" or "APFS"), needed with --uuid`)
	deleteCmd.Flags().StringVarP(&deletePassword, "password", "p", "", "password of the disk")

	rootCmd.AddCommand(deleteCmd)
}

// resetDeleteCommandState resets the delete command's flag state for testing.
func resetDeleteCommandState() {
	deleteDisk = ""
	deleteUUID = ""
	deleteType = ""
	deletePassword = ""
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the UUID and password of a disk",
	Long: `Deletes the saved password of a disk.

Deleting requires knowing the password: a record is only removed when
both the UUID and the password match what was saved.

Examples:
  unlock-redux delete -d /Volumes/Media
  unlock-redux delete -u 0FA36FF3-6D85-4464-8CBA-68BEFFA2A388 -t APFS`,
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting delete command")

	flags, err := resolveTargetFlags(deleteDisk, deleteUUID, deleteType)
	if err != nil {
		return err
	}
	secret, err := promptSecret(deletePassword)
	if err != nil {
		return err
	}

	spinner, cleanup := startSpinner("Deleting the saved volume...", verbose)
	defer cleanup()

	entry := audit.NewEntry("delete")
	entry.VolumeUUID = flags.uuid

	result, err := manager.Delete(cmd.Context(), workflows.DeleteOptions{
		Target: flags.target,
		UUID:   flags.uuid,
		Kind:   flags.kind,
		Secret: secret,
	})
	if err != nil {
		entry.Outcome = audit.OutcomeFailure
		entry.Detail = auditDetail(err)
		audit.Log(entry)

		spinner.FinalMSG = formatDeleteError(err)
		return err
	}

	entry.Outcome = audit.OutcomeSuccess
	entry.VolumeUUID = result.UUID
	entry.Kind = string(result.Kind)
	audit.Log(entry)

	spinner.FinalMSG = color.GreenString("✓") + " Deleted disk with UUID " + result.UUID
	return nil
}

// formatDeleteError maps a delete failure to its user-facing message.
func formatDeleteError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrVolumeNotFound):
		return color.RedString("✗") + " The UUID is not saved, or the password for that UUID is incorrect"

	case errors.Is(err, kerrors.ErrSecretMismatch):
		return color.RedString("✗") + " The disk couldn't be deleted. Check that the password is correct"

	case errors.Is(err, kerrors.ErrNoVolumeUUID), errors.Is(err, kerrors.ErrUnsupportedFilesystem):
		return color.RedString("✗") + " The given path is neither a CoreStorage disk nor an APFS volume"

	case errors.Is(err, kerrors.ErrStoreCorrupt):
		return color.RedString("✗") + " The credentials file is damaged and was left untouched"

	default:
		return color.RedString("✗") + " Failed to delete the volume: " + err.Error()
	}
}
