package cmd

import (
	"errors"

	"github.com/ptao/Unlock-Redux/internal/audit"
	"github.com/ptao/Unlock-Redux/internal/configs"
	"github.com/ptao/Unlock-Redux/internal/diskutil"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	"github.com/ptao/Unlock-Redux/internal/utils"
	"github.com/ptao/Unlock-Redux/internal/workflows"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	addDisk     string
	addUUID     string
	addType     string
	addPassword string
)

func init() {
	addCmd.Flags().StringVarP(&addDisk, "disk", "d", "", `path to the disk, in the form "/dev/<disk>" or "/Volumes/<name>"`)
	addCmd.Flags().StringVarP(&addUUID, "uuid", "u", "", "UUID of the disk")
	addCmd.Flags().StringVarP(&addType, "type", "t", "", `type of the disk ("CoreStorage" or "APFS"), needed with --uuid`)
	addCmd.Flags().StringVarP(&addPassword, "password", "p", "", "password of the disk")

	rootCmd.AddCommand(addCmd)
}

// resetAddCommandState resets the add command's flag state for testing.
func resetAddCommandState() {
	addDisk = ""
	addUUID = ""
	addType = ""
	addPassword = ""
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Save the UUID and password of a disk",
	Long: `Saves the UUID and password of an encrypted disk so it can be unlocked
automatically at boot.

The disk is named by path and resolved through diskutil, or directly by
UUID and type. The password is checked against the volume before it is
saved; when the automatic check cannot run, you are asked to type it a
second time instead.

Examples:
  unlock-redux add -d /Volumes/Media
  unlock-redux add -d /dev/disk3
  unlock-redux add -u 0FA36FF3-6D85-4464-8CBA-68BEFFA2A388 -t APFS`,
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting add command")

	flags, err := resolveTargetFlags(addDisk, addUUID, addType)
	if err != nil {
		return err
	}
	secret, err := promptSecret(addPassword)
	if err != nil {
		return err
	}

	spinner, cleanup := startSpinner("Checking the password and saving the volume...", verbose)
	defer cleanup()

	entry := audit.NewEntry("add")
	entry.VolumeUUID = flags.uuid

	result, err := manager.Add(cmd.Context(), workflows.AddOptions{
		Target:        flags.target,
		UUID:          flags.uuid,
		Kind:          flags.kind,
		Secret:        secret,
		ConfirmSecret: confirmSecret(spinner),
	})
	if err != nil {
		entry.Outcome = audit.OutcomeFailure
		entry.Detail = auditDetail(err)
		audit.Log(entry)

		spinner.FinalMSG = formatAddError(err)
		return err
	}

	entry.Outcome = audit.OutcomeSuccess
	entry.VolumeUUID = result.UUID
	entry.Kind = string(result.Kind)
	audit.Log(entry)

	Logger.Debugf("Saved volume %s (%s), auto-verified: %t", result.UUID, result.Kind, result.AutoVerified)
	spinner.FinalMSG = color.GreenString("✓") + " Added disk with UUID " + result.UUID
	return nil
}

// formatAddError maps an add failure to its user-facing message.
func formatAddError(err error) string {
	var cmdErr *diskutil.CommandError

	switch {
	case errors.Is(err, kerrors.ErrDuplicateVolume):
		return color.RedString("✗") + " This volume is already saved\n" +
			color.CyanString("→") + " Use " + color.YellowString("unlock-redux replace") + " if you want to change it"

	case errors.Is(err, kerrors.ErrVerificationFailed):
		if !utils.IsTerminal() {
			return color.RedString("✗") + " The password couldn't be checked, and there is no terminal to confirm it on"
		}
		return color.RedString("✗") + " The passwords don't match"

	case errors.Is(err, kerrors.ErrNoVolumeUUID), errors.Is(err, kerrors.ErrUnsupportedFilesystem):
		return color.RedString("✗") + " The given path is neither a CoreStorage disk nor an APFS volume"

	case errors.As(err, &cmdErr):
		return color.RedString("✗") + " diskutil could not inspect that path\n" +
			color.CyanString("→") + " " + cmdErr.Error()

	case errors.Is(err, kerrors.ErrStoreCorrupt):
		return color.RedString("✗") + " The credentials file is damaged and was left untouched\n" +
			color.CyanString("→") + " Inspect or remove " + color.YellowString(configs.UnlockSettings.StorePath) + " before saving new volumes"

	default:
		return color.RedString("✗") + " Failed to save the volume: " + err.Error()
	}
}
