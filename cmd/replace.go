package cmd

import (
	"errors"
	"fmt"

	"github.com/ptao/Unlock-Redux/internal/audit"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	"github.com/ptao/Unlock-Redux/internal/ui"
	"github.com/ptao/Unlock-Redux/internal/utils"
	"github.com/ptao/Unlock-Redux/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	replaceOld string
	replaceNew string
)

func init() {
	replaceCmd.Flags().StringVarP(&replaceOld, "old", "o", "", "old value (the saved volume UUID)")
	replaceCmd.Flags().StringVarP(&replaceNew, "new", "n", "", "new value (the UUID that takes its place)")

	rootCmd.AddCommand(replaceCmd)
}

// resetReplaceCommandState resets the replace command's flag state for testing.
func resetReplaceCommandState() {
	replaceOld = ""
	replaceNew = ""
}

var replaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Replace a saved UUID",
	Long: `Replaces a saved volume UUID while keeping its password.

Useful when a volume comes back under a new UUID, for example after a
reformat, but still uses the same password. The password is checked
against the new volume before anything is rewritten, and the old record
stays in place if that check fails.

Examples:
  unlock-redux replace -o 0FA36FF3-6D85-4464-8CBA-68BEFFA2A388 -n 6A6C64A5-B57B-4C35-A358-CF321F6B6A88`,
	RunE: runReplace,
}

func runReplace(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting replace command")

	oldValue, err := promptValue(replaceOld, "Introduce old value: ")
	if err != nil {
		return err
	}
	newValue, err := promptValue(replaceNew, "Introduce new value: ")
	if err != nil {
		return err
	}

	spinner, cleanup := startSpinner("Replacing the saved volume...", verbose)
	defer cleanup()

	entry := audit.NewEntry("replace")
	entry.VolumeUUID = oldValue
	entry.NewUUID = newValue

	result, err := manager.Replace(cmd.Context(), workflows.ReplaceOptions{
		OldUUID:       oldValue,
		NewUUID:       newValue,
		ConfirmSecret: confirmSecret(spinner),
	})
	if err != nil {
		entry.Outcome = audit.OutcomeFailure
		entry.Detail = auditDetail(err)
		audit.Log(entry)

		spinner.FinalMSG = formatReplaceError(err)
		return err
	}

	entry.Outcome = audit.OutcomeSuccess
	entry.Kind = string(result.Kind)
	audit.Log(entry)

	Logger.Debugf("Replaced %s with %s (%s), auto-verified: %t",
		result.OldUUID, result.NewUUID, result.Kind, result.AutoVerified)
	spinner.FinalMSG = ui.Success.Sprint("✓") + fmt.Sprintf(" Replaced UUID %s with UUID %s",
		result.OldUUID, result.NewUUID)
	return nil
}

// formatReplaceError maps a replace failure to its user-facing message.
func formatReplaceError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrVolumeNotFound):
		return ui.Error.Sprint("✗") + " The value given is not saved, so it can't be replaced"

	case errors.Is(err, kerrors.ErrDuplicateVolume):
		return ui.Error.Sprint("✗") + " The new UUID is already saved\n" +
			ui.Info.Sprint("→") + " Delete one of the two records first"

	case errors.Is(err, kerrors.ErrVerificationFailed):
		if !utils.IsTerminal() {
			return ui.Error.Sprint("✗") + " The password couldn't be checked, and there is no terminal to confirm it on"
		}
		return ui.Error.Sprint("✗") + " The passwords don't match"

	case errors.Is(err, kerrors.ErrStoreCorrupt):
		return ui.Error.Sprint("✗") + " The credentials file is damaged and was left untouched"

	default:
		return ui.Error.Sprint("✗") + " Failed to replace the volume: " + err.Error()
	}
}
