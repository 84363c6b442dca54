package cmd

import (
	"fmt"
	"strings"

	"github.com/ptao/Unlock-Redux/internal/audit"
	"github.com/ptao/Unlock-Redux/internal/ui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(executeCmd)
}

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Unlock every saved volume",
	Long: `Unlocks every volume whose UUID and password have been saved.

CoreStorage volumes are unlocked and then mounted; APFS volumes mount as
part of the unlock. A failing volume does not stop the others: the command
reports every failure and exits non-zero if any volume stayed locked.

Running unlock-redux with no subcommand does the same thing.`,
	RunE: runExecute,
}

func runExecute(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting bulk unlock")

	spinner, cleanup := startSpinner("Unlocking saved volumes...", verbose)
	defer cleanup()

	entry := audit.NewEntry("unlock")

	result, err := manager.UnlockAll(cmd.Context())
	if err != nil {
		entry.Outcome = audit.OutcomeFailure
		entry.Detail = auditDetail(err)
		audit.Log(entry)

		spinner.FinalMSG = ui.Error.Sprint("✗") + " Could not read the saved credentials: " + err.Error()
		return err
	}

	entry.Attempted = result.Attempted
	entry.Unlocked = result.Unlocked
	entry.Failed = len(result.Failures)

	if len(result.Failures) == 0 {
		entry.Outcome = audit.OutcomeSuccess
		audit.Log(entry)

		if result.Attempted == 0 {
			Logger.Infof("Nothing to unlock")
			spinner.FinalMSG = ui.Success.Sprint("✓") + " No volumes saved, nothing to unlock"
			return nil
		}
		spinner.FinalMSG = ui.Success.Sprint("✓") +
			fmt.Sprintf(" Unlocked %d of %d saved volumes", result.Unlocked, result.Attempted)
		return nil
	}

	entry.Outcome = audit.OutcomeFailure
	audit.Log(entry)

	var b strings.Builder
	for _, f := range result.Failures {
		b.WriteString(ui.Error.Sprint("✗") + " " + ui.Highlight.Sprint(f.UUID) + " " +
			ui.Muted.Sprint(string(f.Kind)) + ": " + f.Err.Error() + "\n")
	}
	b.WriteString(ui.Error.Sprint("✗") +
		fmt.Sprintf(" Unlocked %d of %d saved volumes", result.Unlocked, result.Attempted))
	spinner.FinalMSG = b.String()

	return fmt.Errorf("%d of %d saved volumes failed to unlock", len(result.Failures), result.Attempted)
}
