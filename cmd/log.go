package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ptao/Unlock-Redux/internal/audit"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	"github.com/ptao/Unlock-Redux/internal/ui"
	"github.com/ptao/Unlock-Redux/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logOperation string
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation (comma-separated: unlock, add, delete, replace)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")

	rootCmd.AddCommand(logCmd)
}

// resetLogCommandState resets the log command's flag state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logOperation = ""
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit trail",
	Long: `Displays the audit trail of credential operations.

Shows who ran what and when, with the outcome of each operation. Use the
filters to narrow down the results.

Examples:
  unlock-redux log                       # Full trail
  unlock-redux log -n 10                 # Last 10 entries
  unlock-redux log --reverse             # Most recent first
  unlock-redux log --operation unlock    # Boot unlocks only
  unlock-redux log --since 2026-01-01    # Filter by date
  unlock-redux log --json                # JSON output`,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	spinner, cleanup := startSpinner("Loading the audit trail...", verbose)
	defer cleanup()

	opts := workflows.LogOptions{
		Limit:      logLimit,
		Reverse:    logReverse,
		Operations: logOperation,
		Since:      logSince,
		Until:      logUntil,
	}

	result, err := workflows.Log(cmd.Context(), opts)
	if err != nil {
		spinner.FinalMSG = formatLogError(err)
		if isLogUnexpectedError(err) {
			return err
		}
		return nil
	}

	Logger.Debugf("Parsed %d entries from the audit trail", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if len(result.Entries) == 0 {
		spinner.FinalMSG = ""
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("No audit trail entries found.")
		} else {
			fmt.Println("No audit trail entries found matching the filters.")
		}
		return nil
	}

	spinner.FinalMSG = ""
	if logJSON {
		return outputLogJSON(result.Entries)
	}
	if logOneline {
		outputLogOneline(result.Entries)
		return nil
	}
	outputLogDefault(result.Entries)
	return nil
}

// formatLogError formats a log error for display to the user.
func formatLogError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNoAuditLog):
		return ui.Info.Sprint("ℹ") + " No audit trail found. Operations are logged after running any command."

	case errors.Is(err, kerrors.ErrInvalidDateFormat):
		return ui.Error.Sprint("✗") + " " + err.Error()

	default:
		return ui.Error.Sprint("✗") + " Failed to read the audit trail: " + err.Error()
	}
}

// isLogUnexpectedError returns true if the error is unexpected and should
// cause a non-zero exit.
func isLogUnexpectedError(err error) bool {
	switch {
	case errors.Is(err, kerrors.ErrNoAuditLog),
		errors.Is(err, kerrors.ErrInvalidDateFormat):
		return false
	default:
		return true
	}
}

func outputLogJSON(entries []audit.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func outputLogOneline(entries []audit.Entry) {
	for _, e := range entries {
		date := workflows.FormatDate(e.Timestamp)
		details := workflows.FormatDetailsOneline(e)
		fmt.Printf("%s %s %s %s %s\n", date, e.User, e.Operation, e.Outcome, details)
	}
}

func outputLogDefault(entries []audit.Entry) {
	// Plain columns; color codes would break the fixed-width alignment.
	for _, e := range entries {
		datetime := workflows.FormatDateTime(e.Timestamp)
		details := workflows.FormatDetails(e)
		fmt.Printf("%-19s  %-10s  %-8s  %-9s  %s\n", datetime, e.User, e.Operation, e.Outcome, details)
	}
}
