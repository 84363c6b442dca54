package workflows

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ptao/Unlock-Redux/internal/audit"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// Operations filters entries by operation names (comma-separated).
	Operations string

	// Since filters entries after this date (YYYY-MM-DD format).
	Since string

	// Until filters entries before this date (YYYY-MM-DD format).
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	// Entries are the filtered audit log entries.
	Entries []audit.Entry

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int
}

// Log reads and filters the audit trail.
//
// Returns ErrNoAuditLog if auditing is disabled or no operations have been
// logged yet. Returns ErrInvalidDateFormat if a date filter is not YYYY-MM-DD.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	logPath := audit.LogPath()
	if logPath == "" {
		return nil, fmt.Errorf("%w: the audit trail is disabled", kerrors.ErrNoAuditLog)
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, kerrors.ErrNoAuditLog
	}
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	entries, err := audit.ParseEntries(data)
	if err != nil {
		return nil, fmt.Errorf("parsing audit log: %w", err)
	}

	result := &LogResult{
		TotalEntriesBeforeFilter: len(entries),
	}

	if len(entries) == 0 {
		result.Entries = entries
		return result, nil
	}

	filtered := entries

	if opts.Operations != "" {
		ops := strings.Split(opts.Operations, ",")
		for i := range ops {
			ops[i] = strings.TrimSpace(ops[i])
		}
		filtered = filterByOperations(filtered, ops)
	}

	if opts.Since != "" {
		sinceTime, err := time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		filtered = filterSince(filtered, sinceTime)
	}

	if opts.Until != "" {
		untilTime, err := time.Parse("2006-01-02", opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		// Include the entire day by setting to end of day.
		untilTime = untilTime.Add(24*time.Hour - time.Nanosecond)
		filtered = filterUntil(filtered, untilTime)
	}

	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	// The limit keeps the most recent entries in either ordering.
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		if opts.Reverse {
			filtered = filtered[:opts.Limit]
		} else {
			filtered = filtered[len(filtered)-opts.Limit:]
		}
	}

	result.Entries = filtered
	return result, nil
}

// filterByOperations filters entries by operation names.
func filterByOperations(entries []audit.Entry, ops []string) []audit.Entry {
	opSet := make(map[string]bool)
	for _, op := range ops {
		opSet[strings.ToLower(op)] = true
	}

	var result []audit.Entry
	for _, e := range entries {
		if opSet[strings.ToLower(e.Operation)] {
			result = append(result, e)
		}
	}
	return result
}

// filterSince filters entries to only include those at or after the given time.
func filterSince(entries []audit.Entry, since time.Time) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		t, err := parseTimestamp(e.Timestamp)
		if err != nil {
			continue
		}
		if !t.Before(since) {
			result = append(result, e)
		}
	}
	return result
}

// filterUntil filters entries to only include those at or before the given time.
func filterUntil(entries []audit.Entry, until time.Time) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		t, err := parseTimestamp(e.Timestamp)
		if err != nil {
			continue
		}
		if !t.After(until) {
			result = append(result, e)
		}
	}
	return result
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse("2006-01-02T15:04:05.000000Z", ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	return t, err
}

// FormatDate formats a timestamp string to YYYY-MM-DD format.
func FormatDate(ts string) string {
	t, err := parseTimestamp(ts)
	if err != nil {
		if len(ts) >= 10 {
			return ts[:10]
		}
		return ts
	}
	return t.Format("2006-01-02")
}

// FormatDateTime formats a timestamp string to YYYY-MM-DD HH:MM:SS format.
func FormatDateTime(ts string) string {
	t, err := parseTimestamp(ts)
	if err != nil {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatDetails formats the details column for a log entry.
func FormatDetails(e audit.Entry) string {
	var details string
	switch e.Operation {
	case "unlock":
		if e.Attempted > 0 {
			details = fmt.Sprintf("%d of %d unlocked", e.Unlocked, e.Attempted)
		}
	case "add":
		details = e.VolumeUUID
		if e.Kind != "" {
			details = fmt.Sprintf("%s (%s)", e.VolumeUUID, e.Kind)
		}
	case "delete":
		details = e.VolumeUUID
	case "replace":
		details = e.VolumeUUID
		if e.NewUUID != "" {
			details = fmt.Sprintf("%s -> %s", e.VolumeUUID, e.NewUUID)
		}
	}

	if e.Outcome == audit.OutcomeFailure && e.Detail != "" {
		if details == "" {
			return e.Detail
		}
		return details + ": " + e.Detail
	}
	return details
}

// FormatDetailsOneline formats the details column in compact form.
func FormatDetailsOneline(e audit.Entry) string {
	switch e.Operation {
	case "unlock":
		if e.Attempted == 0 {
			return ""
		}
		return fmt.Sprintf("%d/%d", e.Unlocked, e.Attempted)
	case "replace":
		if e.NewUUID != "" {
			return fmt.Sprintf("%s -> %s", e.VolumeUUID, e.NewUUID)
		}
		return e.VolumeUUID
	default:
		return e.VolumeUUID
	}
}
