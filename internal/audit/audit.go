package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ptao/Unlock-Redux/internal/configs"
	"github.com/ptao/Unlock-Redux/internal/utils"

	"github.com/google/uuid"
)

// Outcome values for an Entry.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Entry represents a single audit log entry.
type Entry struct {
	ID        string `json:"id"`      // Generated entry identifier.
	Timestamp string `json:"ts"`      // RFC3339 with microseconds.
	User      string `json:"user"`    // Username of the invoking administrator.
	Operation string `json:"op"`      // Operation name.
	Outcome   string `json:"outcome"` // OutcomeSuccess or OutcomeFailure.

	// Optional fields depending on operation.
	VolumeUUID string `json:"volume_uuid,omitempty"` // Volume acted on.
	Kind       string `json:"kind,omitempty"`        // CoreStorage or APFS.
	NewUUID    string `json:"new_uuid,omitempty"`    // For replace.
	Detail     string `json:"detail,omitempty"`      // Short failure reason, never a secret.
	Attempted  int    `json:"attempted,omitempty"`   // For execute.
	Unlocked   int    `json:"unlocked,omitempty"`    // For execute.
	Failed     int    `json:"failed,omitempty"`      // For execute.
}

// NewEntry returns an Entry for op with the identifier, timestamp, and
// invoking user already populated.
func NewEntry(op string) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: timestamp(),
		Operation: op,
	}

	if username, err := utils.GetUsername(); err == nil {
		entry.User = username
	}
	return entry
}

// Log appends an entry to the audit log.
// If logging fails, it does nothing: operations should not fail just because
// audit logging failed.
func Log(entry Entry) {
	logPath := LogPath()
	if logPath == "" {
		// Audit trail disabled.
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = timestamp()
	}

	// The log lives next to the credentials file; keep its directory private.
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	// Write entry with newline.
	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the path to the audit log file.
// Returns empty string when the audit trail is disabled.
func LogPath() string {
	return configs.UnlockSettings.AuditLogPath
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist or the trail is disabled.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Skip malformed entries.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
}
