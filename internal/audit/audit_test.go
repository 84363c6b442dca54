package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ptao/Unlock-Redux/internal/configs"

	"github.com/google/uuid"
)

// setupAuditSettings points the audit trail at logPath and restores the
// previous settings when the test ends.
func setupAuditSettings(t *testing.T, logPath string) {
	t.Helper()
	originalSettings := configs.UnlockSettings
	configs.UnlockSettings = &configs.Settings{AuditLogPath: logPath}
	t.Cleanup(func() {
		configs.UnlockSettings = originalSettings
	})
}

func TestLog_CreatesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")
	setupAuditSettings(t, logPath)

	Log(Entry{User: "root", Operation: "add", Outcome: OutcomeSuccess})

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Fatalf("Audit log file was not created")
	}
}

func TestLog_CreatesDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "unlock-redux", "audit.jsonl")
	setupAuditSettings(t, logPath)

	Log(Entry{User: "root", Operation: "execute"})

	info, err := os.Stat(filepath.Dir(logPath))
	if err != nil {
		t.Fatalf("Audit log directory was not created: %v", err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Errorf("Expected directory mode 0700, got %04o", info.Mode().Perm())
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")
	setupAuditSettings(t, logPath)

	Log(Entry{User: "root", Operation: "add"})
	Log(Entry{User: "root", Operation: "delete"})
	Log(Entry{User: "root", Operation: "execute"})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected 3 lines, got %d", len(lines))
	}
}

func TestLog_ValidJSON(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")
	setupAuditSettings(t, logPath)

	Log(Entry{
		User:       "root",
		Operation:  "replace",
		Outcome:    OutcomeSuccess,
		VolumeUUID: "AAAA-1111",
		Kind:       "APFS",
		NewUUID:    "BBBB-2222",
	})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	var parsed Entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &parsed); err != nil {
		t.Fatalf("Entry is not valid JSON: %v", err)
	}

	if parsed.Operation != "replace" {
		t.Errorf("Expected operation replace, got %s", parsed.Operation)
	}
	if parsed.VolumeUUID != "AAAA-1111" || parsed.NewUUID != "BBBB-2222" {
		t.Errorf("Expected both volume fields back, got %+v", parsed)
	}
}

func TestLog_TimestampFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")
	setupAuditSettings(t, logPath)

	// Log an entry without timestamp (should be auto-set).
	Log(Entry{User: "root", Operation: "add"})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	var parsed Entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &parsed); err != nil {
		t.Fatalf("Entry is not valid JSON: %v", err)
	}

	// Check timestamp format: 2006-01-02T15:04:05.000000Z.
	if parsed.Timestamp == "" {
		t.Errorf("Timestamp should be auto-set")
	}
	if !strings.HasSuffix(parsed.Timestamp, "Z") {
		t.Errorf("Timestamp should end with Z, got %s", parsed.Timestamp)
	}
	if !strings.Contains(parsed.Timestamp, ".") {
		t.Errorf("Timestamp should contain microseconds, got %s", parsed.Timestamp)
	}
}

func TestLog_OmitsEmptyFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")
	setupAuditSettings(t, logPath)

	Log(Entry{User: "root", Operation: "uuid", Outcome: OutcomeSuccess})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	line := strings.TrimSpace(string(data))
	for _, field := range []string{`"volume_uuid"`, `"new_uuid"`, `"detail"`, `"attempted"`} {
		if strings.Contains(line, field) {
			t.Errorf("Empty %s field should be omitted", field)
		}
	}
}

func TestLog_DisabledTrail(t *testing.T) {
	setupAuditSettings(t, "")

	// Log should silently do nothing.
	Log(Entry{User: "root", Operation: "add"})
}

func TestNewEntry_PopulatesIdentity(t *testing.T) {
	entry := NewEntry("delete")

	if entry.Operation != "delete" {
		t.Errorf("Expected operation delete, got %s", entry.Operation)
	}
	if _, err := uuid.Parse(entry.ID); err != nil {
		t.Errorf("Expected a parseable entry id, got %q: %v", entry.ID, err)
	}
	if entry.Timestamp == "" {
		t.Error("Expected timestamp to be set")
	}
	if entry.User == "" {
		t.Error("Expected user to be set")
	}
}

func TestParseEntries_ValidData(t *testing.T) {
	data := []byte(`{"id":"a","ts":"2026-08-25T10:30:00.123456Z","user":"root","op":"add","outcome":"success"}
{"id":"b","ts":"2026-08-25T10:35:00.456789Z","user":"root","op":"execute","outcome":"failure"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Operation != "add" {
		t.Errorf("Expected first operation add, got %s", entries[0].Operation)
	}
	if entries[1].Outcome != OutcomeFailure {
		t.Errorf("Expected second outcome failure, got %s", entries[1].Outcome)
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"id":"a","ts":"2026-08-25T10:30:00.123456Z","user":"root","op":"add"}
this is not valid json
{"id":"b","ts":"2026-08-25T10:35:00.456789Z","user":"root","op":"delete"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if len(entries) != 2 {
		t.Errorf("Expected 2 valid entries (malformed should be skipped), got %d", len(entries))
	}
}

func TestParseEntries_EmptyData(t *testing.T) {
	entries, err := ParseEntries([]byte{})
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries for empty data, got %v", entries)
	}
}

func TestReadEntries_MissingFile(t *testing.T) {
	setupAuditSettings(t, filepath.Join(t.TempDir(), "audit.jsonl"))

	entries, err := ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if entries != nil {
		t.Errorf("Expected nil entries for a missing log, got %v", entries)
	}
}
