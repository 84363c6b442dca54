// Package audit provides an audit trail for administrative operations.
//
// Every credential mutation (add, delete, replace) and every bulk unlock run
// is recorded so an administrator can reconstruct when the credential set
// changed and how boot-time unlocking behaved.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line), by
// default at:
//
//	/Library/PrivilegedHelperTools/unlock-redux/audit.jsonl
//
// Each entry contains:
//   - Generated entry identifier
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Invoking username
//   - Operation name and outcome
//   - Operation-specific details (volume UUID, kind, unlock counters)
//
// Secrets never appear in audit entries.
//
// # Usage
//
// Create an entry with the user info pre-populated:
//
//	entry := audit.NewEntry("add")
//	entry.VolumeUUID = volume.UUID
//	entry.Outcome = audit.OutcomeSuccess
//	audit.Log(entry)
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error. Unlocking a volume at boot
// must never fail just because audit logging did.
//
// # Reading Logs
//
// Use ReadEntries() to parse the audit log for display or analysis.
// Malformed entries are silently skipped to handle partial writes.
package audit
