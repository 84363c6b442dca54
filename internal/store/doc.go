// Package store persists volume credentials for boot-time unlocking.
//
// Credentials live in a single JSON document: an array of one-key objects
// mapping a volume UUID to its passphrase and kind. The file holds secrets in
// the clear, so the package refuses to read it unless both the file and its
// directory are owned by the expected uid and grant nothing to group or
// other. Every save rewrites the whole document through a temp file and a
// rename in the same directory, so a crash can never leave it half-written.
//
// What happens when the file exists but cannot be decoded is an explicit,
// named choice: see CorruptPolicy.
package store
