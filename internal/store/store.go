package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ptao/Unlock-Redux/internal/diskutil"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	logger "github.com/ptao/Unlock-Redux/internal/logging"

	"golang.org/x/sys/unix"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// Record is one saved credential: the volume it belongs to, the passphrase
// that unlocks it, and the volume kind that selects the unlock command.
type Record struct {
	UUID   string
	Secret string
	Kind   diskutil.Kind
}

// CorruptPolicy selects what Load does when the credentials file exists and
// passes the integrity check but its content cannot be decoded.
type CorruptPolicy int

const (
	// TreatCorruptAsEmpty makes Load return an empty record set. The boot
	// path uses it: a damaged file must never block the volumes that could
	// still be recovered by re-adding them.
	TreatCorruptAsEmpty CorruptPolicy = iota

	// FailOnCorrupt makes Load return an error wrapping ErrStoreCorrupt.
	// Mutating operations use it so they never overwrite a file an operator
	// may still want to inspect.
	FailOnCorrupt
)

// Store reads and writes the credentials file.
type Store struct {
	// Path is the credentials file location.
	Path string

	// OwnerUID is the uid that must own the credentials file and its
	// directory, normally root.
	OwnerUID int

	Logger logger.Logger
}

// New returns a Store for the credentials file at path, owned by ownerUID.
func New(path string, ownerUID int, log logger.Logger) *Store {
	return &Store{Path: path, OwnerUID: ownerUID, Logger: log}
}

// Load reads all saved records.
//
// A missing file means no credentials have been added yet and yields an empty
// set with no error. A file owned by the wrong uid, or one whose file or
// directory grants any access to group or other, yields an error wrapping
// ErrStoreIntegrity regardless of policy. Undecodable content is handled
// according to policy.
func (s *Store) Load(policy CorruptPolicy) ([]Record, error) {
	exists, err := s.integrityCheck()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		if policy == TreatCorruptAsEmpty {
			s.Logger.WarnfAlways("Credentials file %s is unreadable and is being treated as empty: %v", s.Path, err)
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// Save writes records as the complete new content of the credentials file.
//
// The document is written to a temp file created 0600 in the credentials
// directory and then renamed over the destination, so the file is never
// observable half-written or with loose permissions. The directory is created
// 0700 if absent and its mode is re-asserted on every save.
func (s *Store) Save(records []Record) error {
	data, err := encodeRecords(records)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := os.Chmod(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to set credentials directory permissions: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "credentials-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary credentials file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once the rename has happened

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set credentials file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace credentials file: %w", err)
	}
	return nil
}

// Find returns the record for uuid and whether one exists.
func Find(records []Record, uuid string) (Record, bool) {
	for _, r := range records {
		if r.UUID == uuid {
			return r, true
		}
	}
	return Record{}, false
}

// integrityCheck verifies that the credentials file and its directory are
// owned by the expected uid and grant no group or other access. It reports
// false with no error when the file does not exist.
func (s *Store) integrityCheck() (bool, error) {
	if err := s.checkOwner(s.Path); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return false, nil
		}
		return false, err
	}
	if err := s.checkOwner(filepath.Dir(s.Path)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) checkOwner(path string) error {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if int(st.Uid) != s.OwnerUID {
		return fmt.Errorf("%w: %s is owned by uid %d, not uid %d", kerrors.ErrStoreIntegrity, path, st.Uid, s.OwnerUID)
	}
	if st.Mode&0o077 != 0 {
		return fmt.Errorf("%w: %s grants group or other access (mode %04o)", kerrors.ErrStoreIntegrity, path, st.Mode&0o777)
	}
	return nil
}

// decodeRecords parses the store document: a JSON array of single-key objects
// mapping a volume UUID to a [secret, kind] pair. Malformed records are
// reported by index only, since a damaged file may carry a secret in any
// position.
func decodeRecords(data []byte) ([]Record, error) {
	var raw []map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrStoreCorrupt, err)
	}

	records := make([]Record, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, entry := range raw {
		if len(entry) != 1 {
			return nil, fmt.Errorf("%w: record %d is not a single-volume object", kerrors.ErrStoreCorrupt, i)
		}
		for uuid, fields := range entry {
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: record %d does not hold exactly a secret and a kind", kerrors.ErrStoreCorrupt, i)
			}
			kind := diskutil.Kind(fields[1])
			if kind != diskutil.CoreStorage && kind != diskutil.APFS {
				return nil, fmt.Errorf("%w: record %d has an unrecognized volume kind", kerrors.ErrStoreCorrupt, i)
			}
			if seen[uuid] {
				return nil, fmt.Errorf("%w: record %d repeats an earlier volume UUID", kerrors.ErrStoreCorrupt, i)
			}
			seen[uuid] = true
			records = append(records, Record{UUID: uuid, Secret: fields[0], Kind: kind})
		}
	}
	return records, nil
}

func encodeRecords(records []Record) ([]byte, error) {
	raw := make([]map[string][]string, 0, len(records))
	for _, r := range records {
		raw = append(raw, map[string][]string{r.UUID: {r.Secret, string(r.Kind)}})
	}
	return json.Marshal(raw)
}
