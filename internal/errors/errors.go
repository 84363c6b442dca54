package errors

import "errors"

// Platform errors indicate the tool is running outside its supported environment.
var (
	// ErrUnsupportedPlatform indicates the host operating system is not macOS.
	ErrUnsupportedPlatform = errors.New("this tool only works on macOS")

	// ErrRootRequired indicates the process is not running as root.
	ErrRootRequired = errors.New("this tool must be run as root")
)

// Store errors indicate problems with the credentials file itself.
var (
	// ErrStoreIntegrity indicates the credentials file has the wrong owner or permissions.
	ErrStoreIntegrity = errors.New("credentials file does not have the correct owner and permissions")

	// ErrStoreCorrupt indicates the credentials file exists but its content could not be parsed.
	ErrStoreCorrupt = errors.New("credentials file content is not valid")
)

// Resolution errors indicate a disk target could not be mapped to a volume.
var (
	// ErrNoVolumeUUID indicates the diskutil report contained no volume UUID.
	ErrNoVolumeUUID = errors.New("no volume UUID found in diskutil output")

	// ErrUnsupportedFilesystem indicates the target is neither a CoreStorage disk nor an APFS volume.
	ErrUnsupportedFilesystem = errors.New("neither a CoreStorage disk nor an APFS volume")

	// ErrUnknownKind indicates a volume kind outside the supported set.
	ErrUnknownKind = errors.New("unknown volume kind")
)

// Audit errors indicate problems reading the audit trail.
var (
	// ErrNoAuditLog indicates no audit log exists yet or the trail is disabled.
	ErrNoAuditLog = errors.New("no audit log found")

	// ErrInvalidDateFormat indicates a date filter that is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")
)

// Credential errors indicate a lifecycle operation that could not proceed.
var (
	// ErrDuplicateVolume indicates the volume UUID is already saved.
	ErrDuplicateVolume = errors.New("volume UUID is already saved")

	// ErrVolumeNotFound indicates the volume UUID is not saved.
	ErrVolumeNotFound = errors.New("volume UUID is not saved")

	// ErrSecretMismatch indicates the supplied password does not match the saved record.
	ErrSecretMismatch = errors.New("password does not match the saved record")

	// ErrVerificationFailed indicates a candidate password could not be confirmed.
	ErrVerificationFailed = errors.New("password could not be verified")
)
