// Package diskutil wraps the macOS diskutil command behind typed results.
//
// Every invocation distinguishes three failure shapes: the binary could not
// be launched (exec.ErrNotFound stays in the error chain), the command ran
// but exited non-zero (*CommandError with exit code and stderr), and the
// command succeeded but its output was not usable (resolution sentinels).
// Passphrase arguments never reach logs or error text.
package diskutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	logger "github.com/ptao/Unlock-Redux/internal/logging"
)

// Kind identifies which unlock command sequence applies to a volume.
type Kind string

const (
	// CoreStorage volumes (legacy encrypted HFS+ containers) unlock with
	// `diskutil coreStorage unlockVolume` and need a separate mount.
	CoreStorage Kind = "CoreStorage"

	// APFS volumes unlock with `diskutil apfs unlockVolume`; mounting is
	// part of the unlock.
	APFS Kind = "APFS"
)

// ParseKind maps an operator-supplied string to a Kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch {
	case strings.EqualFold(s, string(CoreStorage)):
		return CoreStorage, nil
	case strings.EqualFold(s, string(APFS)):
		return APFS, nil
	}
	return "", fmt.Errorf("%w %q", kerrors.ErrUnknownKind, s)
}

// Volume is a resolved disk target.
type Volume struct {
	UUID string
	Kind Kind
}

// Client runs diskutil commands.
type Client struct {
	// Bin is the diskutil binary to invoke.
	Bin string

	// Logger receives redacted command traces at debug level.
	Logger logger.Logger
}

// NewClient returns a Client for the given binary. An empty bin means
// "diskutil" on the PATH.
func NewClient(bin string, log logger.Logger) *Client {
	if bin == "" {
		bin = "diskutil"
	}
	return &Client{Bin: bin, Logger: log}
}

// CommandError reports a diskutil invocation that ran and exited non-zero.
// Args holds the redacted argv, safe for display.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("diskutil %s exited with status %d", strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// uuidPattern matches the identifier line of a `diskutil info` report.
var uuidPattern = regexp.MustCompile(`Disk / Partition UUID:\s*(\S+)`)

// run executes diskutil with args and returns its stdout.
func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	display := redactArgs(args)
	c.Logger.Debugf("Running %s %s", c.Bin, strings.Join(display, " "))

	cmd := execCommand(ctx, c.Bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), &CommandError{
				Args:     display,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		// Launch failures, including a missing binary (exec.ErrNotFound).
		return nil, fmt.Errorf("failed to run %s %s: %w", c.Bin, strings.Join(display, " "), err)
	}
	return stdout.Bytes(), nil
}

// Info returns the raw `diskutil info` report for a disk path or UUID.
func (c *Client) Info(ctx context.Context, target string) (string, error) {
	out, err := c.run(ctx, "info", target)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Resolve maps a disk target (a /dev/<disk> or /Volumes/<name> path, or
// anything else `diskutil info` accepts) to its volume UUID and kind.
// It is a pure query: repeatable, no side effects.
func (c *Client) Resolve(ctx context.Context, target string) (Volume, error) {
	report, err := c.Info(ctx, target)
	if err != nil {
		return Volume{}, err
	}

	match := uuidPattern.FindStringSubmatch(report)
	if match == nil {
		return Volume{}, fmt.Errorf("%w for %s", kerrors.ErrNoVolumeUUID, target)
	}
	vol := Volume{UUID: match[1]}

	// HFS+ is checked first: a CoreStorage report may mention APFS in
	// unrelated fields, never the other way around.
	switch {
	case strings.Contains(report, "HFS+"):
		vol.Kind = CoreStorage
	case strings.Contains(report, "APFS"):
		vol.Kind = APFS
	default:
		return Volume{}, fmt.Errorf("%s is %w", target, kerrors.ErrUnsupportedFilesystem)
	}

	c.Logger.Debugf("Resolved %s to volume %s (%s)", target, vol.UUID, vol.Kind)
	return vol, nil
}

// Unlock makes the volume's decrypted content available using the given
// passphrase. APFS volumes mount as part of unlocking; CoreStorage volumes
// need a separate Mount afterwards.
func (c *Client) Unlock(ctx context.Context, kind Kind, uuid, passphrase string) error {
	var args []string
	switch kind {
	case CoreStorage:
		args = []string{"coreStorage", "unlockVolume", uuid, "-passphrase", passphrase}
	case APFS:
		args = []string{"apfs", "unlockVolume", uuid, "-passphrase", passphrase}
	default:
		return fmt.Errorf("%w %q", kerrors.ErrUnknownKind, kind)
	}
	_, err := c.run(ctx, args...)
	return err
}

// Mount mounts an unlocked volume.
func (c *Client) Mount(ctx context.Context, uuid string) error {
	_, err := c.run(ctx, "mount", uuid)
	return err
}

// Unmount unmounts a volume. Failures are common (volume busy, already
// unmounted) and callers treat them as advisory, never as a correctness
// signal.
func (c *Client) Unmount(ctx context.Context, uuid string) error {
	_, err := c.run(ctx, "unmount", uuid)
	return err
}

// redactArgs returns a copy of argv with any passphrase value masked.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "-passphrase" {
			out[i+1] = "[redacted]"
		}
	}
	return out
}
