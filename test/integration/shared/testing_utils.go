// Package shared contains testing utilities shared between integration tests.
// It swaps the active settings into temp directories, captures command
// output, and provides a fake disk manager so no test touches diskutil.
package shared

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/ptao/Unlock-Redux/cmd"
	"github.com/ptao/Unlock-Redux/internal/configs"
	"github.com/ptao/Unlock-Redux/internal/diskutil"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	logger "github.com/ptao/Unlock-Redux/internal/logging"
	"github.com/ptao/Unlock-Redux/internal/store"
)

// SetupTestEnvironment points the active settings at temp directories, wires
// the fake disk manager, and disables the platform preflight. Everything is
// restored on cleanup.
func SetupTestEnvironment(t *testing.T, disk *FakeDisk) *configs.Settings {
	t.Helper()

	original := configs.UnlockSettings
	t.Cleanup(func() {
		configs.UnlockSettings = original
		cmd.ResetGlobalState()
	})

	base := t.TempDir()
	// t.TempDir() creates the directory 0755 under the usual umask, but the
	// store refuses any credentials directory that grants group or other
	// access, so tighten it before pointing the settings at it.
	if err := os.Chmod(base, 0o700); err != nil {
		t.Fatalf("Failed to tighten the temp directory mode: %v", err)
	}
	configs.UnlockSettings = &configs.Settings{
		ConfigPath:    filepath.Join(base, "config.toml"),
		StorePath:     filepath.Join(base, "credentials.json"),
		StoreOwnerUID: os.Getuid(),
		DiskutilPath:  "diskutil",
		AuditLogPath:  filepath.Join(base, "audit.jsonl"),
	}

	cmd.ResetGlobalState()
	cmd.SetPreflight(func() error { return nil })
	if disk != nil {
		cmd.SetDiskManager(disk)
	}
	return configs.UnlockSettings
}

// RunCommand executes the real root command with the given arguments,
// capturing combined stdout and stderr.
func RunCommand(args ...string) (string, error) {
	return CaptureOutput(func() error {
		root := cmd.GetRootCmd()
		// An empty non-nil slice keeps cobra from falling back to os.Args.
		root.SetArgs(append([]string{}, args...))
		return root.Execute()
	})
}

// CaptureOutput captures both stdout and stderr during function execution.
func CaptureOutput(fn func() error) (string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	// Replace stdout and stderr
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	// Channel to collect output
	outputChan := make(chan string, 2)

	// Start goroutines to read from pipes
	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stdoutReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stderrReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	// Execute the function
	err := fn()

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	// Restore original stdout and stderr
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	// Collect output
	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}

// SeedRecords writes records straight into the credentials file, bypassing
// the CLI, for tests that need a known starting state.
func SeedRecords(t *testing.T, records []store.Record) {
	t.Helper()
	s := store.New(configs.UnlockSettings.StorePath, os.Getuid(), logger.Logger{})
	if err := s.Save(records); err != nil {
		t.Fatalf("Failed to seed the credentials file: %v", err)
	}
}

// LoadRecords reads the credentials file back for assertions.
func LoadRecords(t *testing.T) []store.Record {
	t.Helper()
	s := store.New(configs.UnlockSettings.StorePath, os.Getuid(), logger.Logger{})
	records, err := s.Load(store.FailOnCorrupt)
	if err != nil {
		t.Fatalf("Failed to read the credentials file back: %v", err)
	}
	return records
}

// FakeDisk implements workflows.DiskManager without touching diskutil.
// Volumes maps resolvable disk paths; Secrets maps each volume UUID to the
// passphrase its unlock accepts.
type FakeDisk struct {
	Volumes map[string]diskutil.Volume
	Secrets map[string]string

	MountErr error

	Unlocked  []string
	Mounted   []string
	Unmounted []string
}

func (f *FakeDisk) Resolve(ctx context.Context, target string) (diskutil.Volume, error) {
	vol, ok := f.Volumes[target]
	if !ok {
		return diskutil.Volume{}, fmt.Errorf("%w for %s", kerrors.ErrNoVolumeUUID, target)
	}
	return vol, nil
}

func (f *FakeDisk) Unlock(ctx context.Context, kind diskutil.Kind, uuid, passphrase string) error {
	if f.Secrets[uuid] != passphrase {
		return &diskutil.CommandError{
			Args:     []string{"apfs", "unlockVolume", uuid, "-passphrase", "[redacted]"},
			ExitCode: 1,
			Stderr:   "passphrase incorrect",
		}
	}
	f.Unlocked = append(f.Unlocked, uuid)
	return nil
}

func (f *FakeDisk) Mount(ctx context.Context, uuid string) error {
	if f.MountErr != nil {
		return f.MountErr
	}
	f.Mounted = append(f.Mounted, uuid)
	return nil
}

func (f *FakeDisk) Unmount(ctx context.Context, uuid string) error {
	f.Unmounted = append(f.Unmounted, uuid)
	return nil
}
