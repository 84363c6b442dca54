package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"testing"

	"github.com/ptao/Unlock-Redux/internal/diskutil"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	"github.com/ptao/Unlock-Redux/internal/store"
)

func TestUnlockAll_EmptyStore(t *testing.T) {
	m := newTestManager(t, &fakeDisk{})

	result, err := m.UnlockAll(context.Background())
	if err != nil {
		t.Fatalf("UnlockAll failed: %v", err)
	}
	if result.Attempted != 0 || result.Unlocked != 0 || len(result.Failures) != 0 {
		t.Errorf("Expected an empty result for an absent store, got %+v", result)
	}
}

func TestUnlockAll_UnlocksEveryKind(t *testing.T) {
	disk := &fakeDisk{
		secrets: map[string]string{
			"AAAA-1111": "apfs pw",
			"BBBB-2222": "cs pw",
		},
	}
	m := newTestManager(t, disk)
	seedStore(t, m, []store.Record{
		{UUID: "AAAA-1111", Secret: "apfs pw", Kind: diskutil.APFS},
		{UUID: "BBBB-2222", Secret: "cs pw", Kind: diskutil.CoreStorage},
	})

	result, err := m.UnlockAll(context.Background())
	if err != nil {
		t.Fatalf("UnlockAll failed: %v", err)
	}
	if result.Attempted != 2 || result.Unlocked != 2 || len(result.Failures) != 0 {
		t.Fatalf("Expected both volumes unlocked, got %+v", result)
	}

	if !reflect.DeepEqual(disk.unlocked, []string{"AAAA-1111", "BBBB-2222"}) {
		t.Errorf("Expected unlocks in store order, got %v", disk.unlocked)
	}
	// Only the CoreStorage volume needs an explicit mount.
	if !reflect.DeepEqual(disk.mounted, []string{"BBBB-2222"}) {
		t.Errorf("Expected only the CoreStorage volume mounted, got %v", disk.mounted)
	}
}

func TestUnlockAll_ContinuesPastFailures(t *testing.T) {
	disk := &fakeDisk{
		secrets: map[string]string{
			"AAAA-1111": "pw-a",
			"CCCC-3333": "pw-c",
		},
	}
	m := newTestManager(t, disk)
	seedStore(t, m, []store.Record{
		{UUID: "AAAA-1111", Secret: "pw-a", Kind: diskutil.APFS},
		{UUID: "BBBB-2222", Secret: "stale pw", Kind: diskutil.APFS},
		{UUID: "CCCC-3333", Secret: "pw-c", Kind: diskutil.APFS},
	})

	result, err := m.UnlockAll(context.Background())
	if err != nil {
		t.Fatalf("UnlockAll failed: %v", err)
	}

	if result.Attempted != 3 || result.Unlocked != 2 {
		t.Errorf("Expected 3 attempted and 2 unlocked, got %+v", result)
	}
	if len(result.Failures) != 1 || result.Failures[0].UUID != "BBBB-2222" {
		t.Fatalf("Expected one failure for BBBB-2222, got %+v", result.Failures)
	}

	var cmdErr *diskutil.CommandError
	if !errors.As(result.Failures[0].Err, &cmdErr) {
		t.Errorf("Expected the typed command result in the failure, got %v", result.Failures[0].Err)
	}

	// The record after the failing one must still have been tried.
	if !reflect.DeepEqual(disk.unlocked, []string{"AAAA-1111", "CCCC-3333"}) {
		t.Errorf("Expected the batch to continue past the failure, got %v", disk.unlocked)
	}
}

func TestUnlockAll_MountFailureFailsTheRecord(t *testing.T) {
	disk := &fakeDisk{
		secrets:  map[string]string{"BBBB-2222": "pw"},
		mountErr: fmt.Errorf("mount failed"),
	}
	m := newTestManager(t, disk)
	seedStore(t, m, []store.Record{
		{UUID: "BBBB-2222", Secret: "pw", Kind: diskutil.CoreStorage},
	})

	result, err := m.UnlockAll(context.Background())
	if err != nil {
		t.Fatalf("UnlockAll failed: %v", err)
	}
	if result.Unlocked != 0 || len(result.Failures) != 1 {
		t.Errorf("Expected the unmountable volume to count as failed, got %+v", result)
	}
}

func TestUnlockAll_CorruptStoreTreatedAsEmpty(t *testing.T) {
	m := newTestManager(t, &fakeDisk{})
	corruptStore(t, m)

	result, err := m.UnlockAll(context.Background())
	if err != nil {
		t.Fatalf("Expected a corrupt store to be treated as empty, got: %v", err)
	}
	if result.Attempted != 0 {
		t.Errorf("Expected no attempts, got %+v", result)
	}
}

func TestUnlockAll_IntegrityFailureStopsTheRun(t *testing.T) {
	m := newTestManager(t, &fakeDisk{})
	seedStore(t, m, []store.Record{
		{UUID: "AAAA-1111", Secret: "pw", Kind: diskutil.APFS},
	})
	if err := os.Chmod(m.Store.Path, 0o644); err != nil {
		t.Fatalf("Failed to chmod store file: %v", err)
	}

	_, err := m.UnlockAll(context.Background())
	if !errors.Is(err, kerrors.ErrStoreIntegrity) {
		t.Fatalf("Expected ErrStoreIntegrity, got: %v", err)
	}
}

func TestUnlockAll_DoesNotMutateTheStore(t *testing.T) {
	disk := &fakeDisk{secrets: map[string]string{"AAAA-1111": "pw"}}
	m := newTestManager(t, disk)
	seedStore(t, m, []store.Record{
		{UUID: "AAAA-1111", Secret: "pw", Kind: diskutil.APFS},
		{UUID: "BBBB-2222", Secret: "stale", Kind: diskutil.APFS},
	})

	before, err := os.ReadFile(m.Store.Path)
	if err != nil {
		t.Fatalf("Failed to read store file: %v", err)
	}

	if _, err := m.UnlockAll(context.Background()); err != nil {
		t.Fatalf("UnlockAll failed: %v", err)
	}

	after, err := os.ReadFile(m.Store.Path)
	if err != nil {
		t.Fatalf("Failed to read store file: %v", err)
	}
	if string(before) != string(after) {
		t.Error("UnlockAll must never change the credentials file")
	}
}
