package root_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ptao/Unlock-Redux/cmd"
	kerrors "github.com/ptao/Unlock-Redux/internal/errors"
	"github.com/ptao/Unlock-Redux/internal/platform"
	"github.com/ptao/Unlock-Redux/test/integration/shared"
)

// TestRootIntegration contains integration tests for the root command:
// the platform preflight, its exemptions, and the configuration overrides.
func TestRootIntegration(t *testing.T) {
	t.Run("RefusesUnsupportedHost", testRootRefusesUnsupportedHost)
	t.Run("VersionSkipsPreflight", testRootVersionSkipsPreflight)
	t.Run("HelpSkipsPreflight", testRootHelpSkipsPreflight)
	t.Run("CompletionSkipsPreflight", testRootCompletionSkipsPreflight)
	t.Run("StoreFlagOverridesLocation", testRootStoreFlagOverridesLocation)
	t.Run("ConfigFileOverridesStorePath", testRootConfigFileOverridesStorePath)
	t.Run("ConfigFileSyntaxErrorFails", testRootConfigFileSyntaxErrorFails)
	t.Run("ConfigFileCanDisableAuditTrail", testRootConfigFileCanDisableAuditTrail)
}

// testRootRefusesUnsupportedHost tests that the real preflight refuses to
// run commands on anything but macOS as root.
func testRootRefusesUnsupportedHost(t *testing.T) {
	if runtime.GOOS == "darwin" && os.Geteuid() == 0 {
		t.Skip("the preflight passes when running as root on macOS")
	}

	shared.SetupTestEnvironment(t, &shared.FakeDisk{})
	cmd.SetPreflight(platform.Check)

	_, err := shared.RunCommand("execute")
	if err == nil {
		t.Errorf("Expected the preflight to refuse this host")
	} else if !errors.Is(err, kerrors.ErrUnsupportedPlatform) && !errors.Is(err, kerrors.ErrRootRequired) {
		t.Errorf("Expected a platform or privilege error, got: %v", err)
	}
}

// testRootVersionSkipsPreflight tests that --version works on any host.
func testRootVersionSkipsPreflight(t *testing.T) {
	shared.SetupTestEnvironment(t, &shared.FakeDisk{})
	cmd.SetPreflight(func() error { return errors.New("the preflight must not run") })

	output, err := shared.RunCommand("--version")
	if err != nil {
		t.Errorf("Command failed unexpectedly: %v", err)
	}

	if !strings.Contains(output, "unlock-redux version") {
		t.Errorf("Expected the version line not found in output: %s", output)
	}
}

// testRootHelpSkipsPreflight tests that help works on any host.
func testRootHelpSkipsPreflight(t *testing.T) {
	shared.SetupTestEnvironment(t, &shared.FakeDisk{})
	cmd.SetPreflight(func() error { return errors.New("the preflight must not run") })

	output, err := shared.RunCommand("help")
	if err != nil {
		t.Errorf("Command failed unexpectedly: %v", err)
	}

	if !strings.Contains(output, "Available Commands") {
		t.Errorf("Expected the help text not found in output: %s", output)
	}
	if !strings.Contains(output, "add") || !strings.Contains(output, "execute") {
		t.Errorf("Expected the command list in the help text: %s", output)
	}
}

// testRootCompletionSkipsPreflight tests that shell completion generation
// works on any host.
func testRootCompletionSkipsPreflight(t *testing.T) {
	shared.SetupTestEnvironment(t, &shared.FakeDisk{})
	cmd.SetPreflight(func() error { return errors.New("the preflight must not run") })

	output, err := shared.RunCommand("completion", "bash")
	if err != nil {
		t.Errorf("Command failed unexpectedly: %v", err)
	}

	if !strings.Contains(output, "unlock-redux") {
		t.Errorf("Expected the completion script not found in output: %s", output)
	}
}

// testRootStoreFlagOverridesLocation tests that --store moves the
// credentials file for the run.
func testRootStoreFlagOverridesLocation(t *testing.T) {
	disk := &shared.FakeDisk{
		Secrets: map[string]string{"AAAA-1111": "hunter2"},
	}
	settings := shared.SetupTestEnvironment(t, disk)

	// The flag rewrites the active settings, so remember the default first.
	defaultStore := settings.StorePath
	altStore := filepath.Join(filepath.Dir(defaultStore), "alt", "credentials.json")

	output, err := shared.RunCommand("add", "-u", "AAAA-1111", "-t", "APFS", "-p", "hunter2", "--store", altStore)
	if err != nil {
		t.Errorf("Command failed unexpectedly: %v", err)
	}

	if !strings.Contains(output, "Added disk with UUID AAAA-1111") {
		t.Errorf("Expected 'Added disk' message not found in output: %s", output)
	}
	if _, err := os.Stat(altStore); err != nil {
		t.Errorf("Expected the credentials file at the --store path: %v", err)
	}
	if _, err := os.Stat(defaultStore); !os.IsNotExist(err) {
		t.Errorf("Expected no credentials file at the default path")
	}

	records := shared.LoadRecords(t)
	if len(records) != 1 || records[0].UUID != "AAAA-1111" {
		t.Errorf("Expected the record in the relocated store, got: %+v", records)
	}
}

// testRootConfigFileOverridesStorePath tests that the TOML config file can
// move the credentials file.
func testRootConfigFileOverridesStorePath(t *testing.T) {
	disk := &shared.FakeDisk{
		Secrets: map[string]string{"AAAA-1111": "hunter2"},
	}
	settings := shared.SetupTestEnvironment(t, disk)

	configured := filepath.Join(filepath.Dir(settings.StorePath), "configured.json")
	config := fmt.Sprintf("[store]\npath = %q\n", configured)
	if err := os.WriteFile(settings.ConfigPath, []byte(config), 0o600); err != nil {
		t.Fatalf("Failed to write the config file: %v", err)
	}

	if _, err := shared.RunCommand("add", "-u", "AAAA-1111", "-t", "APFS", "-p", "hunter2"); err != nil {
		t.Errorf("Command failed unexpectedly: %v", err)
	}

	if _, err := os.Stat(configured); err != nil {
		t.Errorf("Expected the credentials file at the configured path: %v", err)
	}
}

// testRootConfigFileSyntaxErrorFails tests that a damaged config file stops
// the run instead of being silently ignored.
func testRootConfigFileSyntaxErrorFails(t *testing.T) {
	settings := shared.SetupTestEnvironment(t, &shared.FakeDisk{})

	if err := os.WriteFile(settings.ConfigPath, []byte("store = [\n"), 0o600); err != nil {
		t.Fatalf("Failed to write the config file: %v", err)
	}

	output, err := shared.RunCommand("execute")
	if err == nil {
		t.Fatal("Expected a damaged config file to fail the command")
	}
	if !strings.Contains(err.Error(), "Failed to load config file") {
		t.Errorf("Expected the config failure in the error, got: %v", err)
	}
	if !strings.Contains(output, "could not read config file") {
		t.Errorf("Expected the load failure in the output: %s", output)
	}
}

// testRootConfigFileCanDisableAuditTrail tests the audit path "off" switch.
func testRootConfigFileCanDisableAuditTrail(t *testing.T) {
	disk := &shared.FakeDisk{
		Secrets: map[string]string{"AAAA-1111": "hunter2"},
	}
	settings := shared.SetupTestEnvironment(t, disk)

	auditPath := settings.AuditLogPath
	if err := os.WriteFile(settings.ConfigPath, []byte("[audit]\npath = \"off\"\n"), 0o600); err != nil {
		t.Fatalf("Failed to write the config file: %v", err)
	}

	if _, err := shared.RunCommand("add", "-u", "AAAA-1111", "-t", "APFS", "-p", "hunter2"); err != nil {
		t.Errorf("Command failed unexpectedly: %v", err)
	}

	if _, err := os.Stat(auditPath); !os.IsNotExist(err) {
		t.Errorf("Expected no audit trail when the config disables it")
	}
}
