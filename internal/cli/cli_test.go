package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pakt/pkg/config"
	"github.com/matzehuels/pakt/pkg/errors"
	"github.com/matzehuels/pakt/pkg/integrations/npm/npmtest"
	"github.com/matzehuels/pakt/pkg/observability"
	"github.com/matzehuels/pakt/pkg/state"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(config.EnvRegistry, "")
	t.Cleanup(observability.Reset)

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func newRegistry(t *testing.T) *npmtest.Registry {
	t.Helper()
	reg := npmtest.New(t)
	reg.Publish("left-pad", "1.3.0", nil, map[string]string{"index.js": "pad"})
	reg.Publish("express", "4.21.2", map[string]string{"left-pad": "^1.0.0"}, map[string]string{"index.js": "express"})
	return reg
}

func TestAddRequiresPackages(t *testing.T) {
	_, err := execute(t, "add", "-C", t.TempDir())
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if !strings.Contains(err.Error(), "Usage: pakt add") {
		t.Errorf("error should carry usage, got %q", err)
	}
}

func TestAddThenInstall(t *testing.T) {
	reg := newRegistry(t)
	dir := t.TempDir()

	out, err := execute(t, "add", "-C", dir, "--registry", reg.URL(), "express@^4.0.0")
	if err != nil {
		t.Fatalf("add error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Added express@4.21.2") {
		t.Errorf("add output = %q", out)
	}

	out, err = execute(t, "install", "-C", dir, "--registry", reg.URL())
	if err != nil {
		t.Fatalf("install error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Installed 2 packages") {
		t.Errorf("install output = %q", out)
	}
	if !strings.Contains(out, "express@4.21.2 · locked") || !strings.Contains(out, "left-pad@1.3.0 · resolved") {
		t.Errorf("install output should show version sources, got %q", out)
	}
	for _, p := range []string{"express/index.js", "left-pad/index.js"} {
		if _, err := os.Stat(filepath.Join(dir, "node_modules", p)); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func TestAddPartialFailureExitsNonZero(t *testing.T) {
	reg := newRegistry(t)
	dir := t.TempDir()

	out, err := execute(t, "add", "-C", dir, "--registry", reg.URL(), "left-pad", "nonexistent-pkg@1.0.0")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 packages") {
		t.Fatalf("error = %v, want partial failure", err)
	}
	if !strings.Contains(out, "nonexistent-pkg@1.0.0:") {
		t.Errorf("output should name the failed token, got %q", out)
	}

	_, l, loadErr := state.NewFileStore(dir).Load(context.Background())
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if _, ok := l.Lookup("left-pad"); !ok {
		t.Error("left-pad should be locked despite the other failure")
	}
	if _, ok := l.Lookup("nonexistent-pkg"); ok {
		t.Error("nonexistent-pkg must not be locked")
	}
}

func TestInstallUsesConfigFile(t *testing.T) {
	reg := newRegistry(t)
	dir := t.TempDir()
	cfg := "registry = \"" + reg.URL() + "\"\nstore_dir = \"vendor\"\n[cache]\ndisabled = true\n"
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, state.ManifestFile), []byte(`{"name":"app","dependencies":{"left-pad":"1.3.0"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if out, err := execute(t, "install", "-C", dir); err != nil {
		t.Fatalf("install error: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "vendor", "left-pad", "index.js")); err != nil {
		t.Errorf("store_dir not honored: %v", err)
	}
}

func TestInstallUnresolvable(t *testing.T) {
	reg := newRegistry(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, state.ManifestFile), []byte(`{"dependencies":{"left-pad":"^2.0.0"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "install", "-C", dir, "--registry", reg.URL(), "--no-cache")
	if !errors.Is(err, errors.ErrCodeUnresolvedVersion) {
		t.Fatalf("error = %v, want %s", err, errors.ErrCodeUnresolvedVersion)
	}
	if got := err.Error(); got != "could not resolve version for left-pad@^2.0.0" {
		t.Errorf("error = %q", got)
	}
}

func TestInstallNothing(t *testing.T) {
	out, err := execute(t, "install", "-C", t.TempDir(), "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Nothing to install") {
		t.Errorf("output = %q", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := execute(t, "remove", "express"); err == nil {
		t.Error("unknown command should fail")
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(`retries = 0`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "install", "-C", dir)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := execute(t, "install", "-C", t.TempDir(), "--config", filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestVerboseSetsDebugLevel(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"cache", "path", "-v"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}
