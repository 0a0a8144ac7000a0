package deps_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/matzehuels/pakt/pkg/errors"
	"github.com/matzehuels/pakt/pkg/state"
)

func TestAddPackagesPartialFailure(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.reg.publish("good-pkg", "1.0.0", nil)
	f.reg.publish("good-pkg", "1.3.0", nil)

	report, err := f.inst.AddPackages(context.Background(), []string{"good-pkg", "nonexistent-pkg@1.0.0"})
	if err != nil {
		t.Fatalf("AddPackages() error: %v", err)
	}

	if report.OK() {
		t.Error("report should contain a failure")
	}
	failed := report.Failed()
	if len(failed) != 1 || failed[0].Token != "nonexistent-pkg@1.0.0" {
		t.Fatalf("failed = %+v, want only nonexistent-pkg", failed)
	}
	if !errors.Is(failed[0].Err, errors.ErrCodeRegistry) {
		t.Errorf("failure code = %s, want %s", errors.GetCode(failed[0].Err), errors.ErrCodeRegistry)
	}

	m, l := f.store.Manifest(), f.store.Lockfile()
	if got := m.Dependencies["good-pkg"]; got != "latest" {
		t.Errorf("manifest good-pkg = %q, want latest", got)
	}
	if e, ok := l.Lookup("good-pkg"); !ok || e.Version != "1.3.0" || e.TarballURL != "mem://good-pkg@1.3.0" {
		t.Errorf("lock good-pkg = %+v, %v", e, ok)
	}
	if _, ok := m.Dependencies["nonexistent-pkg"]; ok {
		t.Error("failed package must not be in the manifest")
	}
	if _, ok := l.Lookup("nonexistent-pkg"); ok {
		t.Error("failed package must not be in the lockfile")
	}

	if ms, ls := f.store.Saves(); ms != 1 || ls != 1 {
		t.Errorf("saves = (%d, %d), want one of each", ms, ls)
	}
	if f.dl.count("good-pkg") != 0 {
		t.Error("add must not download archives")
	}
}

func TestAddPackagesRecordsRequestedConstraint(t *testing.T) {
	f := newFixture(t, nil, nil)
	for _, v := range []string{"1.0.0", "1.1.0", "1.2.0", "2.0.0"} {
		f.reg.publish("lib", v, nil)
	}
	f.reg.publish("@scope/tool", "0.3.1", nil)

	report, err := f.inst.AddPackages(context.Background(), []string{"lib@^1.0.0", "@scope/tool@~0.3.0"})
	if err != nil {
		t.Fatal(err)
	}
	if !report.OK() {
		t.Fatalf("unexpected failures: %+v", report.Failed())
	}

	tests := []struct {
		name, constraint, version string
	}{
		{"lib", "^1.0.0", "1.2.0"},
		{"@scope/tool", "~0.3.0", "0.3.1"},
	}
	m, l := f.store.Manifest(), f.store.Lockfile()
	for _, tt := range tests {
		if got := m.Dependencies[tt.name]; got != tt.constraint {
			t.Errorf("manifest %s = %q, want %q", tt.name, got, tt.constraint)
		}
		if e, _ := l.Lookup(tt.name); e.Version != tt.version {
			t.Errorf("lock %s = %q, want %q", tt.name, e.Version, tt.version)
		}
	}
	if report.Results[0].Version != "1.2.0" {
		t.Errorf("result version = %q", report.Results[0].Version)
	}
}

func TestAddPackagesKeepsExistingEntries(t *testing.T) {
	f := newFixture(t,
		map[string]string{"old": "^1.0.0"},
		map[string]state.LockEntry{"old": {Version: "1.0.0", TarballURL: "mem://old@1.0.0"}},
	)
	f.reg.publish("new", "2.0.0", nil)

	if _, err := f.inst.AddPackages(context.Background(), []string{"new"}); err != nil {
		t.Fatal(err)
	}
	m := f.store.Manifest()
	if m.Dependencies["old"] != "^1.0.0" || m.Dependencies["new"] != "latest" {
		t.Errorf("manifest = %v", m.Dependencies)
	}
	if _, ok := f.store.Lockfile().Lookup("old"); !ok {
		t.Error("existing lock entry was dropped")
	}
}

func TestAddPackagesUnresolvable(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.reg.publish("a", "1.0.0", nil)

	report, err := f.inst.AddPackages(context.Background(), []string{"a@^2.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	var unresolved *errors.UnresolvedVersionError
	if !stderrors.As(report.Results[0].Err, &unresolved) {
		t.Fatalf("error = %v, want UnresolvedVersionError", report.Results[0].Err)
	}
	if got := unresolved.Error(); got != "could not resolve version for a@^2.0.0" {
		t.Errorf("message = %q", got)
	}
}

func TestAddPackagesInvalidName(t *testing.T) {
	f := newFixture(t, nil, nil)

	report, err := f.inst.AddPackages(context.Background(), []string{"Bad Name"})
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(report.Results[0].Err, errors.ErrCodeInvalidPackage) {
		t.Errorf("error = %v, want invalid package", report.Results[0].Err)
	}
	if f.reg.fetches["Bad Name"] != 0 {
		t.Error("invalid names must not reach the registry")
	}
}

func TestAddPackagesEmpty(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.inst.AddPackages(context.Background(), nil)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if ms, ls := f.store.Saves(); ms+ls != 0 {
		t.Error("nothing should be saved for an empty add")
	}
}
