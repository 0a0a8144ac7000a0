// Package state persists the project manifest and lockfile.
//
// The manifest (package.json) records the top-level dependencies a user asked
// for and the constraint they asked for. The lockfile (package-lock.json)
// records the concrete version and archive location every installed package
// resolved to. Both are loaded once per command, mutated in memory and written
// back through a [Store], so the install engine never touches file paths
// directly.
package state

import (
	"context"
	"encoding/json"
	"maps"
)

// Manifest is the set of requested top-level dependencies.
type Manifest struct {
	// Dependencies maps package name to the requested constraint
	// (exact version, semver range or "latest").
	Dependencies map[string]string

	// extra holds unrelated top-level package.json fields so that rewriting
	// the manifest does not drop them.
	extra map[string]json.RawMessage
}

// LockEntry is the resolved state of one installed package.
type LockEntry struct {
	Version    string `json:"version"`
	TarballURL string `json:"tarballUrl"`
}

// Lockfile is the flat set of resolved packages. It does not record edges of
// the dependency graph.
type Lockfile struct {
	Dependencies map[string]LockEntry `json:"dependencies"`
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{Dependencies: make(map[string]string)}
}

// NewLockfile returns an empty lockfile.
func NewLockfile() *Lockfile {
	return &Lockfile{Dependencies: make(map[string]LockEntry)}
}

// Lookup returns the lock entry for name, if any.
func (l *Lockfile) Lookup(name string) (LockEntry, bool) {
	e, ok := l.Dependencies[name]
	return e, ok
}

// Set records or overwrites the lock entry for name.
func (l *Lockfile) Set(name string, e LockEntry) {
	if l.Dependencies == nil {
		l.Dependencies = make(map[string]LockEntry)
	}
	l.Dependencies[name] = e
}

// Clone returns a deep copy of the lockfile.
func (l *Lockfile) Clone() *Lockfile {
	c := NewLockfile()
	maps.Copy(c.Dependencies, l.Dependencies)
	return c
}

// Clone returns a deep copy of the manifest.
func (m *Manifest) Clone() *Manifest {
	c := NewManifest()
	maps.Copy(c.Dependencies, m.Dependencies)
	if m.extra != nil {
		c.extra = maps.Clone(m.extra)
	}
	return c
}

// MarshalJSON writes the dependencies next to any preserved fields.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.extra)+1)
	for k, v := range m.extra {
		out[k] = v
	}
	deps := m.Dependencies
	if deps == nil {
		deps = map[string]string{}
	}
	out["dependencies"] = deps
	return json.Marshal(out)
}

// UnmarshalJSON reads "dependencies" and keeps every other field verbatim.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Dependencies = make(map[string]string)
	if d, ok := raw["dependencies"]; ok && string(d) != "null" {
		if err := json.Unmarshal(d, &m.Dependencies); err != nil {
			return err
		}
		if m.Dependencies == nil {
			m.Dependencies = make(map[string]string)
		}
	}
	delete(raw, "dependencies")
	if len(raw) > 0 {
		m.extra = raw
	} else {
		m.extra = nil
	}
	return nil
}

// UnmarshalJSON tolerates a missing or null "dependencies" field.
func (l *Lockfile) UnmarshalJSON(data []byte) error {
	type plain Lockfile
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Dependencies == nil {
		p.Dependencies = make(map[string]LockEntry)
	}
	*l = Lockfile(p)
	return nil
}

// Store loads and saves project state.
//
// Implementations must make each save atomic with respect to readers: a
// reader sees either the previous or the new content, never a torn write.
type Store interface {
	// Load returns the current manifest and lockfile, creating empty ones
	// if they do not exist yet.
	Load(ctx context.Context) (*Manifest, *Lockfile, error)

	// SaveManifest persists m.
	SaveManifest(ctx context.Context, m *Manifest) error

	// SaveLockfile persists l.
	SaveLockfile(ctx context.Context, l *Lockfile) error
}
