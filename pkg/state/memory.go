package state

import (
	"context"
	"sync"
)

// MemoryStore keeps state in memory. It is used by tests and by callers that
// want to run a resolution without touching the project directory.
type MemoryStore struct {
	mu            sync.Mutex
	manifest      *Manifest
	lockfile      *Lockfile
	manifestSaves int
	lockfileSaves int
}

// NewMemoryStore creates a store seeded with copies of m and l.
// Nil arguments start empty.
func NewMemoryStore(m *Manifest, l *Lockfile) *MemoryStore {
	if m == nil {
		m = NewManifest()
	}
	if l == nil {
		l = NewLockfile()
	}
	return &MemoryStore{manifest: m.Clone(), lockfile: l.Clone()}
}

// Load returns copies of the stored state.
func (s *MemoryStore) Load(ctx context.Context) (*Manifest, *Lockfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manifest.Clone(), s.lockfile.Clone(), nil
}

// SaveManifest stores a copy of m.
func (s *MemoryStore) SaveManifest(ctx context.Context, m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest = m.Clone()
	s.manifestSaves++
	return nil
}

// SaveLockfile stores a copy of l.
func (s *MemoryStore) SaveLockfile(ctx context.Context, l *Lockfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockfile = l.Clone()
	s.lockfileSaves++
	return nil
}

// Manifest returns a copy of the last saved manifest.
func (s *MemoryStore) Manifest() *Manifest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manifest.Clone()
}

// Lockfile returns a copy of the last saved lockfile.
func (s *MemoryStore) Lockfile() *Lockfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockfile.Clone()
}

// Saves returns how many times each file has been saved.
func (s *MemoryStore) Saves() (manifest, lockfile int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manifestSaves, s.lockfileSaves
}

var _ Store = (*MemoryStore)(nil)
