package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/pakt/pkg/errors"
)

// File names used inside a project directory.
const (
	ManifestFile = "package.json"
	LockFile     = "package-lock.json"
)

// FileStore keeps the manifest and lockfile as JSON files in a project
// directory. It is safe for sequential use by a single goroutine.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. Nothing is touched on disk
// until [FileStore.Load] or a save is called.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the project directory.
func (s *FileStore) Dir() string { return s.dir }

// ManifestPath returns the path of package.json.
func (s *FileStore) ManifestPath() string { return filepath.Join(s.dir, ManifestFile) }

// LockfilePath returns the path of package-lock.json.
func (s *FileStore) LockfilePath() string { return filepath.Join(s.dir, LockFile) }

// Load reads both files. Missing files are created with an empty
// "dependencies" object, matching what a fresh project looks like.
func (s *FileStore) Load(ctx context.Context) (*Manifest, *Lockfile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create project dir: %w", err)
	}

	m := NewManifest()
	if ok, err := readJSON(s.ManifestPath(), m); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", ManifestFile)
	} else if !ok {
		if err := s.SaveManifest(ctx, m); err != nil {
			return nil, nil, err
		}
	}

	l := NewLockfile()
	if ok, err := readJSON(s.LockfilePath(), l); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", LockFile)
	} else if !ok {
		if err := s.SaveLockfile(ctx, l); err != nil {
			return nil, nil, err
		}
	}
	return m, l, nil
}

// SaveManifest atomically rewrites package.json.
func (s *FileStore) SaveManifest(ctx context.Context, m *Manifest) error {
	if err := writeJSON(s.ManifestPath(), m); err != nil {
		return fmt.Errorf("write %s: %w", ManifestFile, err)
	}
	return nil
}

// SaveLockfile atomically rewrites package-lock.json.
func (s *FileStore) SaveLockfile(ctx context.Context, l *Lockfile) error {
	if err := writeJSON(s.LockfilePath(), l); err != nil {
		return fmt.Errorf("write %s: %w", LockFile, err)
	}
	return nil
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return true, nil
	}
	return true, json.Unmarshal(data, v)
}

// writeJSON writes v to a temporary file next to path and renames it into
// place, so an interrupted write never leaves a truncated file behind.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

var _ Store = (*FileStore)(nil)
