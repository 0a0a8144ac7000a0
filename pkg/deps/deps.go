package deps

import (
	"context"
	"io"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pakt/pkg/archive"
	"github.com/matzehuels/pakt/pkg/deps/version"
)

// StoreDir is the package store directory inside a project.
const StoreDir = "node_modules"

// PackageMetadata holds what a registry knows about one package.
type PackageMetadata struct {
	Name     string                 `json:"name"`
	Versions map[string]VersionInfo `json:"versions"`
}

// VersionInfo describes one published version of a package.
type VersionInfo struct {
	Dependencies map[string]string `json:"dependencies,omitempty"` // name -> constraint
	ArchiveURL   string            `json:"archiveUrl"`
}

// VersionList returns the valid semver versions in ascending order.
func (m *PackageMetadata) VersionList() []string {
	out := make([]string, 0, len(m.Versions))
	for v := range m.Versions {
		out = append(out, v)
	}
	return version.Sort(out)
}

// ArchiveURL returns the archive location of version.
func (m *PackageMetadata) ArchiveURL(version string) (string, bool) {
	v, ok := m.Versions[version]
	if !ok || v.ArchiveURL == "" {
		return "", false
	}
	return v.ArchiveURL, true
}

// Edges returns the dependency edges declared by version, sorted by
// dependency name.
func (m *PackageMetadata) Edges(version string) []Edge {
	v, ok := m.Versions[version]
	if !ok {
		return nil
	}
	edges := make([]Edge, 0, len(v.Dependencies))
	for name, constraint := range v.Dependencies {
		edges = append(edges, Edge{From: m.Name, To: name, Constraint: constraint})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].To < edges[j].To })
	return edges
}

// Edge is a dependency of From on To, limited by Constraint. Edges only
// drive the traversal and are never persisted.
type Edge struct {
	From       string
	To         string
	Constraint string
}

// Registry returns package metadata by name.
type Registry interface {
	// FetchMetadata fails with a REGISTRY_ERROR coded error if the package
	// does not exist (wrapping PACKAGE_NOT_FOUND) or the transport fails
	// (wrapping NETWORK_ERROR).
	FetchMetadata(ctx context.Context, name string) (*PackageMetadata, error)
}

// Downloader copies a remote archive to a local file.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Options configures an [Installer].
type Options struct {
	Dir      string           // Project directory (default ".")
	StoreDir string           // Package store root (default <Dir>/node_modules)
	Unpacker archive.Unpacker // Archive extractor (default archive.TarGz{Strip: 1})
	Logger   *log.Logger      // Progress logger (default discards)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.StoreDir == "" {
		opts.StoreDir = filepath.Join(opts.Dir, StoreDir)
	}
	if opts.Unpacker == nil {
		opts.Unpacker = archive.TarGz{Strip: 1}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return opts
}
