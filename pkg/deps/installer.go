package deps

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pakt/pkg/deps/version"
	"github.com/matzehuels/pakt/pkg/errors"
	"github.com/matzehuels/pakt/pkg/observability"
	"github.com/matzehuels/pakt/pkg/state"
)

// Installer resolves, downloads and unpacks packages and keeps the lockfile
// in sync with what it installed.
type Installer struct {
	registry   Registry
	downloader Downloader
	store      state.Store
	opts       Options
}

// NewInstaller creates an Installer. The store is the only place the
// installer reads or writes the manifest and lockfile.
func NewInstaller(registry Registry, downloader Downloader, store state.Store, opts Options) *Installer {
	return &Installer{
		registry:   registry,
		downloader: downloader,
		store:      store,
		opts:       opts.WithDefaults(),
	}
}

// StoreDir returns the package store root.
func (i *Installer) StoreDir() string { return i.opts.StoreDir }

// Installed is one package placed in the store.
type Installed struct {
	Name    string
	Version string
	Locked  bool // version came from the lockfile
}

// InstallReport lists the packages installed by one run, in install order.
type InstallReport struct {
	Installed []Installed
}

// InstallFromLock installs every manifest dependency and its transitive
// dependencies. Locked versions are used as-is, even when they no longer
// satisfy the manifest constraint; other packages are resolved against the
// registry and locked as soon as they are installed.
//
// The lockfile is persisted after each package, so a failed run leaves a
// lockfile a retry can build on. Any failure aborts the whole run; the
// returned report still lists what was installed before it.
func (i *Installer) InstallFromLock(ctx context.Context) (*InstallReport, error) {
	manifest, lock, err := i.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(i.opts.StoreDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create package store")
	}

	names := make([]string, 0, len(manifest.Dependencies))
	for name := range manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	r := &run{
		Installer: i,
		lock:      lock,
		resolving: make(map[string]bool),
		completed: make(map[string]bool),
		report:    &InstallReport{},
	}
	for _, name := range names {
		if err := r.install(ctx, Edge{To: name, Constraint: manifest.Dependencies[name]}); err != nil {
			return r.report, err
		}
	}
	i.opts.Logger.Info("Finished installing packages", "count", len(r.report.Installed))
	return r.report, nil
}

// run carries the state of a single InstallFromLock call.
type run struct {
	*Installer
	lock *state.Lockfile

	stack     []string
	resolving map[string]bool
	completed map[string]bool
	report    *InstallReport
}

func (r *run) install(ctx context.Context, e Edge) error {
	name := e.To
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.resolving[name] {
		start := slices.Index(r.stack, name)
		path := append(slices.Clone(r.stack[start:]), name)
		return &errors.CycleDetectedError{Path: path}
	}
	if r.completed[name] {
		return nil
	}
	if err := errors.ValidatePackageName(name); err != nil {
		return err
	}

	r.resolving[name] = true
	r.stack = append(r.stack, name)
	defer func() {
		delete(r.resolving, name)
		r.stack = r.stack[:len(r.stack)-1]
	}()

	meta, err := r.registry.FetchMetadata(ctx, name)
	if err != nil {
		return err
	}

	ver, url, locked, err := r.pick(ctx, meta, e)
	if err != nil {
		return err
	}

	start := time.Now()
	err = r.fetchAndUnpack(ctx, name, url)
	observability.Install().OnInstalled(ctx, name, ver, time.Since(start), err)
	if err != nil {
		return err
	}

	r.lock.Set(name, state.LockEntry{Version: ver, TarballURL: url})
	if err := r.store.SaveLockfile(ctx, r.lock); err != nil {
		return err
	}
	r.report.Installed = append(r.report.Installed, Installed{Name: name, Version: ver, Locked: locked})
	r.opts.Logger.Info("Installed", "package", name, "version", ver)

	for _, dep := range meta.Edges(ver) {
		if err := r.install(ctx, dep); err != nil {
			return err
		}
	}
	r.completed[name] = true
	return nil
}

// pick chooses the version to install for e and its archive location. A
// lock entry wins over the constraint.
func (r *run) pick(ctx context.Context, meta *PackageMetadata, e Edge) (ver, url string, locked bool, err error) {
	name := e.To
	hooks := observability.Install()

	if entry, ok := r.lock.Lookup(name); ok {
		r.opts.Logger.Info("Using locked version for " + name + "@" + entry.Version)
		if !version.Satisfies(entry.Version, e.Constraint) {
			r.opts.Logger.Warn("locked version does not satisfy constraint", "package", name, "version", entry.Version, "constraint", e.Constraint)
		}
		hooks.OnResolve(ctx, name, e.Constraint, entry.Version, true)
		if url, ok := meta.ArchiveURL(entry.Version); ok {
			return entry.Version, url, true, nil
		}
		if entry.TarballURL == "" {
			return "", "", true, errors.New(errors.ErrCodeRegistry, "%s@%s is locked but no longer published", name, entry.Version)
		}
		// Without metadata the version's own dependencies are unknown.
		r.opts.Logger.Warn("locked version no longer published, installing locked archive without its dependencies",
			"package", name, "version", entry.Version)
		return entry.Version, entry.TarballURL, true, nil
	}

	ver, ok := version.Resolve(meta.VersionList(), e.Constraint)
	if !ok {
		return "", "", false, &errors.UnresolvedVersionError{Package: name, Constraint: e.Constraint}
	}
	url, ok = meta.ArchiveURL(ver)
	if !ok {
		return "", "", false, &errors.UnresolvedVersionError{Package: name, Constraint: e.Constraint}
	}
	r.opts.Logger.Debug("resolved", "package", name, "constraint", e.Constraint, "version", ver, "from", e.From)
	hooks.OnResolve(ctx, name, e.Constraint, ver, false)
	return ver, url, false, nil
}

// fetchAndUnpack downloads the archive into the store root under a unique
// name, replaces the package directory with its contents and removes the
// archive.
func (i *Installer) fetchAndUnpack(ctx context.Context, name, url string) error {
	tmp := filepath.Join(i.opts.StoreDir, ".pakt-"+uuid.NewString()+".tgz")
	defer os.Remove(tmp)

	if err := i.downloader.Download(ctx, url, tmp); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeRegistry, err, "download %s", name)
	}

	dest := filepath.Join(i.opts.StoreDir, filepath.FromSlash(name))
	if err := os.RemoveAll(dest); err != nil {
		return errors.Wrap(errors.ErrCodeArchive, err, "clear %s", name)
	}
	return i.opts.Unpacker.Unpack(ctx, tmp, dest)
}
