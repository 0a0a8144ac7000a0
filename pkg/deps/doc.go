// Package deps is the dependency resolution and installation engine.
//
// # Overview
//
// An [Installer] reads the project manifest and lockfile through a
// [state.Store], asks a [Registry] for package metadata, picks versions with
// [version.Resolve], downloads archives through a [Downloader] and unpacks
// them into the package store (node_modules by default).
//
// The engine only sees interfaces; [npm.Client] implements both [Registry]
// and [Downloader] for npm registries.
//
// # Installing
//
// [Installer.InstallFromLock] walks every manifest dependency depth first.
// For each package:
//
//  1. A lockfile entry, if present, decides the version. Otherwise the
//     constraint is resolved against current registry metadata.
//  2. The archive is downloaded into the store root, the package directory
//     is replaced with its contents and the archive is removed.
//  3. The lockfile entry is written and the lockfile persisted.
//  4. The package's own dependencies are installed the same way.
//
// Because transitive packages are locked as soon as they are installed, the
// first resolution of a package name in a run is the one that sticks; later
// edges to the same name reuse it. A package that depends on itself through
// any path fails the run with [errors.CycleDetectedError].
//
// Any failure aborts the run. Everything locked before the failure stays in
// the lockfile, so running again picks up where the last run stopped.
//
// # Adding
//
// [Installer.AddPackages] records new top-level dependencies without
// installing anything. Each token is "name" or "name@constraint"; failures
// are reported per token and do not stop the remaining ones. The manifest
// and lockfile are saved once at the end.
package deps
