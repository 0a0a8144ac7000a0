// Package pkg provides the core libraries for the pakt package manager.
//
// # Overview
//
// pakt resolves the dependencies listed in package.json against an npm
// registry, unpacks them into node_modules and pins every resolved version in
// package-lock.json. The pkg directory is organized into:
//
//  1. [deps] - The install engine (traversal, locking, add)
//  2. [deps/version] - Version constraint resolution
//  3. [state] - Manifest and lockfile persistence
//  4. [integrations] - Registry HTTP clients ([integrations/npm])
//  5. [archive] - Tarball extraction
//  6. [cache], [httputil], [observability], [config], [errors] - Infrastructure
//
// # Architecture
//
// The data flow of an install:
//
//	package.json + package-lock.json
//	         ↓
//	    [state] Store (load)
//	         ↓
//	    [deps] Installer ── [deps/version] Resolve
//	         ↓         └──── [integrations/npm] metadata + tarballs
//	    [archive] Extract into node_modules/<name>
//	         ↓
//	    [state] Store (save lockfile after every package)
//
// # Quick Start
//
//	client := npm.NewClient(npm.DefaultRegistry, cache.NewNullCache(), 5*time.Minute)
//	store := state.NewFileStore(".")
//	inst := deps.NewInstaller(client, client, store, deps.Options{})
//
//	report, err := inst.InstallFromLock(ctx)
//
// [deps]: https://pkg.go.dev/github.com/matzehuels/pakt/pkg/deps
// [deps/version]: https://pkg.go.dev/github.com/matzehuels/pakt/pkg/deps/version
// [state]: https://pkg.go.dev/github.com/matzehuels/pakt/pkg/state
// [integrations]: https://pkg.go.dev/github.com/matzehuels/pakt/pkg/integrations
// [integrations/npm]: https://pkg.go.dev/github.com/matzehuels/pakt/pkg/integrations/npm
// [archive]: https://pkg.go.dev/github.com/matzehuels/pakt/pkg/archive
// [cache]: https://pkg.go.dev/github.com/matzehuels/pakt/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/pakt/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/pakt/pkg/observability
// [config]: https://pkg.go.dev/github.com/matzehuels/pakt/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/pakt/pkg/errors
package pkg
