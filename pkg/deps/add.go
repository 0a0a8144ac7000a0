package deps

import (
	"context"

	"github.com/matzehuels/pakt/pkg/deps/version"
	"github.com/matzehuels/pakt/pkg/errors"
	"github.com/matzehuels/pakt/pkg/state"
)

// AddResult is the outcome of adding one package token.
type AddResult struct {
	Token      string
	Name       string
	Constraint string // requested constraint, recorded in the manifest
	Version    string // resolved version, recorded in the lockfile
	ArchiveURL string
	Err        error
}

// AddReport holds one result per token, in input order.
type AddReport struct {
	Results []AddResult
}

// Failed returns the results that carry an error.
func (r *AddReport) Failed() []AddResult {
	var out []AddResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// OK reports whether every token was added.
func (r *AddReport) OK() bool { return len(r.Failed()) == 0 }

// AddPackages records each "name" or "name@constraint" token as a top-level
// dependency. The package must exist and the constraint must resolve; the
// requested constraint goes into the manifest and the resolved version into
// the lockfile. Nothing is downloaded.
//
// A failing token is reported in the result and does not stop the others.
// Manifest and lockfile are saved once, after all tokens; the returned error
// is non-nil only when loading or saving fails.
func (i *Installer) AddPackages(ctx context.Context, tokens []string) (*AddReport, error) {
	if len(tokens) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no packages given")
	}

	manifest, lock, err := i.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	report := &AddReport{Results: make([]AddResult, 0, len(tokens))}
	for _, token := range tokens {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := i.add(ctx, token, manifest, lock)
		if res.Err != nil {
			i.opts.Logger.Error("add failed", "package", token, "err", res.Err)
		} else {
			i.opts.Logger.Info("Added", "package", res.Name, "constraint", res.Constraint, "version", res.Version)
		}
		report.Results = append(report.Results, res)
	}

	if err := i.store.SaveManifest(ctx, manifest); err != nil {
		return report, err
	}
	if err := i.store.SaveLockfile(ctx, lock); err != nil {
		return report, err
	}
	return report, nil
}

func (i *Installer) add(ctx context.Context, token string, manifest *state.Manifest, lock *state.Lockfile) AddResult {
	name, constraint := version.ParseSpec(token)
	res := AddResult{Token: token, Name: name, Constraint: constraint}

	if err := errors.ValidatePackageName(name); err != nil {
		res.Err = err
		return res
	}
	meta, err := i.registry.FetchMetadata(ctx, name)
	if err != nil {
		res.Err = err
		return res
	}
	ver, ok := version.Resolve(meta.VersionList(), constraint)
	if !ok {
		res.Err = &errors.UnresolvedVersionError{Package: name, Constraint: constraint}
		return res
	}
	url, ok := meta.ArchiveURL(ver)
	if !ok {
		res.Err = &errors.UnresolvedVersionError{Package: name, Constraint: constraint}
		return res
	}

	res.Version, res.ArchiveURL = ver, url
	manifest.Dependencies[name] = constraint
	lock.Set(name, state.LockEntry{Version: ver, TarballURL: url})
	return res
}
