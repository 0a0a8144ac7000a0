// Package integrations provides the shared HTTP client for registry APIs.
//
// # Overview
//
// Registry-specific clients live in subpackages and embed [Client]:
//
//   - [npm]: the npm registry (metadata and tarballs)
//
// # Client Pattern
//
//	client := npm.NewClient(npm.DefaultRegistry, fileCache, 5*time.Minute)
//	meta, err := client.FetchMetadata(ctx, "express")
//
// [Client] handles:
//   - Response caching through any [cache.Cache] backend
//   - Retry of transient failures (network errors, 5xx) via [httputil.Policy]
//   - Default request headers
//   - Streaming downloads to disk with cleanup on failure
//
// Errors are the sentinels [ErrNotFound] and [ErrNetwork]; registry clients
// wrap them with their own context.
//
// # Adding a New Registry
//
//  1. Create a subpackage: pkg/integrations/<registry>/
//  2. Define response structs matching the API schema
//  3. Embed [Client] and convert responses to [deps.PackageMetadata]
//  4. Satisfy [deps.Registry] and [deps.Downloader]
//
// [npm]: github.com/matzehuels/pakt/pkg/integrations/npm
package integrations
