// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// This package fetches package metadata (the "packument") from an npm
// compatible registry, https://registry.npmjs.org by default, and downloads
// package tarballs. Metadata is parsed at the boundary into
// [deps.PackageMetadata]: only the version list, each version's dependency
// constraints and its dist.tarball URL survive.
//
// # Usage
//
//	client := npm.NewClient(npm.DefaultRegistry, cache.NewNullCache(), 5*time.Minute)
//
//	meta, err := client.FetchMetadata(ctx, "express")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	url, _ := meta.ArchiveURL("4.21.2")
//	err = client.Download(ctx, url, "/tmp/express.tgz")
//
// [Client] satisfies both [deps.Registry] and [deps.Downloader].
//
// # Caching
//
// Responses are cached under the "npm:" prefix keyed by metadata URL.
// [Client.SetRefresh] bypasses cached entries and stores fresh ones.
package npm
