package npm

import (
	"context"
	stderrors "errors"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/pakt/pkg/cache"
	"github.com/matzehuels/pakt/pkg/deps"
	"github.com/matzehuels/pakt/pkg/errors"
	"github.com/matzehuels/pakt/pkg/integrations"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// acceptHeader asks for the abbreviated metadata document npm clients use
// for installs, falling back to the full one.
const acceptHeader = "application/vnd.npm.install-v1+json; q=1.0, application/json"

// Client fetches metadata and tarballs from an npm registry.
type Client struct {
	*integrations.Client
	baseURL string
	refresh bool
}

// NewClient creates a client for the registry at baseURL. Metadata is cached
// in c for ttl; a nil cache disables caching.
func NewClient(baseURL string, c cache.Cache, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultRegistry
	}
	return &Client{
		Client:  integrations.NewClient(c, "npm:", ttl, map[string]string{"Accept": acceptHeader}),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the registry base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SetRefresh makes subsequent fetches bypass cached metadata.
func (c *Client) SetRefresh(refresh bool) { c.refresh = refresh }

// FetchMetadata returns the published versions of name. Errors carry
// [errors.ErrCodeRegistry]. Underneath, an unknown package is
// [errors.ErrCodePackageNotFound] wrapping [integrations.ErrNotFound], and
// any other failure is [errors.ErrCodeNetwork].
func (c *Client) FetchMetadata(ctx context.Context, name string) (*deps.PackageMetadata, error) {
	name = strings.TrimSpace(name)
	u := c.metadataURL(name)

	var meta deps.PackageMetadata
	err := c.Cached(ctx, u, c.refresh, &meta, func() error {
		return c.fetch(ctx, u, &meta)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if stderrors.Is(err, integrations.ErrNotFound) {
			return nil, errors.Wrap(errors.ErrCodeRegistry, errors.Wrap(errors.ErrCodePackageNotFound, err, "no such package"), "npm package %s", name)
		}
		return nil, errors.Wrap(errors.ErrCodeRegistry, errors.Wrap(errors.ErrCodeNetwork, err, "registry request failed"), "fetch %s", name)
	}
	if meta.Name == "" {
		meta.Name = name
	}
	return &meta, nil
}

func (c *Client) fetch(ctx context.Context, u string, meta *deps.PackageMetadata) error {
	var data registryResponse
	if err := c.Get(ctx, u, &data); err != nil {
		return err
	}
	*meta = data.metadata()
	return nil
}

// metadataURL escapes the slash of scoped names, as the registry expects.
func (c *Client) metadataURL(name string) string {
	return c.baseURL + "/" + url.PathEscape(name)
}

type registryResponse struct {
	Name     string                    `json:"name"`
	Versions map[string]versionDetails `json:"versions"`
}

type versionDetails struct {
	Dependencies map[string]string `json:"dependencies"`
	Dist         struct {
		Tarball string `json:"tarball"`
	} `json:"dist"`
}

// metadata keeps the versions that can actually be installed.
func (r registryResponse) metadata() deps.PackageMetadata {
	m := deps.PackageMetadata{
		Name:     r.Name,
		Versions: make(map[string]deps.VersionInfo, len(r.Versions)),
	}
	for v, d := range r.Versions {
		if d.Dist.Tarball == "" {
			continue
		}
		m.Versions[v] = deps.VersionInfo{Dependencies: d.Dependencies, ArchiveURL: d.Dist.Tarball}
	}
	return m
}

var (
	_ deps.Registry   = (*Client)(nil)
	_ deps.Downloader = (*Client)(nil)
)
