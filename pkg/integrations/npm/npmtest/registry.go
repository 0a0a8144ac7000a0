// Package npmtest runs an in-process npm registry for tests.
//
// The registry serves the two endpoints the installer uses: package metadata
// at /<name> and tarballs at /<name>/-/<file>.tgz. Packages are published with
// [Registry.Publish]; their tarballs are built on the fly with the usual
// "package/" top-level directory.
package npmtest

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"sort"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzip"
)

// Registry is a fake npm registry backed by an httptest server.
type Registry struct {
	srv *httptest.Server

	mu       sync.Mutex
	packages map[string]*document
	tarballs map[string][]byte
	failures map[string]int
	requests map[string]int
}

type document struct {
	Name     string                     `json:"name"`
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]versionDocument `json:"versions"`
}

type versionDocument struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Dist         struct {
		Tarball string `json:"tarball"`
	} `json:"dist"`
}

// New starts a registry that is shut down when the test ends.
func New(t testing.TB) *Registry {
	t.Helper()
	r := &Registry{
		packages: make(map[string]*document),
		tarballs: make(map[string][]byte),
		failures: make(map[string]int),
		requests: make(map[string]int),
	}

	router := chi.NewRouter()
	router.Get("/{name}", r.serveMetadata)
	router.Get("/{name}/-/{file}", r.serveTarball)
	router.Get("/{scope}/{name}/-/{file}", r.serveTarball)

	r.srv = httptest.NewServer(router)
	t.Cleanup(r.srv.Close)
	return r
}

// URL returns the registry base URL.
func (r *Registry) URL() string { return r.srv.URL }

// Client returns an HTTP client configured for the registry server.
func (r *Registry) Client() *http.Client { return r.srv.Client() }

// Publish adds version of name with the given dependency constraints. files
// maps paths inside the package to their content; a package.json is added
// when missing. Publishing the same version twice replaces it.
func (r *Registry) Publish(name, version string, deps map[string]string, files map[string]string) {
	content := make(map[string]string, len(files)+1)
	for k, v := range files {
		content[k] = v
	}
	if _, ok := content["package.json"]; !ok {
		manifest, _ := json.Marshal(map[string]any{"name": name, "version": version, "dependencies": deps})
		content["package.json"] = string(manifest)
	}
	data, err := Tarball("package", content)
	if err != nil {
		panic(err)
	}

	file := path.Base(name) + "-" + version + ".tgz"
	key := name + "/-/" + file

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.packages[name]
	if !ok {
		doc = &document{Name: name, DistTags: map[string]string{}, Versions: map[string]versionDocument{}}
		r.packages[name] = doc
	}
	v := versionDocument{Name: name, Version: version, Dependencies: deps}
	v.Dist.Tarball = r.srv.URL + "/" + key
	doc.Versions[version] = v
	doc.DistTags["latest"] = version
	r.tarballs[key] = data
}

// Fail makes every request for the metadata of name answer with status.
// A status of 0 clears the failure.
func (r *Registry) Fail(name string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status == 0 {
		delete(r.failures, name)
		return
	}
	r.failures[name] = status
}

// MetadataRequests returns how many metadata requests were made for name.
func (r *Registry) MetadataRequests(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests["meta:"+name]
}

// TarballRequests returns how many tarball downloads were made for name.
func (r *Registry) TarballRequests(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests["tarball:"+name]
}

func (r *Registry) serveMetadata(w http.ResponseWriter, req *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(req, "name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	r.mu.Lock()
	r.requests["meta:"+name]++
	status := r.failures[name]
	doc, ok := r.packages[name]
	var data []byte
	if ok {
		data, err = json.Marshal(doc)
	}
	r.mu.Unlock()

	switch {
	case status != 0:
		w.WriteHeader(status)
	case !ok:
		http.Error(w, `{"error":"Not found"}`, http.StatusNotFound)
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

func (r *Registry) serveTarball(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")
	if scope := chi.URLParam(req, "scope"); scope != "" {
		name = scope + "/" + name
	}
	key := name + "/-/" + chi.URLParam(req, "file")

	r.mu.Lock()
	r.requests["tarball:"+name]++
	data, ok := r.tarballs[key]
	r.mu.Unlock()

	if !ok {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

// Tarball builds a gzip-compressed tarball with every file placed under the
// top-level directory prefix. Entries are written in sorted order.
func Tarball(prefix string, files map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	if prefix != "" {
		if err := tw.WriteHeader(&tar.Header{Name: prefix + "/", Typeflag: tar.TypeDir, Mode: 0o755}); err != nil {
			return nil, err
		}
	}
	for _, name := range names {
		full := name
		if prefix != "" {
			full = prefix + "/" + name
		}
		body := files[name]
		hdr := &tar.Header{Name: full, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(body))}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, err
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
