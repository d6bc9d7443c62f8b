// Package cache implements a content-addressed blob store for web
// resources with HTTP conditional-request revalidation.
//
// Each resource is keyed by the SHA-256 of its identifier. On disk an entry
// is a blob file plus a sibling ".json" manifest carrying the identifier
// and the validators (ETag / Last-Modified) the origin supplied; both live
// under a directory sharded by the first two hex characters of the hash.
// Entries never expire on their own; they are replaced on revalidation
// failure or removed explicitly.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/afero"

	"github.com/bell345/zapper/internal/epg"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "zapper/1.0"

	// Transport-level failures are retried a few times before giving up,
	// but only when there is no stale copy to fall back on.
	retryAttempts = 3
	retryDelay    = 250 * time.Millisecond
)

// manifest is the sidecar metadata persisted next to each blob.
type manifest struct {
	ResourceID   string `json:"resource_id"`
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// Cache fetches web resources, revalidating cached copies with conditional
// requests and falling back to a stale copy when the origin is unreachable.
//
// Concurrent fetches of the same resource identifier are collapsed behind a
// per-identifier lock, so one request hits the network while the rest reuse
// its outcome through the store.
type Cache struct {
	dir       string
	userAgent string
	client    *http.Client
	fs        afero.Fs
	logger    *slog.Logger

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

// Option configures a Cache.
type Option func(*Cache)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) { c.client = client }
}

// WithUserAgent sets the User-Agent sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Cache) { c.userAgent = ua }
}

// WithFs replaces the backing filesystem. Tests use an in-memory fs.
func WithFs(fs afero.Fs) Option {
	return func(c *Cache) { c.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New creates a cache rooted at dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Cache, error) {
	c := &Cache{
		dir:       dir,
		userAgent: defaultUserAgent,
		client:    &http.Client{Timeout: defaultTimeout},
		fs:        afero.NewOsFs(),
		logger:    slog.Default(),
		inflight:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
	}
	return c, nil
}

// Path returns the on-disk blob location for a resource identifier.
func (c *Cache) Path(id string) string {
	sum := sha256.Sum256([]byte(id))
	h := hex.EncodeToString(sum[:])
	return filepath.Join(c.dir, h[:2], h)
}

// Get reads a cached blob without touching the network.
func (c *Cache) Get(id string) ([]byte, error) {
	return afero.ReadFile(c.fs, c.Path(id))
}

// Save writes a blob into the cache without metadata. The entry will not
// revalidate; Fetch treats it as absent until a validated copy replaces it.
func (c *Cache) Save(id string, content []byte) error {
	path := c.Path(id)
	if err := c.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(c.fs, path, content, 0o644)
}

// Remove deletes a cached entry and its manifest.
func (c *Cache) Remove(id string) error {
	path := c.Path(id)
	if err := c.fs.Remove(path); err != nil {
		return err
	}
	// Manifest removal is best effort; a manifest without a blob is inert.
	c.fs.Remove(path + ".json")
	return nil
}

// Fetch retrieves the resource identified by id, which must be an HTTP URL.
//
// A cached entry with validators turns the request into a conditional one;
// "304 Not Modified" resolves to the cached blob. When the origin cannot be
// reached or answers with an error status, a cached blob is returned as a
// recovered result. With no cached copy the failure propagates as a
// *epg.FetchError.
func (c *Cache) Fetch(ctx context.Context, id string) ([]byte, error) {
	lock := c.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	path := c.Path(id)
	if err := c.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache shard: %w", err)
	}

	mf, hasEntry := c.loadManifest(id, path)
	_, statErr := c.fs.Stat(path)
	hasBlob := statErr == nil

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, id, nil)
	if err != nil {
		return nil, &epg.FetchError{Resource: id, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	if hasEntry {
		if mf.ETag != "" {
			req.Header.Set("If-None-Match", mf.ETag)
		}
		if mf.LastModified != "" {
			req.Header.Set("If-Modified-Since", mf.LastModified)
		}
	}

	resp, err := c.do(ctx, req, hasBlob)
	if err != nil {
		if hasBlob {
			c.logger.Warn("origin unreachable, serving stale copy", "resource", id, "error", err)
			return afero.ReadFile(c.fs, path)
		}
		return nil, &epg.FetchError{Resource: id, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("fetched resource", "resource", id, "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return afero.ReadFile(c.fs, path)

	case resp.StatusCode >= 400:
		if hasBlob {
			c.logger.Warn("origin error, serving stale copy", "resource", id, "status", resp.StatusCode)
			return afero.ReadFile(c.fs, path)
		}
		return nil, &epg.FetchError{
			Resource:  id,
			Status:    resp.StatusCode,
			Transient: resp.StatusCode >= 500,
		}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &epg.FetchError{Resource: id, Transient: true, Err: err}
	}

	c.persist(id, path, resp, content)
	return content, nil
}

// persist stores blob and manifest as a pair when the response carries
// validators and caching is not disabled. A response with neither validator
// is not cached at all: it could never revalidate and would pin a stale
// copy forever.
func (c *Cache) persist(id, path string, resp *http.Response, content []byte) {
	if resp.Header.Get("Cache-Control") == "no-cache" {
		return
	}
	mf := manifest{
		ResourceID:   id,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}
	if mf.ETag == "" && mf.LastModified == "" {
		return
	}

	data, err := json.Marshal(mf)
	if err != nil {
		return
	}
	if err := afero.WriteFile(c.fs, path+".json", data, 0o644); err != nil {
		c.logger.Warn("failed to write cache manifest", "resource", id, "error", err)
		return
	}
	if err := afero.WriteFile(c.fs, path, content, 0o644); err != nil {
		c.logger.Warn("failed to write cache blob", "resource", id, "error", err)
		// Remove the manifest so the half-written entry cannot answer a
		// future conditional request with a missing blob.
		c.fs.Remove(path + ".json")
	}
}

// do performs the request. Without a stale copy to fall back on, transport
// failures are retried; with one, falling back immediately beats hammering
// an origin that just failed.
func (c *Cache) do(ctx context.Context, req *http.Request, hasBlob bool) (*http.Response, error) {
	if hasBlob {
		return c.client.Do(req)
	}
	return retry.DoWithData(
		func() (*http.Response, error) { return c.client.Do(req) },
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
}

// loadManifest reads the sidecar manifest; an entry only counts when both
// manifest and blob are present.
func (c *Cache) loadManifest(id, path string) (manifest, bool) {
	var mf manifest
	data, err := afero.ReadFile(c.fs, path+".json")
	if err != nil {
		return mf, false
	}
	if _, err := c.fs.Stat(path); err != nil {
		return mf, false
	}
	if err := json.Unmarshal(data, &mf); err != nil {
		c.logger.Warn("discarding corrupt cache manifest", "resource", id, "error", err)
		return manifest{ResourceID: id}, true
	}
	return mf, true
}

func (c *Cache) lockFor(id string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.inflight[id]
	if !ok {
		lock = &sync.Mutex{}
		c.inflight[id] = lock
	}
	return lock
}
