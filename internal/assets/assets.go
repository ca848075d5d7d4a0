// Package assets fetches mesh files from disk or over HTTP and turns them
// into GPU-ready buffers.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/objview/internal/logger"
)

// LoadError reports an asset that could not be fetched. Status is the HTTP
// status code for remote sources that answered with a non-2xx status.
type LoadError struct {
	Source string
	Status int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("loading %s: HTTP %d", e.Source, e.Status)
	}
	return fmt.Sprintf("loading %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ProgressFunc returns a writer that observes the body of a remote fetch.
// size is -1 when the server does not send a length. If the writer is also
// an io.Closer it is closed when the fetch ends.
type ProgressFunc func(source string, size int64) io.Writer

// Fetcher reads assets from local paths and http(s) URLs.
type Fetcher struct {
	client   *http.Client
	cache    *Cache
	inflight singleflight.Group

	// Progress, when set, is attached to every remote download.
	Progress ProgressFunc
}

// NewFetcher creates a fetcher. A nil client uses http.DefaultClient.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		client: client,
		cache:  NewCache(),
	}
}

// Cache returns the fetcher's cache.
func (f *Fetcher) Cache() *Cache {
	return f.cache
}

// Fetch returns the contents of source. Failures are *LoadError.
// Concurrent fetches of the same source share one read or download.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if data, ok := f.cache.Get(source); ok {
		logger.Debug("asset cache hit", zap.String("source", source))
		return data, nil
	}

	v, err, shared := f.inflight.Do(source, func() (any, error) {
		// A flight that finished between the miss above and Do already
		// filled the cache.
		if data, ok := f.cache.lookup(source); ok {
			return data, nil
		}

		var data []byte
		var err error
		if isRemote(source) {
			data, err = f.fetchRemote(ctx, source)
		} else {
			data, err = f.fetchLocal(source)
		}
		if err != nil {
			return nil, err
		}

		f.cache.Set(source, data)
		logger.Debug("asset fetched",
			zap.String("source", source),
			zap.Int("bytes", len(data)),
		)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("asset fetch shared", zap.String("source", source))
	}
	return v.([]byte), nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (f *Fetcher) fetchLocal(source string) ([]byte, error) {
	path := strings.TrimPrefix(source, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return data, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadError{
			Source: source,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var body io.Reader = resp.Body
	if f.Progress != nil {
		if w := f.Progress(source, resp.ContentLength); w != nil {
			if c, ok := w.(io.Closer); ok {
				defer c.Close()
			}
			body = io.TeeReader(resp.Body, w)
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("reading body: %w", err)}
	}
	return data, nil
}

// Cache is a simple in-memory cache for fetched assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// lookup reads an item without touching the stats.
func (c *Cache) lookup(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
