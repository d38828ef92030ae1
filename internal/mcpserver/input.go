package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/jsonschema"
	"github.com/erraggy/jsonschema/fetch"
	"github.com/erraggy/jsonschema/internal/options"
	"github.com/erraggy/jsonschema/internal/pathutil"
	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/repository"
	"github.com/erraggy/jsonschema/schema"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// documentInput represents the three ways a JSON or YAML document can be
// provided to a tool. Exactly one of File, URL, or Content must be set.
type documentInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a JSON or YAML file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch the document from (requires JSONSCHEMA_ALLOW_REMOTE)"`
	Content string `json:"content,omitempty" jsonschema:"Inline document content (JSON or YAML)"`
}

// loadedSchema is a schema dereferenced into its own repository together
// with every document it references. Tool calls sharing a cached entry
// hold mu while they use repo.
type loadedSchema struct {
	mu     sync.Mutex
	repo   *repository.Repository
	schema any
}

// cacheEntry holds a loaded schema with LRU ordering and TTL expiry.
type cacheEntry struct {
	loaded    *loadedSchema
	insertAt  time.Time
	expiresAt time.Time
}

// schemaCacheStore provides a session-scoped cache for loaded schemas.
// File inputs are keyed by (absolutePath, modTime). Content inputs are keyed
// by a SHA-256 hash. URL inputs are keyed by URL string.
// Entries have per-type TTLs and a background sweeper removes expired entries.
// A cached repository is only read after loading, so tools may share it.
type schemaCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var schemaCache = &schemaCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached schema or nil. Expired entries are lazily removed.
func (c *schemaCacheStore) get(key string) *loadedSchema {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		// Touch entry for LRU.
		e.insertAt = time.Now()
		return e.loaded
	}
	return nil
}

// putWithTTL stores a schema with a specific TTL, evicting the least
// recently used entry if at capacity.
func (c *schemaCacheStore) putWithTTL(key string, loaded *loadedSchema, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{loaded: loaded, insertAt: now, expiresAt: now.Add(ttl)}

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *schemaCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes expired entries.
// It is safe to call multiple times; only the first call spawns a sweeper.
// It stops when ctx is cancelled.
func (c *schemaCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *schemaCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *schemaCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remoteFetcher serves http and https documents for every tool call of the
// session. Private addresses are refused unless explicitly allowed.
var remoteFetcher = newRemoteFetcher()

func newRemoteFetcher() *fetch.Cache {
	h := fetch.NewHTTPFetcher(jsonschema.UserAgent(), cfg.FetchTimeout)
	if !cfg.AllowPrivateIPs {
		h.Client = newSafeHTTPClient(cfg.FetchTimeout)
	}
	return fetch.NewCache(h, cfg.CacheURLTTL, fetch.MaxCachedDocuments)
}

// validate checks that exactly one source is set and that inline content
// respects the size limit. name identifies the tool argument in errors.
func (d documentInput) validate(name string) error {
	if err := options.ValidateSingleInputSource(name,
		[]string{"file", "url", "content"},
		d.File != "", d.URL != "", d.Content != "",
	); err != nil {
		return err
	}
	if d.Content != "" && int64(len(d.Content)) > cfg.MaxInlineSize {
		return &schemaerrors.ConfigError{
			Option: name,
			Message: fmt.Sprintf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set JSONSCHEMA_MAX_INLINE_SIZE to increase",
				len(d.Content), cfg.MaxInlineSize),
		}
	}
	if d.URL != "" && !cfg.AllowRemote {
		return &schemaerrors.ConfigError{Option: name, Message: "url input is disabled; set JSONSCHEMA_ALLOW_REMOTE=true to enable it"}
	}
	return nil
}

// cacheKey creates a cache key for the input loaded with draft as default.
// Returns empty string when the input cannot be cached.
func (d documentInput) cacheKey(draft schema.Draft) string {
	var key string
	switch {
	case d.File != "":
		absPath, err := filepath.Abs(d.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return "" // Can't stat, don't cache.
		}
		key = fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case d.Content != "":
		h := sha256.Sum256([]byte(d.Content))
		key = "content:" + hex.EncodeToString(h[:])
	case d.URL != "":
		key = "url:" + d.URL
	default:
		return ""
	}
	return key + "|" + draft.String()
}

// fetcherFor returns the fetcher used for documents referenced from the
// input. Local files are confined to the directory of a file input.
func (d documentInput) fetcherFor() fetch.Fetcher {
	m := fetch.Multi{}
	if d.File != "" {
		files := &fetch.FileFetcher{Root: filepath.Dir(d.File)}
		m["file"] = files
		m[""] = files
	}
	if cfg.AllowRemote {
		m["http"] = remoteFetcher
		m["https"] = remoteFetcher
	}
	return m
}

// loadSchema dereferences the schema input and every document it
// references, using the cache for repeated inputs.
func (d documentInput) loadSchema(ctx context.Context, draft schema.Draft) (*loadedSchema, error) {
	if err := d.validate("schema"); err != nil {
		return nil, err
	}

	var key string
	var ttl time.Duration
	if cfg.CacheEnabled {
		key = d.cacheKey(draft)
		switch {
		case d.File != "":
			ttl = cfg.CacheFileTTL
		case d.URL != "":
			ttl = cfg.CacheURLTTL
		default:
			ttl = cfg.CacheContentTTL
		}
	}
	if key != "" {
		if cached := schemaCache.get(key); cached != nil {
			return cached, nil
		}
	}

	repo, err := repository.New(
		repository.WithLogger(schema.NewSlogAdapter(slog.Default())),
		repository.WithFetcher(d.fetcherFor()),
		repository.WithDefaultDraft(draft),
	)
	if err != nil {
		return nil, err
	}

	var s any
	switch {
	case d.File != "":
		docURI, err := pathutil.FileURI(d.File)
		if err != nil {
			return nil, err
		}
		if s, err = repo.Load(ctx, docURI); err != nil {
			return nil, err
		}
	case d.URL != "":
		if s, err = repo.Load(ctx, d.URL); err != nil {
			return nil, err
		}
	default:
		if s, err = jsonvalue.DecodeDocument([]byte(d.Content)); err != nil {
			return nil, err
		}
		if _, err := repo.Dereference(s); err != nil {
			return nil, err
		}
	}
	if err := repo.LoadReferenced(ctx); err != nil {
		return nil, err
	}

	loaded := &loadedSchema{repo: repo, schema: s}
	if key != "" {
		schemaCache.putWithTTL(key, loaded, ttl)
	}
	return loaded, nil
}

// loadInstance decodes the instance input. Instances are never cached.
func (d documentInput) loadInstance(ctx context.Context) (any, error) {
	if err := d.validate("instance"); err != nil {
		return nil, err
	}

	var data []byte
	var err error
	switch {
	case d.File != "":
		f := &fetch.FileFetcher{Root: filepath.Dir(d.File)}
		data, err = f.Fetch(ctx, filepath.Base(d.File))
	case d.URL != "":
		data, err = remoteFetcher.Fetch(ctx, d.URL)
	default:
		data = []byte(d.Content)
	}
	if err != nil {
		return nil, err
	}
	return jsonvalue.DecodeDocument(data)
}
