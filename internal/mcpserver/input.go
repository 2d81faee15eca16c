package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/xmltools/parser"
)

// docInput represents the two ways an XML document can be provided to a
// tool. Exactly one of File or Content must be set.
type docInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an XML file on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline XML document content"`
}

// policyInput carries optional per-call policy overrides. Zero values mean
// the server default applies.
type policyInput struct {
	AllowedTags       []string `json:"allowed_tags,omitempty"       jsonschema:"Allow-list of element names (empty allows all)"`
	AllowedAttributes []string `json:"allowed_attributes,omitempty" jsonschema:"Allow-list of attribute names (empty allows all)"`
	MaxDepth          int      `json:"max_depth,omitempty"          jsonschema:"Maximum element nesting depth"`
	MaxChildren       int      `json:"max_children,omitempty"       jsonschema:"Maximum children per element"`
	NoComments        bool     `json:"no_comments,omitempty"        jsonschema:"Reject documents containing comments"`
	NoCDATA           bool     `json:"no_cdata,omitempty"           jsonschema:"Reject documents containing CDATA sections"`
}

// isZero reports whether no override was supplied, which makes the parse
// result cacheable under the server default policy.
func (p policyInput) isZero() bool {
	return len(p.AllowedTags) == 0 && len(p.AllowedAttributes) == 0 &&
		p.MaxDepth == 0 && p.MaxChildren == 0 && !p.NoComments && !p.NoCDATA
}

// apply merges the overrides onto the server default policy.
func (p policyInput) apply() parser.Policy {
	policy := cfg.defaultPolicy()
	if len(p.AllowedTags) > 0 {
		policy.AllowedTags = p.AllowedTags
	}
	if len(p.AllowedAttributes) > 0 {
		policy.AllowedAttributes = p.AllowedAttributes
	}
	if p.MaxDepth > 0 {
		policy.MaxDepth = p.MaxDepth
	}
	if p.MaxChildren > 0 {
		policy.MaxChildren = p.MaxChildren
	}
	if p.NoComments {
		policy.AllowComments = false
	}
	if p.NoCDATA {
		policy.AllowCDATA = false
	}
	return policy
}

// cacheEntry holds a cached parse result with LRU ordering and TTL expiry.
type cacheEntry struct {
	result    *parser.ParseResult
	insertAt  time.Time
	expiresAt time.Time
}

// docCacheStore provides a session-scoped cache for parsed documents.
// File inputs are keyed by (absolutePath, modTime) so edits invalidate the
// entry. Content inputs are keyed by a SHA-256 hash. Entries carry per-type
// TTLs and a background sweeper removes expired entries.
type docCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var docCache = &docCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached result or nil. Expired entries are lazily removed.
func (c *docCacheStore) get(key string) *parser.ParseResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		// Touch entry for LRU.
		e.insertAt = time.Now()
		return e.result
	}
	return nil
}

// put stores a result, evicting the oldest entry if at capacity.
func (c *docCacheStore) put(key string, result *parser.ParseResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{result: result, insertAt: now, expiresAt: now.Add(ttl)}

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
func (c *docCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes
// expired entries. Safe to call multiple times; only the first call spawns
// a sweeper. It stops when ctx is cancelled.
func (c *docCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	var sweeping atomic.Bool
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !sweeping.CompareAndSwap(false, true) {
					continue
				}
				c.sweep()
				sweeping.Store(false)
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *docCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *docCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// makeCacheKey creates a cache key for the given document input. Returns
// an empty string when per-call overrides are in play, since results parsed
// under different policies must not be shared.
func makeCacheKey(d docInput, overrides policyInput) string {
	if !overrides.isZero() {
		return ""
	}

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
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case d.Content != "":
		h := sha256.Sum256([]byte(d.Content))
		return "content:" + hex.EncodeToString(h[:])
	default:
		return ""
	}
}

// resolve parses the document from whichever input was provided, using the
// session cache when the call carries no policy overrides.
func (d docInput) resolve(ctx context.Context, overrides policyInput) (*parser.ParseResult, error) {
	count := 0
	if d.File != "" {
		count++
	}
	if d.Content != "" {
		count++
	}
	if count != 1 {
		return nil, fmt.Errorf("exactly one of file or content must be provided (got %d)", count)
	}

	if d.Content != "" && int64(len(d.Content)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set XMLTOOLS_MAX_INLINE_SIZE to increase",
			len(d.Content), cfg.MaxInlineSize)
	}

	var key string
	var ttl time.Duration
	if cfg.CacheEnabled {
		key = makeCacheKey(d, overrides)
		if d.File != "" {
			ttl = cfg.CacheFileTTL
		} else {
			ttl = cfg.CacheContentTTL
		}
	}

	if key != "" {
		if cached := docCache.get(key); cached != nil {
			return cached, nil
		}
	}

	opts := []parser.Option{
		parser.WithContext(ctx),
		parser.WithPolicy(overrides.apply()),
		parser.WithExternalEntities(cfg.ExternalEntities),
	}
	if d.File != "" {
		opts = append(opts, parser.WithFilePath(d.File))
	} else {
		opts = append(opts, parser.WithContent(d.Content))
	}

	result, err := parser.ParseWithOptions(opts...)
	if err != nil {
		return nil, err
	}

	if key != "" {
		docCache.put(key, result, ttl)
	}

	return result, nil
}
