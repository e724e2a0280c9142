package viewer

import (
	"html"
	"regexp"
	"sync"

	"github.com/ezppt/deckview/internal/backend"
)

// Cache maps slide filenames to display-ready markup. Entries are never
// evicted; a successful save overwrites the entry for its file.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns the cached markup for file.
func (c *Cache) Get(file string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	markup, ok := c.entries[file]
	return markup, ok
}

// Put stores markup for file, replacing any previous entry.
func (c *Cache) Put(file, markup string) {
	c.mu.Lock()
	c.entries[file] = markup
	c.mu.Unlock()
}

// Add stores markup only when file has no entry yet. Fetch results use Add
// so that a slow fetch never clobbers content written by a save.
func (c *Cache) Add(file, markup string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[file]; ok {
		return false
	}
	c.entries[file] = markup
	return true
}

// Len returns the number of cached slides.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var headTag = regexp.MustCompile(`(?i)<head[^>]*>`)

// InjectBaseURL inserts <base href="base"> immediately after the first
// opening head tag so relative asset references in a slide resolve against
// the project's asset directory. Markup without a head tag is returned
// unchanged.
func InjectBaseURL(markup, base string) string {
	loc := headTag.FindStringIndex(markup)
	if loc == nil {
		return markup
	}
	tag := `<base href="` + html.EscapeString(base) + `">`
	return markup[:loc[1]] + tag + markup[loc[1]:]
}

// AssetBase returns the base URL injected into a project's slides.
func AssetBase(project string) string {
	return backend.AssetBase(project)
}
