package condaplan

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/albertocavalcante/go-condaplan/record"
)

// PackageCache reports which packages are already available locally, so that
// plans only download what is missing.
type PackageCache interface {
	IsCached(p *record.Package) bool
}

// Compile-time interface compliance checks
var _ PackageCache = NoopCache{}
var _ PackageCache = (*MemoryCache)(nil)
var _ PackageCache = DirCache{}

// NoopCache caches nothing; every package must be downloaded.
type NoopCache struct{}

// IsCached always returns false.
func (NoopCache) IsCached(*record.Package) bool { return false }

// MemoryCache is a thread-safe in-memory cache keyed by canonical name.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]struct{}
}

// NewMemoryCache creates a cache holding pkgs.
func NewMemoryCache(pkgs ...*record.Package) *MemoryCache {
	c := &MemoryCache{items: make(map[string]struct{})}
	for _, p := range pkgs {
		c.Put(p)
	}
	return c
}

// IsCached reports whether a package with p's canonical name was put.
func (c *MemoryCache) IsCached(p *record.Package) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[p.CanonicalName()]
	return ok
}

// Put marks p as cached.
func (c *MemoryCache) Put(p *record.Package) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[p.CanonicalName()] = struct{}{}
}

// Len returns the number of cached packages.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// DirCache looks for packages in package cache directories. A package is
// cached when a directory holds its archive or its extracted directory.
type DirCache struct {
	Dirs []string
}

// IsCached reports whether any directory holds p.
func (c DirCache) IsCached(p *record.Package) bool {
	for _, dir := range c.Dirs {
		if fileExists(filepath.Join(dir, p.Filename())) {
			return true
		}
		if info, err := os.Stat(filepath.Join(dir, p.CanonicalName())); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
