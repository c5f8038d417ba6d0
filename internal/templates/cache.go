// Package templates resolves the page-template names referenced by a
// notebook's .pagedata sibling to a local PNG path, fetching from the
// device's fixed template directory on first use. The pattern mirrors the
// teacher's embedded-file cache: an in-memory map backed by on-disk copies
// that live for the session.
package templates

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nick8325/remarkable-fs/internal/cache"
	"github.com/nick8325/remarkable-fs/internal/transport"
)

// remoteDir is the fixed device directory template PNGs live under.
const remoteDir = "/usr/share/remarkable/templates"

// Blank is the literal .pagedata name meaning "no template for this page".
const Blank = "Blank"

// Cache maps template names to local file paths, populated lazily.
type Cache struct {
	transport transport.Transport
	dir       string
	paths     *cache.Cache[string]
}

// New returns a Cache that fetches misses via t and stores materialized
// PNGs under dir, which the caller is responsible for creating and for
// cleaning up when the session ends.
func New(t transport.Transport, dir string) *Cache {
	return &Cache{
		transport: t,
		dir:       dir,
		paths:     cache.New[string](0, 0),
	}
}

// Resolve returns the local path for name, or "" with a nil error for the
// Blank sentinel (meaning: draw no template for this page).
func (c *Cache) Resolve(name string) (string, error) {
	if name == "" || name == Blank {
		return "", nil
	}
	return c.paths.GetOrLoad(name, func() (string, error) {
		return c.fetch(name)
	})
}

func (c *Cache) fetch(name string) (string, error) {
	data, err := c.transport.ReadAll(remoteDir + "/" + name + ".png")
	if err != nil {
		return "", fmt.Errorf("templates: fetch %s: %w", name, err)
	}

	path := filepath.Join(c.dir, name+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("templates: cache %s: %w", name, err)
	}
	return path, nil
}
