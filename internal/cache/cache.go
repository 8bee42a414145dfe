// Package cache tracks which units were already driven to a stable
// state, so repeat runs can skip unchanged files. The cache maps a
// unit's path to the hash of its fully rewritten text: when the text on
// disk already carries that hash, running the engine again would be a
// no-op by the idempotence property, so the unit is skipped outright.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Entry records one stable unit.
type Entry struct {
	Hash    string    `msgpack:"hash"`
	Updated time.Time `msgpack:"updated"`
}

// Cache is a persistent path -> Entry map. Safe for concurrent use.
type Cache struct {
	path string

	mu      sync.Mutex
	entries map[string]Entry
	dirty   bool
}

// Load reads the cache at path. A missing or unreadable file yields an
// empty cache; the cache is an optimization, never a correctness
// dependency.
func Load(path string) *Cache {
	c := &Cache{
		path:    path,
		entries: map[string]Entry{},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	if err := msgpack.Unmarshal(raw, &c.entries); err != nil {
		// a corrupt cache is discarded and rebuilt
		c.entries = map[string]Entry{}
	}
	return c
}

// Stable reports whether unitPath's current text matches its recorded
// stable hash.
func (c *Cache) Stable(unitPath, text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[unitPath]
	return ok && entry.Hash == hashText(text)
}

// MarkStable records text as unitPath's stable form.
func (c *Cache) MarkStable(unitPath, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[unitPath] = Entry{
		Hash:    hashText(text),
		Updated: time.Now().UTC(),
	}
	c.dirty = true
}

// Save persists the cache when it changed.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}
	if c.path == "" {
		return errors.New("cache has no backing file")
	}

	raw, err := msgpack.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	c.dirty = false
	return nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
