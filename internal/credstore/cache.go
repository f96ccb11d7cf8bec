package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"mammut/pkg/logging"
)

const (
	// FileMode is the permission set on every cache file.
	FileMode os.FileMode = 0600

	// DirMode is the permission used when creating the storage directory.
	DirMode os.FileMode = 0700
)

// Cache is a persistent map from string keys to values of type V.
//
// The in-memory map mirrors the last successful write. If a write fails the
// memory copy can be ahead of the file until the next successful mutation.
type Cache[V any] struct {
	mu      sync.RWMutex
	path    string
	entries map[string]V
}

// OpenCache loads the cache stored at path. A missing file yields an empty cache;
// a file that cannot be decoded is reported as an *IOError and left untouched.
func OpenCache[V any](path string) (*Cache[V], error) {
	c := &Cache[V]{
		path:    path,
		entries: make(map[string]V),
	}

	// #nosec G304 -- path is built from the configured storage directory
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Debug("CredStore", "No cache file at %s, starting empty", path)
		return c, nil
	}
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &c.entries); err != nil {
			return nil, &IOError{Op: "decode", Path: path, Err: err}
		}
		if c.entries == nil {
			c.entries = make(map[string]V)
		}
	}

	logging.Debug("CredStore", "Loaded %d entries from %s", len(c.entries), path)
	return c, nil
}

// Path returns the backing file of the cache.
func (c *Cache[V]) Path() string {
	return c.path
}

// Get returns the value stored under key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries[key]
	return v, ok
}

// Keys returns all keys in sorted order.
func (c *Cache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Set stores value under key and persists the whole map.
func (c *Cache[V]) Set(key string, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = value
	if err := c.persist(); err != nil {
		return err
	}

	logging.Debug("CredStore", "Stored entry %s in %s", key, c.path)
	return nil
}

// Remove deletes key and persists the whole map. Removing a missing key
// still rewrites the file.
func (c *Cache[V]) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	if err := c.persist(); err != nil {
		return err
	}

	logging.Debug("CredStore", "Removed entry %s from %s", key, c.path)
	return nil
}

// persist writes the map to a temporary file next to the target and renames
// it into place. Callers must hold c.mu.
func (c *Cache[V]) persist() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return &IOError{Op: "encode", Path: c.path, Err: err}
	}

	dir := filepath.Dir(c.path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(c.path), uuid.NewString()))

	if err := writeSynced(tmpPath, data); err != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "write", Path: c.path, Err: err}
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "write", Path: c.path, Err: err}
	}

	// The file may have existed with looser permissions before the rename.
	if err := os.Chmod(c.path, FileMode); err != nil {
		return &IOError{Op: "chmod", Path: c.path, Err: err}
	}

	return nil
}

func writeSynced(path string, data []byte) error {
	// #nosec G304 -- path is a fresh temp file in the storage directory
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FileMode)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
