// Package negcache remembers artist and title pairs that had no lyrics, so later runs
// don't look them up again.
package negcache

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"

	"github.com/WouterJac/lrc-lyric-fetcher/fileutil"
)

// Key matches exactly, case included.
type Key struct {
	Artist, Title string
}

func (k Key) String() string {
	return k.Artist + " - " + k.Title
}

func compareKeys(a, b Key) int {
	return cmp.Or(
		cmp.Compare(a.Artist, b.Artist),
		cmp.Compare(a.Title, b.Title),
	)
}

// Cache is a set of Keys. It is safe for concurrent use.
type Cache struct {
	mu   sync.Mutex
	keys map[Key]struct{}
}

func New(keys ...Key) *Cache {
	c := &Cache{keys: make(map[Key]struct{}, len(keys))}
	for _, k := range keys {
		c.keys[k] = struct{}{}
	}
	return c
}

var ErrInvalidCache = errors.New("invalid cache file")

// Load reads the cache at path. A missing file gives an empty cache.
func Load(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}

	var entries [][]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCache, err)
	}

	keys := make([]Key, 0, len(entries))
	for i, e := range entries {
		if len(e) != 2 {
			return nil, fmt.Errorf("%w: entry %d has %d fields, want artist and title", ErrInvalidCache, i, len(e))
		}
		keys = append(keys, Key{Artist: e[0], Title: e[1]})
	}
	return New(keys...), nil
}

// Save writes every key as a sorted JSON array of [artist, title] pairs. The file is replaced
// atomically.
func (c *Cache) Save(path string) error {
	keys := c.Keys()

	entries := make([][2]string, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, [2]string{k.Artist, k.Title})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

func (c *Cache) Has(k Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.keys[k]
	return ok
}

func (c *Cache) Add(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.keys == nil {
		c.keys = map[Key]struct{}{}
	}
	c.keys[k] = struct{}{}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.keys)
}

// Keys returns every key sorted by artist then title.
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	keys := make([]Key, 0, len(c.keys))
	for k := range c.keys {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	slices.SortFunc(keys, compareKeys)
	return keys
}
