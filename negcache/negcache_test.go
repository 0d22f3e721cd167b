package negcache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	c, err := Load(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")

	c := New()
	c.Add(Key{"Zed", "b"})
	c.Add(Key{"Alice", "Song"})
	c.Add(Key{"Zed", "a"})
	c.Add(Key{"Alice", "Song"})
	require.NoError(t, c.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[
  [
    "Alice",
    "Song"
  ],
  [
    "Zed",
    "a"
  ],
  [
    "Zed",
    "b"
  ]
]
`, string(data))

	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Key{{"Alice", "Song"}, {"Zed", "a"}, {"Zed", "b"}}, c.Keys())
	assert.True(t, c.Has(Key{"Alice", "Song"}))
	assert.False(t, c.Has(Key{"alice", "song"}))
}

func TestSaveEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, New().Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestSaveUnescaped(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, New(Key{"Björk & Friends", "<Jóga>"}).Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Björk & Friends"`)
	assert.Contains(t, string(data), `"<Jóga>"`)
}

func TestLoadCorrupt(t *testing.T) {
	t.Parallel()

	for _, content := range []string{
		`not json`,
		`{"a": "b"}`,
		`[["only artist"]]`,
		`[["a", "b", "c"]]`,
		`[[1, 2]]`,
	} {
		path := filepath.Join(t.TempDir(), "cache.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		_, err := Load(path)
		require.ErrorIs(t, err, ErrInvalidCache, content)
	}
}

func TestMonotonic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, New(Key{"A", "1"}).Save(path))

	c, err := Load(path)
	require.NoError(t, err)
	c.Add(Key{"B", "2"})
	require.NoError(t, c.Save(path))

	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Key{{"A", "1"}, {"B", "2"}}, c.Keys())
}

func TestConcurrentAdd(t *testing.T) {
	t.Parallel()

	c := New()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(Key{"A", fmt.Sprint(i % 10)})
			c.Has(Key{"A", "0"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
}
