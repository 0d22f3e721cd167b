package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WouterJac/lrc-lyric-fetcher/fileutil"
)

func TestReplaceExt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a/b/track.lrc", fileutil.ReplaceExt("a/b/track.flac", ".lrc"))
	assert.Equal(t, "a/b/01. track.lrc", fileutil.ReplaceExt("a/b/01. track.mp3", ".lrc"))
	assert.Equal(t, "track.lrc", fileutil.ReplaceExt("track", ".lrc"))
	assert.Equal(t, "a.b/track.lrc", fileutil.ReplaceExt("a.b/track.FLAC", ".lrc"))
}

func TestExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	assert.False(t, fileutil.Exists(path))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.True(t, fileutil.Exists(path))
	assert.False(t, fileutil.Exists(dir))
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	require.NoError(t, fileutil.WriteFileAtomic(path, []byte("one"), 0o644))
	require.NoError(t, fileutil.WriteFileAtomic(path, []byte("two"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name())
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nope", "a.txt")
	require.Error(t, fileutil.WriteFileAtomic(path, []byte("one"), 0o644))
}
