package tags

import (
	"bytes"
	_ "embed"
	"io"
	"maps"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalise(t *testing.T) {
	t.Parallel()

	got := NewTags(
		"artist", "The Fall",
		"title", "Wings",
		"unsynced lyrics", "la la",
	)

	exp := map[string][]string{
		"ARTIST": {"The Fall"},
		"TITLE":  {"Wings"},
		"LYRICS": {"la la"},
	}

	require.Equal(t, exp, maps.Collect(got.Iter()))
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	var tags Tags
	assert.Equal(t, "", tags.Get(Artist))
	assert.Empty(t, tags.Values(Artist))
}

func TestReadWrite(t *testing.T) {
	t.Parallel()

	path := newFile(t, emptyFLAC, ".flac")
	withf(t, path, func(f *Tags) {
		f.Set(Artist, "The Fall")
		f.Set(Title, "Wings")
		f.Set(Album, "Perverted by Language")
	})
	withf(t, path, func(f *Tags) {
		assert.Equal(t, "The Fall", f.Get(Artist))
		assert.Equal(t, "Wings", f.Get(Title))
		assert.Equal(t, "Perverted by Language", f.Get(Album))
		assert.Equal(t, "", f.Get(Lyrics))
	})
}

func TestLyricsAlternative(t *testing.T) {
	t.Parallel()

	path := newFile(t, emptyFLAC, ".flac")
	withf(t, path, func(f *Tags) {
		f.t = map[string][]string{"UNSYNCEDLYRICS": {"I paid them off with stuffing from my wings"}}
	})

	tags, err := ReadTags(path)
	require.NoError(t, err)
	assert.Equal(t, "I paid them off with stuffing from my wings", tags.Get(Lyrics))
}

func TestDoubleSave(t *testing.T) {
	t.Parallel()

	path := newFile(t, emptyFLAC, ".flac")
	f, err := ReadTags(path)
	require.NoError(t, err)

	f.Set(Album, "a")
	require.NoError(t, ReplaceTags(path, f))
	f.Set(Album, "b")
	require.NoError(t, ReplaceTags(path, f))
	f.Set(Album, "c")
	require.NoError(t, WriteTags(path, f))

	f, err = ReadTags(path)
	require.NoError(t, err)
	assert.Equal(t, "c", f.Get(Album))
}

func TestWriteKeepsOtherTags(t *testing.T) {
	t.Parallel()

	path := newFile(t, emptyFLAC, ".flac")
	require.NoError(t, ReplaceTags(path, NewTags(Artist, "The Fall", Title, "Wings")))

	require.NoError(t, WriteTags(path, NewTags(Lyrics, "I paid them off")))
	f, err := ReadTags(path)
	require.NoError(t, err)
	assert.Equal(t, "The Fall", f.Get(Artist))
	assert.Equal(t, "Wings", f.Get(Title))
	assert.Equal(t, "I paid them off", f.Get(Lyrics))

	require.NoError(t, ReplaceTags(path, NewTags(Title, "Totally Wired")))
	f, err = ReadTags(path)
	require.NoError(t, err)
	assert.Equal(t, "", f.Get(Artist))
	assert.Equal(t, "", f.Get(Lyrics))
	assert.Equal(t, "Totally Wired", f.Get(Title))
}

func TestProperties(t *testing.T) {
	t.Parallel()

	path := newFile(t, emptyFLAC, ".flac")
	props, err := ReadProperties(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, props.Length.Truncate(time.Second))
}

func TestReadNotAudio(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.flac")
	require.NoError(t, os.WriteFile(path, []byte("not a flac"), 0o644))

	_, err := ReadTags(path)
	require.Error(t, err)
}

//go:embed testdata/empty.flac
var emptyFLAC []byte

func newFile(t *testing.T, data []byte, ext string) string {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "*"+ext)
	require.NoError(t, err)
	defer f.Close()

	_, err = io.Copy(f, bytes.NewReader(data))
	require.NoError(t, err)

	return f.Name()
}

func withf(t *testing.T, path string, fn func(*Tags)) {
	t.Helper()

	tags, err := ReadTags(path)
	require.NoError(t, err)

	fn(&tags)

	require.NoError(t, ReplaceTags(path, tags))
}
