// Package library finds tracks in a music directory and groups them into albums.
package library

import (
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.senan.xyz/natcmp"

	"github.com/WouterJac/lrc-lyric-fetcher/tags"
)

const UnknownAlbum = "Unknown Album"

type Track struct {
	Path     string
	Artist   string
	Title    string
	Album    string
	Duration time.Duration

	// EmbeddedLyrics is true if the file already has a non empty lyrics tag
	EmbeddedLyrics bool
}

func (t Track) String() string {
	return fmt.Sprintf("%s · %s · %s", t.Artist, t.Album, t.Title)
}

func IsAudio(path string) bool {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3", ".flac", ".m4a", ".ogg", ".wav":
		return true
	}
	return false
}

// ReadTrack extracts a Track from the file at path. ok is false if the file has no
// usable artist and title.
func ReadTrack(path string) (track Track, ok bool, err error) {
	t, err := tags.ReadTags(path)
	if err != nil {
		return Track{}, false, fmt.Errorf("read tags: %w", err)
	}
	props, err := tags.ReadProperties(path)
	if err != nil {
		return Track{}, false, fmt.Errorf("read properties: %w", err)
	}

	track = Track{
		Path:           path,
		Artist:         t.Get(tags.Artist),
		Title:          t.Get(tags.Title),
		Album:          t.Get(tags.Album),
		Duration:       props.Length.Truncate(time.Second),
		EmbeddedLyrics: strings.TrimSpace(t.Get(tags.Lyrics)) != "",
	}
	if track.Album == "" {
		track.Album = UnknownAlbum
	}
	if track.Artist == "" || track.Title == "" {
		return Track{}, false, nil
	}
	return track, true, nil
}

// Scan walks root and yields a Track for every readable audio file with an artist and title.
// Directory entries are visited in natural order. Undecodable files are skipped, unreadable
// directories are yielded as errors and the walk continues.
func Scan(root string) iter.Seq2[Track, error] {
	return func(yield func(Track, error) bool) {
		walk(root, yield)
	}
}

func walk(dir string, yield func(Track, error) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return yield(Track{}, fmt.Errorf("read dir: %w", err))
	}
	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		return natcmp.Compare(a.Name(), b.Name())
	})

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if !walk(path, yield) {
				return false
			}
			continue
		}
		if !IsAudio(path) || !isRegular(path, entry) {
			continue
		}

		track, ok, err := ReadTrack(path)
		if err != nil {
			slog.Debug("skipping undecodable file", "path", path, "err", err)
			continue
		}
		if !ok {
			slog.Debug("skipping file with no artist or title", "path", path)
			continue
		}
		if !yield(track, nil) {
			return false
		}
	}
	return true
}

// isRegular reports whether entry is a regular file, following a symlink to its target.
// Symlinked directories are not followed.
func isRegular(path string, entry os.DirEntry) bool {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("skipping broken symlink", "path", path, "err", err)
		return false
	}
	return info.Mode().IsRegular()
}

type AlbumKey struct {
	Artist, Album string
}

type Album struct {
	AlbumKey
	Tracks []Track
}

func (a Album) String() string {
	return fmt.Sprintf("%s · %s", a.Artist, a.Album)
}

// GroupAlbums groups tracks by artist and album. Albums are ordered by the first time their
// key is seen, tracks keep their input order.
func GroupAlbums(tracks []Track) []Album {
	index := map[AlbumKey]int{}
	var albums []Album
	for _, t := range tracks {
		key := AlbumKey{Artist: t.Artist, Album: t.Album}
		if i, ok := index[key]; ok {
			albums[i].Tracks = append(albums[i].Tracks, t)
			continue
		}
		index[key] = len(albums)
		albums = append(albums, Album{AlbumKey: key, Tracks: []Track{t}})
	}
	return albums
}
