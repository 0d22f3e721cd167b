package lrcfetch

import (
	"strings"

	"github.com/WouterJac/lrc-lyric-fetcher/library"
	"github.com/WouterJac/lrc-lyric-fetcher/lrcfile"
	"github.com/WouterJac/lrc-lyric-fetcher/negcache"
)

type SkipReason string

const (
	SkipCached         SkipReason = "cached as not found"
	SkipBlacklisted    SkipReason = "blacklisted title"
	SkipSidecarExists  SkipReason = "sidecar exists"
	SkipEmbeddedLyrics SkipReason = "embedded lyrics"
)

// title words for versions that rarely have their own lyrics
var titleBlacklist = []string{"live", "remix", "edit", "karaoke", "instrumental"}

func CacheKey(t library.Track) negcache.Key {
	return negcache.Key{Artist: t.Artist, Title: t.Title}
}

// Skip reports whether track should not be looked up, and why. The cheap checks come first.
func Skip(track library.Track, cache *negcache.Cache, overwrite bool) (SkipReason, bool) {
	if cache.Has(CacheKey(track)) {
		return SkipCached, true
	}
	if blacklisted(track.Title) {
		return SkipBlacklisted, true
	}
	if !overwrite && lrcfile.Exists(track.Path) {
		return SkipSidecarExists, true
	}
	if track.EmbeddedLyrics {
		return SkipEmbeddedLyrics, true
	}
	return "", false
}

func blacklisted(title string) bool {
	title = strings.ToLower(title)
	for _, w := range titleBlacklist {
		if strings.Contains(title, w) {
			return true
		}
	}
	return false
}
