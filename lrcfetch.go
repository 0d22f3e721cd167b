package lrcfetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/WouterJac/lrc-lyric-fetcher/library"
	"github.com/WouterJac/lrc-lyric-fetcher/lrcfile"
	"github.com/WouterJac/lrc-lyric-fetcher/lyrics"
	"github.com/WouterJac/lrc-lyric-fetcher/negcache"
)

const DefaultWorkers = 5

type Config struct {
	Source lyrics.Source

	// Workers bounds the lookups running at once within one album
	Workers int

	Overwrite     bool
	AllowUnsynced bool

	CachePath string
}

type Status uint8

const (
	StatusSuccess Status = iota
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	}
	return fmt.Sprintf("Status(%d)", s)
}

type Counters struct {
	Total   int
	Success int
	Failed  int
	Skipped int
}

func (c *Counters) record(s Status) {
	c.Total++
	switch s {
	case StatusSuccess:
		c.Success++
	case StatusFailed:
		c.Failed++
	case StatusSkipped:
		c.Skipped++
	}
}

func (c *Counters) merge(o Counters) {
	c.Total += o.Total
	c.Success += o.Success
	c.Failed += o.Failed
	c.Skipped += o.Skipped
}

type TrackResult struct {
	Track  library.Track
	Status Status

	SkipReason SkipReason // set when skipped
	Synced     bool       // set on success

	// Err is the lookup or write error for a failed track. It is nil if the track
	// simply had no lyrics.
	Err error
}

type AlbumResult struct {
	Album        library.Album
	Index, Total int
	Counters     Counters
}

// Observer receives progress events. Implementations must be safe for concurrent use,
// TrackDone is called from worker goroutines.
type Observer interface {
	TrackDone(ctx context.Context, r TrackResult)
	AlbumDone(ctx context.Context, r AlbumResult)
}

type nopObserver struct{}

func (nopObserver) TrackDone(context.Context, TrackResult) {}
func (nopObserver) AlbumDone(context.Context, AlbumResult) {}

// ProcessLibrary fetches lyrics for every track under root. The negative cache at cfg.CachePath is
// loaded first and saved once at the end, also when ctx is cancelled part way through.
func ProcessLibrary(ctx context.Context, cfg Config, obs Observer, root string) (Counters, error) {
	cache, err := negcache.Load(cfg.CachePath)
	if err != nil {
		return Counters{}, fmt.Errorf("load cache: %w", err)
	}
	slog.DebugContext(ctx, "loaded cache", "path", cfg.CachePath, "entries", cache.Len())

	var tracks []library.Track
	for track, err := range library.Scan(root) {
		if err != nil {
			slog.WarnContext(ctx, "scanning library", "err", err)
			continue
		}
		tracks = append(tracks, track)
	}

	albums := library.GroupAlbums(tracks)
	slog.InfoContext(ctx, "scanned library", "root", root, "tracks", len(tracks), "albums", len(albums))

	counters := ProcessAlbums(ctx, cfg, cache, obs, albums)

	if err := cache.Save(cfg.CachePath); err != nil {
		return counters, fmt.Errorf("save cache: %w", err)
	}
	return counters, nil
}

// ProcessAlbums handles albums one after another. The tracks of an album are processed
// concurrently, bounded by cfg.Workers, and the album is finished before the next one starts.
func ProcessAlbums(ctx context.Context, cfg Config, cache *negcache.Cache, obs Observer, albums []library.Album) Counters {
	if obs == nil {
		obs = nopObserver{}
	}
	workers := max(cfg.Workers, 1)

	var global Counters
	for i, album := range albums {
		if ctx.Err() != nil {
			break
		}

		var t tally
		var g errgroup.Group
		g.SetLimit(workers)
		for _, track := range album.Tracks {
			g.Go(func() error {
				r := processTrack(ctx, cfg, cache, track)
				t.record(r.Status)
				obs.TrackDone(ctx, r)
				return nil
			})
		}
		_ = g.Wait()

		counters := t.snapshot()
		global.merge(counters)
		obs.AlbumDone(ctx, AlbumResult{Album: album, Index: i + 1, Total: len(albums), Counters: counters})
	}
	return global
}

func processTrack(ctx context.Context, cfg Config, cache *negcache.Cache, track library.Track) TrackResult {
	if reason, ok := Skip(track, cache, cfg.Overwrite); ok {
		return TrackResult{Track: track, Status: StatusSkipped, SkipReason: reason}
	}

	lyricData, err := cfg.Source.Search(ctx, lyrics.Query{
		Artist:     track.Artist,
		Title:      track.Title,
		Duration:   track.Duration,
		AllowPlain: cfg.AllowUnsynced,
	})
	if err != nil {
		// an interrupted run doesn't say anything about the track
		if ctx.Err() == nil {
			cache.Add(CacheKey(track))
		}
		if errors.Is(err, lyrics.ErrLyricsNotFound) {
			err = nil
		}
		return TrackResult{Track: track, Status: StatusFailed, Err: err}
	}

	if _, err := lrcfile.Write(track.Path, lyricData.Text); err != nil {
		return TrackResult{Track: track, Status: StatusFailed, Err: err}
	}
	return TrackResult{Track: track, Status: StatusSuccess, Synced: lyricData.Synced}
}

type tally struct {
	mu sync.Mutex
	c  Counters
}

func (t *tally) record(s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.c.record(s)
}

func (t *tally) snapshot() Counters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.c
}
