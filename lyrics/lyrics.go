package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/WouterJac/lrc-lyric-fetcher/clientutil"
)

var ErrLyricsNotFound = errors.New("lyrics not found")

type Query struct {
	Artist, Title string
	Duration      time.Duration

	// AllowPlain accepts unsynced lyrics when no synced ones are available
	AllowPlain bool
}

type Lyrics struct {
	Text   string
	Synced bool
}

// Source finds lyrics for a track. It returns ErrLyricsNotFound when the source has nothing
// suitable, any other error means the lookup itself failed.
type Source interface {
	Search(ctx context.Context, q Query) (Lyrics, error)
}

type StatusError int

func (se StatusError) Error() string {
	return strconv.Itoa(int(se))
}

const DefaultTimeout = 15 * time.Second

type LRCLib struct {
	BaseURL   string
	RateLimit time.Duration
	Timeout   time.Duration

	initOnce   sync.Once
	HTTPClient *http.Client
}

func (c *LRCLib) Search(ctx context.Context, q Query) (Lyrics, error) {
	c.initOnce.Do(func() {
		c.HTTPClient = clientutil.Wrap(c.HTTPClient, clientutil.Chain(
			clientutil.WithCache(),
			clientutil.WithRateLimit(c.RateLimit),
		))
		if c.Timeout == 0 {
			c.Timeout = DefaultTimeout
		}
	})

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	urlV := url.Values{}
	urlV.Set("artist_name", q.Artist)
	urlV.Set("track_name", q.Title)
	if secs := int(q.Duration / time.Second); secs > 0 {
		urlV.Set("duration", strconv.Itoa(secs))
	}

	url, err := url.Parse(c.BaseURL)
	if err != nil {
		return Lyrics{}, fmt.Errorf("parse base url: %w", err)
	}
	url = url.JoinPath("search")
	url.RawQuery = urlV.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return Lyrics{}, fmt.Errorf("make request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Lyrics{}, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return Lyrics{}, fmt.Errorf("lrclib returned non 2xx: %w", StatusError(resp.StatusCode))
	}

	var candidates []Candidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return Lyrics{}, fmt.Errorf("decode response: %w", err)
	}

	lyrics, ok := Select(candidates, q.AllowPlain)
	if !ok {
		return Lyrics{}, ErrLyricsNotFound
	}
	return lyrics, nil
}

// Candidate is one search result from LRCLIB. Either lyrics field may be empty.
type Candidate struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// Select picks the first candidate with synced lyrics. Only if none have any, and allowPlain
// is set, the first candidate with plain lyrics is used instead.
func Select(candidates []Candidate, allowPlain bool) (Lyrics, bool) {
	for _, c := range candidates {
		if c.SyncedLyrics != "" {
			return Lyrics{Text: c.SyncedLyrics, Synced: true}, true
		}
	}
	if !allowPlain {
		return Lyrics{}, false
	}
	for _, c := range candidates {
		if c.PlainLyrics != "" {
			return Lyrics{Text: c.PlainLyrics}, true
		}
	}
	return Lyrics{}, false
}
