package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.senan.xyz/table/table"

	lrcfetch "github.com/WouterJac/lrc-lyric-fetcher"
	"github.com/WouterJac/lrc-lyric-fetcher/cmd/internal/lrcflag"
	"github.com/WouterJac/lrc-lyric-fetcher/lrcfile"
	"github.com/WouterJac/lrc-lyric-fetcher/notifications"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] <path>\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Fetches synced lyrics from LRCLIB for every track under <path> and saves them as .lrc files next to the audio.\n")
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

func main() {
	defer lrcflag.Logging()()
	lrcflag.DefaultClient()
	var (
		cfg    = lrcflag.Config()
		notifs = lrcflag.Notifications()
	)
	args := lrcflag.Parse()

	if len(args) != 1 {
		flag.Usage()
		slog.Error("need a single path", "args", args)
		return
	}
	root := args[0]
	if _, err := os.Stat(root); err != nil {
		slog.Error("path does not exist", "path", root, "err", err)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	counters, err := lrcfetch.ProcessLibrary(ctx, *cfg, reporter{}, root)
	if errors.Is(ctx.Err(), context.Canceled) {
		slog.WarnContext(ctx, "interrupted, stopped early")
	}

	t := table.NewStringWriter()
	fmt.Fprintf(t, "total tracks\t%d\n", counters.Total)
	fmt.Fprintf(t, "downloaded\t%d\n", counters.Success)
	fmt.Fprintf(t, "failed\t%d\n", counters.Failed)
	fmt.Fprintf(t, "skipped\t%d\n", counters.Skipped)
	fmt.Fprintf(t, "cache\t%s\n", cfg.CachePath)
	fmt.Print(t.String())

	if err != nil {
		notifs.Sendf(ctx, notifications.Error, "lyrics fetch in %q failed: %v", root, err)
		slog.ErrorContext(ctx, "processing library", "root", root, "err", err)
		return
	}

	notifs.Sendf(ctx, notifications.Complete, "lyrics fetch in %q finished: %d downloaded, %d failed, %d skipped",
		root, counters.Success, counters.Failed, counters.Skipped)
	slog.InfoContext(ctx, "finished", "took", time.Since(start).Truncate(time.Millisecond))
}

type reporter struct{}

func (reporter) TrackDone(ctx context.Context, r lrcfetch.TrackResult) {
	switch r.Status {
	case lrcfetch.StatusSuccess:
		slog.InfoContext(ctx, "saved lyrics", "track", r.Track, "path", lrcfile.Path(r.Track.Path), "synced", r.Synced)
	case lrcfetch.StatusFailed:
		if r.Err != nil {
			slog.WarnContext(ctx, "lyrics lookup failed", "track", r.Track, "err", r.Err)
			return
		}
		slog.WarnContext(ctx, "no lyrics found", "track", r.Track)
	case lrcfetch.StatusSkipped:
		slog.DebugContext(ctx, "skipped track", "track", r.Track, "reason", r.SkipReason)
	}
}

func (reporter) AlbumDone(ctx context.Context, r lrcfetch.AlbumResult) {
	slog.InfoContext(ctx, "finished album",
		"album", r.Album, "progress", fmt.Sprintf("%d/%d", r.Index, r.Total),
		"total", r.Counters.Total, "success", r.Counters.Success, "failed", r.Counters.Failed, "skipped", r.Counters.Skipped)
}
