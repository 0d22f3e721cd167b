package lrcflag

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.senan.xyz/flagconf"

	lrcfetch "github.com/WouterJac/lrc-lyric-fetcher"
	"github.com/WouterJac/lrc-lyric-fetcher/clientutil"
	"github.com/WouterJac/lrc-lyric-fetcher/lyrics"
	"github.com/WouterJac/lrc-lyric-fetcher/notifications"
)

// Logging sets up the default slog logger. The returned exit func exits with status 1 if
// anything was logged at error level.
func Logging() (exit func()) {
	var logLevel slog.LevelVar
	flag.TextVar(&logLevel, "log-level", &logLevel, "Set the logging level")

	h := &slogErrorHandler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &logLevel}),
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(slog.LevelError)

	return func() {
		if h.hadSlogError.Load() {
			os.Exit(1)
		}
		os.Exit(0)
	}
}

type slogErrorHandler struct {
	slog.Handler
	hadSlogError atomic.Bool
}

func (n *slogErrorHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level == slog.LevelError {
		n.hadSlogError.Store(true)
	}
	return n.Handler.Handle(ctx, r)
}

func DefaultClient() {
	chain := clientutil.Chain(
		clientutil.WithLogging(slog.Default()),
		clientutil.WithUserAgent(fmt.Sprintf(`%s/%s`, lrcfetch.Name, lrcfetch.Version)),
	)

	http.DefaultTransport = chain(http.DefaultTransport)
}

// Parse parses the command line, then the environment and config file, and returns the
// positional arguments. Flags may come after positional arguments.
func Parse() []string {
	userConfig, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}

	defaultConfigPath := filepath.Join(userConfig, lrcfetch.Name, "config")
	configPath := flag.String("config-path", defaultConfigPath, "Path to config file")

	printVersion := flag.Bool("version", false, "Print the version and exit")
	printConfig := flag.Bool("config", false, "Print the parsed config and exit")

	args, err := parseInterspersed(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(flag.CommandLine.Output(), err)
		os.Exit(2)
	}
	flagconf.ReadEnvPrefix = func(_ *flag.FlagSet) string { return lrcfetch.Name }
	flagconf.ParseEnv()
	flagconf.ParseConfig(*configPath)

	if *printVersion {
		fmt.Printf("%s %s\n", flag.CommandLine.Name(), lrcfetch.Version)
		os.Exit(0)
	}
	if *printConfig {
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("%-20s %s\n", f.Name, f.Value)
		})
		os.Exit(0)
	}
	return args
}

func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		// everything after a "--" is positional
		if n := len(args) - len(rest); n > 0 && args[n-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func Config() *lrcfetch.Config {
	var cfg lrcfetch.Config

	flag.BoolVar(&cfg.Overwrite, "overwrite", false, "Fetch and overwrite lyrics even if a .lrc file already exists")
	flag.BoolVar(&cfg.AllowUnsynced, "unsynced", false, "Accept plain lyrics when no synced lyrics are found")
	flag.IntVar(&cfg.Workers, "workers", lrcfetch.DefaultWorkers, "Number of lookups to run at once within an album")
	flag.StringVar(&cfg.CachePath, "cache-path", ".failed_lyrics_cache.json", "Path to the cache of tracks with no lyrics")

	var src lyrics.LRCLib
	flag.StringVar(&src.BaseURL, "lrclib-base-url", `https://lrclib.net/api/`, "LRCLIB base URL")
	flag.DurationVar(&src.RateLimit, "lrclib-rate-limit", 0, "LRCLIB rate limit duration")
	flag.DurationVar(&src.Timeout, "lrclib-timeout", lyrics.DefaultTimeout, "Deadline for a single LRCLIB lookup")
	cfg.Source = &src

	return &cfg
}

func Notifications() *notifications.Notifications {
	n := notifications.Notifications{Title: lrcfetch.Name}
	flag.Var(&notificationsParser{&n}, "notification-uri", "Add a shoutrrr notification URI for an event, eg \"complete,error uri\" (stackable)")
	return &n
}

var _ flag.Value = (*notificationsParser)(nil)

type notificationsParser struct{ *notifications.Notifications }

func (n *notificationsParser) Set(value string) error {
	eventsRaw, uri, ok := strings.Cut(value, " ")
	if !ok {
		return fmt.Errorf("invalid notification uri format. expected eg \"ev1,ev2 uri\"")
	}
	var lineErrs []error
	for _, ev := range strings.Split(eventsRaw, ",") {
		ev, uri = strings.TrimSpace(ev), strings.TrimSpace(uri)
		err := n.AddURI(notifications.Event(ev), uri)
		lineErrs = append(lineErrs, err)
	}
	return errors.Join(lineErrs...)
}
func (n notificationsParser) String() string {
	if n.Notifications == nil {
		return ""
	}
	var parts []string
	n.Notifications.IterMappings(func(e notifications.Event, uri string) {
		url, _ := url.Parse(uri)
		parts = append(parts, fmt.Sprintf("%s: %s://%s/...", e, url.Scheme, url.Host))
	})
	return strings.Join(parts, ", ")
}

