package testcmds

import (
	"embed"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/WouterJac/lrc-lyric-fetcher/tags"
)

//go:embed testdata/responses
var responses embed.FS

// LRCLib serves LRCLIB search responses from testdata/responses/lrclib, one file per
// "<artist>/<title>.json" slug. Searches with no file get an empty result list.
func LRCLib() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" {
			http.NotFound(w, r)
			return
		}
		artist, title := r.URL.Query().Get("artist_name"), r.URL.Query().Get("track_name")
		name := path.Join("testdata/responses/lrclib", slug(artist), slug(title)+".json")

		data, err := responses.ReadFile(name)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			data = []byte("[]")
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	})
}

var slugReplacer = strings.NewReplacer(" ", "-", "/", "-", ".", "-")

func slug(s string) string {
	return slugReplacer.Replace(strings.ToLower(s))
}

func Tag() {
	flag.Parse()

	op := flag.Arg(0)
	switch op {
	case "write", "check":
	default:
		log.Fatalf("bad op %s", op)
	}

	pat := flag.Arg(1)
	paths := parsePattern(pat)
	if len(paths) == 0 {
		log.Fatalf("no paths to match pattern")
	}

	pairs := parseTagMap(flag.Args()[2:])

	var exit int
	for _, p := range paths {
		switch op {
		case "write":
			if err := ensureFlac(p); err != nil {
				log.Fatalf("ensure flac: %v", err)
			}
		}

		t, err := tags.ReadTags(p)
		if err != nil {
			log.Fatalf("read tags: %v", err)
		}

		for k, vs := range pairs {
			switch op {
			case "write":
				t.Set(k, vs...)
			case "check":
				if got := t.Values(k); !slices.Equal(vs, got) {
					log.Printf("%s exp %q got %q", p, vs, got)
					exit = 1
				}
			}
		}

		if op == "write" {
			if err := tags.WriteTags(p, t); err != nil {
				log.Fatalf("write tags: %v", err)
			}
		}
	}

	os.Exit(exit)
}

func Find() {
	flag.Parse()

	paths := flag.Args()
	sort.Strings(paths)

	for _, p := range paths {
		err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			fmt.Println(filepath.Clean(path))
			return nil
		})
		if err != nil {
			log.Fatal(err)
		}
	}
}

func Touch() {
	flag.Parse()

	for _, p := range flag.Args() {
		if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
			log.Fatalf("mkdirall: %v", err)
		}
		f, err := os.Create(p)
		if err != nil {
			log.Fatalf("err creating: %v", err)
		}
		f.Close()
	}
}

func parsePattern(pat string) []string {
	// assume the file exists if the pattern doesn't look like a glob
	if !strings.ContainsAny(pat, "*?[") {
		return []string{pat}
	}
	paths, _ := filepath.Glob(pat)
	return paths
}

func parseTagMap(args []string) map[string][]string {
	r := make(map[string][]string)
	var k string
	for _, v := range args {
		if v == "," {
			k = ""
			continue
		}
		if k == "" {
			k = v
			r[k] = nil
			continue
		}
		r[k] = append(r[k], v)
	}
	return r
}

//go:embed testdata/empty.flac
var emptyFlac []byte

func ensureFlac(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("make parents: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open and trunc file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(emptyFlac); err != nil {
		return fmt.Errorf("write empty file: %w", err)
	}
	return nil
}
