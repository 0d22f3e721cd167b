package main

import (
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/WouterJac/lrc-lyric-fetcher/cmd/internal/testing/testcmds"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"lrcfetch": func() int { main(); return 0 },
		"tag":      func() int { testcmds.Tag(); return 0 },
		"find":     func() int { testcmds.Find(); return 0 },
		"touch":    func() int { testcmds.Touch(); return 0 },
	}))
}

func TestScripts(t *testing.T) {
	t.Parallel()

	lrclib := httptest.NewServer(testcmds.LRCLib())
	t.Cleanup(lrclib.Close)

	testscript.Run(t, testscript.Params{
		Dir:                 "testdata/scripts",
		RequireExplicitExec: true,
		Setup: func(env *testscript.Env) error {
			env.Setenv("LRCFETCH_LRCLIB_BASE_URL", lrclib.URL+"/api/")
			return nil
		},
	})
}
