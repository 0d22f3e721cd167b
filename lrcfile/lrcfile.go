// Package lrcfile reads and writes .lrc sidecar files stored next to audio files.
package lrcfile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/WouterJac/lrc-lyric-fetcher/fileutil"
)

const Ext = ".lrc"

// Path returns the sidecar path for audioPath: same directory and base name, with the .lrc extension.
func Path(audioPath string) string {
	return fileutil.ReplaceExt(audioPath, Ext)
}

func Exists(audioPath string) bool {
	return fileutil.Exists(Path(audioPath))
}

// Write stores text as the sidecar for audioPath. If a sidecar with the same content is already
// there nothing is written and changed is false.
func Write(audioPath string, text string) (changed bool, err error) {
	path := Path(audioPath)

	prev, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return false, fmt.Errorf("read existing: %w", err)
	case string(prev) == text:
		return false, nil
	default:
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(string(prev), text, false)
		slog.Debug("replacing sidecar", "path", path, "distance", dmp.DiffLevenshtein(diffs))
	}

	if err := fileutil.WriteFileAtomic(path, []byte(text), 0o644); err != nil {
		return false, fmt.Errorf("write sidecar: %w", err)
	}
	return true, nil
}
