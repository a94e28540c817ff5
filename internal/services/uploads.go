package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// StagedFileName is the name an upload is stored under in the staging
// directory: whitespace becomes "_" and directory parts are dropped.
func StagedFileName(original string) string {
	name := filepath.Base(filepath.Clean("/" + original))
	if name == "/" || name == "." {
		name = "avatar"
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
}

// SweepStaged removes regular files in dir last modified before now-maxAge.
// Such files belong to uploads whose request failed before the move.
func SweepStaged(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)

	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("read staging dir: %w", err)
	}

	cutoff := now.Add(-maxAge)
	removed := 0

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove staged file: %w", err)
		}
		removed++
	}

	return removed, nil
}
