package processor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
)

// Walker enumerates candidate files below a root. Symlinks are never
// followed: symlinked directories are not entered and symlinked files are not
// yielded, so the walk cannot cycle. Entries are visited in lexical order.
type Walker struct {
	Logger *slog.Logger
}

// Walk opens root and returns a single-use sequence of the absolute paths of
// every regular file below it. Unreadable subdirectories are logged and
// skipped.
func (w Walker) Walk(root string) (iter.Seq[string], error) {
	logger := w.Logger
	if logger == nil {
		logger = discardLogger
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirectoryUnreadable, root, err)
	}

	dir, err := os.Open(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnreadable, err)
	}
	err = probeDir(dir)
	_ = dir.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirectoryUnreadable, absRoot, err)
	}

	// A root that is itself a symlink is followed; only links found below it
	// are not. The trailing separator makes WalkDir resolve the root.
	start := absRoot
	if li, err := os.Lstat(absRoot); err == nil && li.Mode()&fs.ModeSymlink != 0 {
		start = absRoot + string(filepath.Separator)
	}

	var used atomic.Bool
	return func(yield func(string) bool) {
		if used.Swap(true) {
			logger.Warn("walk sequence already consumed", "root", absRoot)
			return
		}

		_ = filepath.WalkDir(start, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if path == start {
					logger.Error("root became unreadable during walk", "root", absRoot, "error", walkErr)
					return walkErr
				}
				logger.Warn("skipping unreadable directory",
					"path", path,
					"error", fmt.Errorf("%w: %w", ErrSubdirectoryUnreadable, walkErr),
				)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if isTempName(d.Name()) {
				logger.Warn("ignoring leftover temp file from an interrupted run", "path", path)
				return nil
			}
			if !yield(path) {
				return fs.SkipAll
			}
			return nil
		})
	}, nil
}

// probeDir checks that dir is a directory whose entries can be listed.
func probeDir(dir *os.File) error {
	info, err := dir.Stat()
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("not a directory")
	}
	if _, err := dir.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
