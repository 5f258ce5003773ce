package processor

import (
	"os"
	"path/filepath"
)

// replaceFile renames tmpPath over destPath. Both must live in the same
// directory so the swap is a single rename; an observer sees either the old
// file or the new one. If the rename fails the original stays in place.
func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err != nil {
		return err
	}
	syncDir(filepath.Dir(destPath))
	return nil
}

// syncDir flushes the directory entry after a rename. Not every platform can
// open a directory for syncing, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
