package processor

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// rootLock keeps two batches from rewriting the same tree at once. The lock
// file lives outside the tree so the walker never sees it.
type rootLock struct {
	path string
	lock *flock.Flock
}

func lockPathFor(dir, root string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	return filepath.Join(dir, "mediascrub-"+hex.EncodeToString(sum[:8])+".lock")
}

func acquireRootLock(dir, root string) (*rootLock, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := lockPathFor(dir, root)
	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrBatchLocked, path)
	}
	return &rootLock{path: path, lock: l}, nil
}

// release deletes the lock file while still holding it, then unlocks.
func (l *rootLock) release() error {
	if l == nil {
		return nil
	}
	rmErr := os.Remove(l.path)
	if errors.Is(rmErr, os.ErrNotExist) {
		rmErr = nil
	}
	return errors.Join(rmErr, l.lock.Unlock())
}
