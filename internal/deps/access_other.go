//go:build !unix

package deps

import (
	"errors"
	"io"
	"os"
)

// Without access(2) the best available probe is listing the directory.
func checkAccess(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
