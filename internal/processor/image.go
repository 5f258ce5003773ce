package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"mediascrub/pkg/sniff"
)

// ImageStripper removes metadata segments from JPEG files in place. Only the
// metadata segments are dropped; pixel data is never decoded or re-encoded.
type ImageStripper struct {
	PreserveICC bool
	Logger      *slog.Logger
}

// Strip reads the whole file before touching the disk so that a parse error
// can never leave a partially written file behind.
func (s *ImageStripper) Strip(ctx context.Context, file MediaFile) StripResult {
	logger := s.Logger
	if logger == nil {
		logger = discardLogger
	}

	info, err := os.Stat(file.Path)
	if err != nil {
		return failed(file, newStripError(ErrFileUnreadable, file.Path, err))
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		return failed(file, newStripError(ErrFileUnreadable, file.Path, err))
	}

	kind, err := sniff.SniffReader(bytes.NewReader(data))
	if err != nil && !errors.Is(err, sniff.ErrShortHeader) {
		return failed(file, newStripError(ErrFileUnreadable, file.Path, err))
	}
	if kind != sniff.KindJPEG {
		return failed(file, errorf(ErrFileUnreadable, file.Path, "not a JPEG file (detected %s)", kind))
	}

	categories := s.inspect(data, file.Path, logger)

	var out bytes.Buffer
	out.Grow(len(data))
	dropped, err := stripJPEG(bytes.NewReader(data), &out, s.PreserveICC)
	if err != nil {
		return failed(file, errorf(ErrFileUnreadable, file.Path, "parse JPEG: %w", err))
	}

	res := succeeded(file)
	if len(dropped) == 0 {
		logger.Debug("image already clean", "path", file.Path)
		return res
	}

	if err := writeReplace(file.Path, out.Bytes(), info.Mode().Perm()); err != nil {
		return failed(file, newStripError(ErrWriteFailure, file.Path, err))
	}

	res.Removed = append(dropped, categories...)
	res.BytesSaved = int64(len(data) - out.Len())
	logger.Debug("image stripped", "path", file.Path, "removed", res.Removed, "bytes_saved", res.BytesSaved)
	return res
}

// inspect reports the identifying EXIF categories present in data. Analysis
// problems are logged and otherwise ignored; they never block stripping.
func (s *ImageStripper) inspect(data []byte, path string, logger *slog.Logger) []string {
	analysis, err := analyzeExif(data)
	if err != nil {
		logger.Debug("exif analysis failed", "path", path, "error", err)
		return nil
	}
	return analysis.Categories()
}

// writeReplace writes data to a scratch file beside path and renames it over
// path. The scratch file is removed on every failure path.
func writeReplace(path string, data []byte, perm os.FileMode) (err error) {
	tmp := tempPath(path)
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = f.Chmod(perm); err != nil {
		_ = f.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return replaceFile(tmp, path)
}
