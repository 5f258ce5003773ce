package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"mediascrub/pkg/sniff"
)

// VideoStripper delegates container rewriting to a Transcoder and swaps the
// result in with a single rename.
type VideoStripper struct {
	Transcoder Transcoder
	Logger     *slog.Logger
}

func (s *VideoStripper) Strip(ctx context.Context, file MediaFile) StripResult {
	logger := s.Logger
	if logger == nil {
		logger = discardLogger
	}
	transcoder := s.Transcoder
	if transcoder == nil {
		transcoder = FFmpeg{}
	}

	info, err := os.Stat(file.Path)
	if err != nil {
		return failed(file, newStripError(ErrFileUnreadable, file.Path, err))
	}
	if !info.Mode().IsRegular() {
		return failed(file, errorf(ErrFileUnreadable, file.Path, "not a regular file"))
	}
	if err := checkContainer(file.Path); err != nil {
		return failed(file, err)
	}

	tmp := tempPath(file.Path)
	if err := transcoder.StripMetadata(ctx, file.Path, tmp); err != nil {
		removeTemp(tmp, logger)
		return failed(file, transcodeError(file.Path, err))
	}

	out, err := os.Stat(tmp)
	if err != nil || out.Size() == 0 {
		removeTemp(tmp, logger)
		return failed(file, errorf(ErrTranscodeFailure, file.Path, "transcoder reported success but produced no output"))
	}

	if err := os.Chmod(tmp, info.Mode().Perm()); err != nil {
		removeTemp(tmp, logger)
		return failed(file, errorf(ErrWriteFailure, file.Path, "chmod temp file: %w", err))
	}
	if err := replaceFile(tmp, file.Path); err != nil {
		removeTemp(tmp, logger)
		return failed(file, newStripError(ErrWriteFailure, file.Path, err))
	}

	res := succeeded(file)
	res.Removed = []string{"Container Metadata"}
	res.BytesSaved = info.Size() - out.Size()
	logger.Debug("video stripped", "path", file.Path, "bytes_saved", res.BytesSaved)
	return res
}

// checkContainer refuses files whose leading box is not an MP4 or QuickTime
// atom so a misnamed file never reaches the transcoder.
func checkContainer(path string) *StripError {
	kind, err := sniff.SniffFile(path)
	if err != nil && !errors.Is(err, sniff.ErrShortHeader) {
		return newStripError(ErrFileUnreadable, path, err)
	}
	if kind != sniff.KindISOBMFF {
		return errorf(ErrFileUnreadable, path, "not an MP4 or QuickTime container (detected %s)", kind)
	}
	return nil
}

func transcodeError(path string, err error) *StripError {
	if errors.Is(err, ErrToolNotFound) {
		return &StripError{
			Kind: ErrToolNotFound,
			Path: path,
			Err:  fmt.Errorf("%w; install ffmpeg or set [ffmpeg] binary in the config", err),
		}
	}

	se := newStripError(ErrTranscodeFailure, path, err)
	var pe *ProcessError
	if errors.As(err, &pe) {
		se.Output = pe.Stderr
	}
	return se
}

func removeTemp(path string, logger *slog.Logger) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to remove temp file", "path", path, "error", err)
	}
}
