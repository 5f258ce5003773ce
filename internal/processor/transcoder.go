package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Transcoder writes a metadata-free, stream-copied version of input to output.
// Callers remove output when StripMetadata fails.
type Transcoder interface {
	StripMetadata(ctx context.Context, input, output string) error
}

// DefaultFFmpegBinary is used when no binary is configured.
const DefaultFFmpegBinary = "ffmpeg"

// maxStderr bounds how much transcoder output is kept as failure detail.
const maxStderr = 4 << 10

// FFmpeg runs the ffmpeg command-line tool.
type FFmpeg struct {
	// Binary is a name resolved on PATH or an explicit path.
	Binary string
	// Stderr, when set, also receives ffmpeg's diagnostic output as it runs.
	Stderr io.Writer
}

// Args returns the argument list, excluding the binary, used to strip input
// into output.
func (f FFmpeg) Args(input, output string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-i", input,
		"-map", "0",
		"-map_metadata", "-1",
		"-map_chapters", "-1",
		"-c", "copy",
		"-fflags", "+bitexact",
		"-y", output,
	}
}

func (f FFmpeg) binary() string {
	if bin := strings.TrimSpace(f.Binary); bin != "" {
		return bin
	}
	return DefaultFFmpegBinary
}

// LookPath resolves the configured binary.
func (f FFmpeg) LookPath() (string, error) {
	path, err := exec.LookPath(f.binary())
	if err != nil {
		return "", fmt.Errorf("%w: %q is not installed or not on PATH", ErrToolNotFound, f.binary())
	}
	return path, nil
}

// StripMetadata runs ffmpeg to completion. A started run is never killed by
// ctx cancellation; cancellation is honoured between files.
func (f FFmpeg) StripMetadata(ctx context.Context, input, output string) error {
	bin, err := f.LookPath()
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(context.WithoutCancel(ctx), bin, f.Args(input, output)...)

	var stderrBuf bytes.Buffer
	if f.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, f.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err = cmd.Run()
	if err == nil {
		return nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrToolNotFound, err)
	}
	return &ProcessError{Err: err, Stderr: tail(stderrBuf.String(), maxStderr)}
}

// ProcessError is a transcoder run that started but did not succeed.
type ProcessError struct {
	Err    error
	Stderr string
}

func (e *ProcessError) Error() string {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return fmt.Sprintf("exit status %d", exitErr.ExitCode())
	}
	return e.Err.Error()
}

func (e *ProcessError) Unwrap() error { return e.Err }

// tail keeps the last n bytes of s, trimmed of surrounding whitespace.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	s = s[len(s)-n:]
	if i := strings.IndexByte(s, '\n'); i >= 0 && i < len(s)-1 {
		s = s[i+1:]
	}
	return "..." + s
}
