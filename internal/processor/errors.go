package processor

import (
	"errors"
	"fmt"
	"strings"
)

// Failure classes. Per-file failures are reported as *StripError values that
// unwrap to one of these; only ErrDirectoryUnreadable and ErrBatchLocked abort
// a batch.
var (
	ErrDirectoryUnreadable    = errors.New("directory unreadable")
	ErrSubdirectoryUnreadable = errors.New("subdirectory unreadable")
	ErrFileUnreadable         = errors.New("file unreadable")
	ErrWriteFailure           = errors.New("write failure")
	ErrToolNotFound           = errors.New("transcoder not found")
	ErrTranscodeFailure       = errors.New("transcode failed")
	ErrBatchLocked            = errors.New("another batch is already running on this directory")
)

// StripError describes why a single file could not be stripped.
type StripError struct {
	Kind   error
	Path   string
	Err    error
	Output string
}

func (e *StripError) Error() string {
	var b strings.Builder
	switch {
	case e.Err == nil:
		b.WriteString(e.Kind.Error())
	case errors.Is(e.Err, e.Kind):
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(e.Kind.Error())
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Output != "" {
		b.WriteString("\n")
		b.WriteString(e.Output)
	}
	return b.String()
}

func (e *StripError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newStripError(kind error, path string, err error) *StripError {
	return &StripError{Kind: kind, Path: path, Err: err}
}

func errorf(kind error, path string, format string, args ...any) *StripError {
	return &StripError{Kind: kind, Path: path, Err: fmt.Errorf(format, args...)}
}
