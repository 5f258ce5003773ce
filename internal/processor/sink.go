package processor

import (
	"context"
	"log/slog"
)

// Sink receives pipeline events. All calls for one batch come from a single
// goroutine, in file order, and OnComplete is called exactly once.
type Sink interface {
	OnFileResult(StripResult)
	OnProgress(completed, total int)
	OnComplete(Summary)
}

// Starter is implemented by sinks that want the file count before the first
// result arrives.
type Starter interface {
	OnStart(total int)
}

// EventKind tags an Event.
type EventKind int

const (
	EventStart EventKind = iota
	EventFileResult
	EventProgress
	EventComplete
)

// Event is the channel form of a Sink call.
type Event struct {
	Kind     EventKind
	Result   StripResult
	Progress ProgressState
	Summary  Summary
}

// ChannelSink forwards every call as an Event. Sends block, so the consumer
// must keep draining until it has seen EventComplete.
type ChannelSink chan<- Event

func (c ChannelSink) OnStart(total int) {
	c <- Event{Kind: EventStart, Progress: ProgressState{Total: total}}
}

func (c ChannelSink) OnFileResult(res StripResult) {
	c <- Event{Kind: EventFileResult, Result: res}
}

func (c ChannelSink) OnProgress(completed, total int) {
	c <- Event{Kind: EventProgress, Progress: ProgressState{Total: total, Completed: completed}}
}

func (c ChannelSink) OnComplete(summary Summary) {
	c <- Event{Kind: EventComplete, Summary: summary}
}

// LogSink writes one structured log line per file and one for the batch.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) logger() *slog.Logger {
	if s.Logger == nil {
		return discardLogger
	}
	return s.Logger
}

func (s LogSink) OnFileResult(res StripResult) {
	switch res.Outcome {
	case OutcomeSuccess:
		attrs := []any{"path", res.Path, "kind", res.Kind.String()}
		if len(res.Removed) > 0 {
			attrs = append(attrs, "removed", res.Removed)
		}
		s.logger().Info("removed metadata", attrs...)
	case OutcomeFailure:
		s.logger().Error("failed to remove metadata", "path", res.Path, "kind", res.Kind.String(), "error", res.Detail)
	default:
		s.logger().Warn("unsupported file type", "path", res.Path)
	}
}

func (s LogSink) OnProgress(completed, total int) {
	s.logger().Debug("progress", "completed", completed, "total", total)
}

func (s LogSink) OnComplete(summary Summary) {
	level := slog.LevelInfo
	if !summary.OK() {
		level = slog.LevelWarn
	}
	s.logger().Log(context.Background(), level, "batch complete",
		"processed", summary.Processed,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"unsupported", summary.Unsupported,
		"cancelled", summary.Cancelled,
	)
}

// MultiSink fans every call out to each sink in order.
type MultiSink []Sink

func (m MultiSink) OnStart(total int) {
	for _, s := range m {
		if st, ok := s.(Starter); ok {
			st.OnStart(total)
		}
	}
}

func (m MultiSink) OnFileResult(res StripResult) {
	for _, s := range m {
		s.OnFileResult(res)
	}
}

func (m MultiSink) OnProgress(completed, total int) {
	for _, s := range m {
		s.OnProgress(completed, total)
	}
}

func (m MultiSink) OnComplete(summary Summary) {
	for _, s := range m {
		s.OnComplete(summary)
	}
}
