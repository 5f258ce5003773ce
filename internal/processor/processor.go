package processor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
)

var discardLogger = slog.New(slog.DiscardHandler)

// Stripper removes metadata from one classified file. Failures are reported
// in the result, never returned or panicked.
type Stripper interface {
	Strip(ctx context.Context, file MediaFile) StripResult
}

type Options struct {
	// Workers bounds how many files are stripped at once. Values below 1
	// mean 1, which processes files strictly one after another.
	Workers     int
	PreserveICC bool
	Transcoder  Transcoder
	// LockDir holds the per-root batch lock; empty means os.TempDir().
	LockDir     string
	DisableLock bool
	Logger      *slog.Logger
}

// Pipeline walks a tree and strips every supported file in it.
type Pipeline struct {
	workers int
	images  Stripper
	videos  Stripper
	walker  Walker
	lockDir string
	useLock bool
	logger  *slog.Logger
}

func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger
	}
	transcoder := opts.Transcoder
	if transcoder == nil {
		transcoder = FFmpeg{}
	}

	return &Pipeline{
		workers: max(opts.Workers, 1),
		images:  &ImageStripper{PreserveICC: opts.PreserveICC, Logger: logger},
		videos:  &VideoStripper{Transcoder: transcoder, Logger: logger},
		walker:  Walker{Logger: logger},
		lockDir: opts.LockDir,
		useLock: !opts.DisableLock,
		logger:  logger,
	}
}

// Run strips every file under root and reports to sink. It returns an error
// without emitting any event when the root cannot be walked or locked. When
// ctx is cancelled, files not yet started are left alone, OnComplete still
// fires, and the context error is returned with the partial summary.
func (p *Pipeline) Run(ctx context.Context, root string, sink Sink) (Summary, error) {
	if sink == nil {
		sink = MultiSink{}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrDirectoryUnreadable, err)
	}
	summary := Summary{Root: absRoot, Failures: []FailedFile{}}

	// Walk checks the root up front; the traversal itself runs under the lock.
	files, err := p.walker.Walk(absRoot)
	if err != nil {
		return summary, err
	}

	if p.useLock {
		lock, err := acquireRootLock(p.lockDir, absRoot)
		if err != nil {
			return summary, err
		}
		defer func() {
			if err := lock.release(); err != nil {
				p.logger.Warn("failed to release batch lock", "path", lock.path, "error", err)
			}
		}()
	}

	paths := slices.Collect(files)

	progress := ProgressState{Total: len(paths)}
	summary.Total = progress.Total
	if st, ok := sink.(Starter); ok {
		st.OnStart(progress.Total)
	}
	p.logger.Info("batch started", "root", absRoot, "files", progress.Total, "workers", p.workers)

	type job struct {
		index int
		file  MediaFile
	}
	type done struct {
		index  int
		result StripResult
	}

	jobs := make(chan job)
	results := make(chan done)

	var wg sync.WaitGroup
	for range min(p.workers, max(len(paths), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- done{index: j.index, result: p.process(ctx, j.file)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, path := range paths {
			if ctx.Err() != nil {
				return
			}
			select {
			case jobs <- job{index: i, file: Classify(path)}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Results arrive in completion order; hold them until every earlier file
	// has been reported so sinks always see walk order.
	pending := make(map[int]StripResult)
	next := 0
	for d := range results {
		pending[d.index] = d.result
		for {
			res, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			summary.record(res)
			progress.Completed++
			sink.OnFileResult(res)
			sink.OnProgress(progress.Completed, progress.Total)
		}
	}

	summary.Cancelled = progress.Completed < progress.Total
	sink.OnComplete(summary)

	if summary.Cancelled {
		p.logger.Warn("batch cancelled", "completed", progress.Completed, "total", progress.Total)
		return summary, ctx.Err()
	}
	return summary, nil
}

func (p *Pipeline) process(ctx context.Context, file MediaFile) (res StripResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("stripper panicked", "path", file.Path, "panic", r)
			res = failed(file, fmt.Errorf("internal error while stripping: %v", r))
		}
	}()

	switch file.Kind {
	case KindImage:
		return p.images.Strip(ctx, file)
	case KindVideo:
		return p.videos.Strip(ctx, file)
	default:
		return skipped(file)
	}
}
