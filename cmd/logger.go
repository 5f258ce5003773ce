package cmd

import (
	"io"
	"log/slog"

	"mediascrub/internal/config"
	"mediascrub/internal/logging"
)

// newLogger builds the command logger. console may be nil when another view
// owns the terminal; the log file still receives every line.
func newLogger(cfg *config.Config, console io.Writer) (*slog.Logger, func(), error) {
	var writers []io.Writer
	if console != nil {
		writers = append(writers, console)
	}

	closeFn := func() {}
	if cfg.Logging.File != "" {
		file, err := logging.OpenFile(cfg.Logging.File)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, file)
		closeFn = func() { _ = file.Close() }
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Writers: writers,
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return logger, closeFn, nil
}
