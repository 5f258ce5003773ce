package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mediascrub/internal/config"
	"mediascrub/internal/deps"
	"mediascrub/internal/logging"
	"mediascrub/internal/processor"
	"mediascrub/internal/tui"
)

var (
	stripJSON        bool
	stripNoTUI       bool
	stripVerbose     bool
	stripWorkers     int
	stripFFmpeg      string
	stripPreserveICC bool
	stripNoLock      bool
)

var stripCmd = &cobra.Command{
	Use:   "strip [flags] <dir>",
	Short: "Strip metadata from every photo and video under a directory",
	Long: "strip walks <dir>, removes EXIF/XMP/IPTC blocks from JPEGs and container metadata from videos, " +
		"and replaces each original only after its clean copy is complete. Other files are reported as unsupported.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyStripFlags(cmd, cfg); err != nil {
			return err
		}
		root, err := config.ExpandPath(args[0])
		if err != nil {
			return fmt.Errorf("resolve directory: %w", err)
		}
		return runStrip(cmd, cfg, root)
	},
}

func init() {
	flags := stripCmd.Flags()
	flags.BoolVar(&stripJSON, "json", false, "print the summary as JSON")
	flags.BoolVar(&stripNoTUI, "no-tui", false, "log progress lines instead of the interactive view")
	flags.BoolVarP(&stripVerbose, "verbose", "v", false, "show ffmpeg's own error output as it runs")
	flags.IntVarP(&stripWorkers, "workers", "j", 0, "files to strip at once (overrides [pipeline] workers)")
	flags.StringVar(&stripFFmpeg, "ffmpeg", "", "ffmpeg executable (overrides [ffmpeg] binary)")
	flags.BoolVar(&stripPreserveICC, "preserve-icc", false, "keep ICC colour profiles in JPEGs")
	flags.BoolVar(&stripNoLock, "no-lock", false, "do not take the per-directory batch lock")

	rootCmd.AddCommand(stripCmd)
}

// applyStripFlags overrides config values only for flags set on the command line.
func applyStripFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Pipeline.Workers = stripWorkers
	}
	if flags.Changed("ffmpeg") {
		cfg.FFmpeg.Binary = stripFFmpeg
	}
	if flags.Changed("preserve-icc") {
		cfg.Image.PreserveICC = stripPreserveICC
	}
	if stripNoLock {
		cfg.Pipeline.Lock = false
	}
	return cfg.Validate()
}

func runStrip(cmd *cobra.Command, cfg *config.Config, root string) error {
	interactive := !stripNoTUI && !stripJSON && isTerminal(os.Stdout) && isTerminal(os.Stdin)

	console := cmd.ErrOrStderr()
	if interactive {
		console = nil
	}
	logger, closeLog, err := newLogger(cfg, console)
	if err != nil {
		return err
	}
	defer closeLog()
	logger, runID := logging.WithRunID(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	preflight(ctx, logger, cfg, root)

	ffmpeg := processor.FFmpeg{Binary: cfg.FFmpeg.Binary}
	if stripVerbose && !interactive {
		ffmpeg.Stderr = cmd.ErrOrStderr()
	}
	pipeline := processor.New(processor.Options{
		Workers:     cfg.Pipeline.Workers,
		PreserveICC: cfg.Image.PreserveICC,
		Transcoder:  ffmpeg,
		LockDir:     cfg.Pipeline.LockDir,
		DisableLock: !cfg.Pipeline.Lock,
		Logger:      logger,
	})

	var summary processor.Summary
	if interactive {
		summary, err = runInteractive(ctx, pipeline, root, logger)
	} else {
		summary, err = pipeline.Run(ctx, root, processor.LogSink{Logger: logger})
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if stripJSON {
		if err := writeJSON(cmd, stripReport{RunID: runID, Summary: summary}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSummary(summary))
	}

	if !summary.OK() {
		return errIncomplete
	}
	return nil
}

type stripReport struct {
	RunID string `json:"run_id"`
	processor.Summary
}

// preflight warns about problems that will fail files individually later.
func preflight(ctx context.Context, logger *slog.Logger, cfg *config.Config, root string) {
	for _, status := range deps.CheckBinaries(ctx, []deps.Requirement{deps.FFmpeg(cfg.FFmpeg.Binary)}) {
		if !status.Available {
			logger.Warn("ffmpeg not found, ensure it is installed and on PATH; videos will fail",
				"binary", status.Command,
				"detail", status.Detail,
			)
			continue
		}
		logger.Debug("dependency available", "name", status.Name, "path", status.Path, "version", status.Version)
	}
	if access := deps.CheckDirectoryAccess("root", root); !access.Available {
		logger.Warn("directory may not be writable", "detail", access.Detail)
	}
}

// runInteractive drives the bubbletea progress view from pipeline events.
// Pressing ctrl+c in the view cancels the batch at the next file boundary.
func runInteractive(ctx context.Context, pipeline *processor.Pipeline, root string, logger *slog.Logger) (processor.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan processor.Event, 64)
	program := tea.NewProgram(tui.NewModel(events, cancel), tea.WithoutSignalHandler())

	uiDone := make(chan struct{})
	go func() {
		defer close(uiDone)
		if _, err := program.Run(); err != nil {
			logger.Warn("progress view stopped", "error", err)
		}
		// Keep the pipeline unblocked if the view exits early.
		for range events {
		}
	}()

	sink := processor.MultiSink{processor.ChannelSink(events), processor.LogSink{Logger: logger}}
	summary, err := pipeline.Run(ctx, root, sink)
	// Closing also ends the view after a fatal root error, which emits no events.
	close(events)
	<-uiDone
	return summary, err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
