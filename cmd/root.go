package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mediascrub/internal/config"
)

// errIncomplete signals exit status 1 after the command already printed why.
var errIncomplete = errors.New("incomplete")

var (
	configPath string
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:           "mediascrub",
	Short:         "mediascrub - strip identifying metadata from photos and videos",
	Long:          "mediascrub removes EXIF, XMP, IPTC and container metadata from every photo and video under a directory, replacing each file in place only once a clean copy exists.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errIncomplete) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also append log lines to this file")
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if level := strings.TrimSpace(logLevel); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if file := strings.TrimSpace(logFile); file != "" {
		expanded, err := config.ExpandPath(file)
		if err != nil {
			return nil, fmt.Errorf("resolve --log-file: %w", err)
		}
		cfg.Logging.File = expanded
	}
	return cfg, nil
}
