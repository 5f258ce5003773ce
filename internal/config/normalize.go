package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	// Bare names stay bare so they are resolved on PATH.
	if strings.ContainsAny(c.FFmpeg.Binary, `/\`) || strings.HasPrefix(c.FFmpeg.Binary, "~") {
		binary, err := expandPath(c.FFmpeg.Binary)
		if err != nil {
			return fmt.Errorf("ffmpeg.binary: %w", err)
		}
		c.FFmpeg.Binary = binary
	}

	var err error
	if c.Pipeline.LockDir, err = expandPath(strings.TrimSpace(c.Pipeline.LockDir)); err != nil {
		return fmt.Errorf("pipeline.lock_dir: %w", err)
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
