package config

const (
	defaultFFmpegBinary = "ffmpeg"
	defaultWorkers      = 1
	maxWorkers          = 64
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultConfigPath   = "~/.config/mediascrub/config.toml"
	projectConfigName   = "mediascrub.toml"
)

// Default returns a Config populated with the values used when no file is
// present.
func Default() Config {
	return Config{
		FFmpeg: FFmpeg{Binary: defaultFFmpegBinary},
		Pipeline: Pipeline{
			Workers: defaultWorkers,
			Lock:    true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
