package config

const (
	defaultConfigPath              = "~/.config/captionburn/config.toml"
	defaultUploadsDir              = "~/.local/share/captionburn/uploads"
	defaultOutputsDir              = "~/.local/share/captionburn/outputs"
	defaultFontsDir                = "~/.local/share/captionburn/fonts"
	defaultLogDir                  = "~/.local/share/captionburn/logs"
	defaultAPIBind                 = "127.0.0.1:5000"
	defaultFontFamily              = "Lilita One"
	defaultFontFile                = "LilitaOne-Regular.ttf"
	defaultFontSize                = 36
	defaultActiveColor             = "&H00FF00"
	defaultFFmpegBinary            = "ffmpeg"
	defaultMaxUploadMB             = 1024
	defaultNotifyRequestTimeout    = 10
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultMetricsEnabled          = true
	defaultNotifyOnSuccess         = true
	defaultNotifyOnFailure         = true
	defaultKeepSubtitleFile        = false
	defaultTranscodeTimeoutSeconds = 0
	defaultJobRetentionDays        = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadsDir: defaultUploadsDir,
			OutputsDir: defaultOutputsDir,
			FontsDir:   defaultFontsDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Style: Style{
			FontFamily:         defaultFontFamily,
			FontFile:           defaultFontFile,
			FontSize:           defaultFontSize,
			DefaultActiveColor: defaultActiveColor,
		},
		Transcode: Transcode{
			FFmpegBinary:     defaultFFmpegBinary,
			TimeoutSeconds:   defaultTranscodeTimeoutSeconds,
			KeepSubtitleFile: defaultKeepSubtitleFile,
			MaxUploadMB:      defaultMaxUploadMB,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			OnSuccess:      defaultNotifyOnSuccess,
			OnFailure:      defaultNotifyOnFailure,
		},
		Metrics: Metrics{
			Enabled: defaultMetricsEnabled,
		},
		Jobs: Jobs{
			RetentionDays: defaultJobRetentionDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
