package config

const (
	defaultConfigPath            = "~/.config/subburn/config.toml"
	defaultWorkDir               = "~/.local/share/subburn/work"
	defaultLogDir                = "~/.local/share/subburn/logs"
	defaultStateDir              = "~/.local/share/subburn/state"
	defaultStorageDir            = "~/.local/share/subburn/outputs"
	defaultAPIBind               = "127.0.0.1:8000"
	defaultAssemblyAIBaseURL     = "https://api.assemblyai.com"
	defaultPollTimeoutSeconds    = 900
	defaultStorageRegion         = "us-east-1"
	defaultStyleName             = "Default"
	defaultFontName              = "Arial"
	defaultFontColor             = "#FF0000"
	defaultFontSize              = 10
	defaultMinFontSize           = 16
	defaultFontScale             = 0.05
	defaultTerminators           = ".!?。！？"
	defaultFFmpegBinary          = "ffmpeg"
	defaultFFprobeBinary         = "ffprobe"
	defaultVideoCodec            = "libx264"
	defaultAudioCodec            = "aac"
	defaultMinFreeGiB            = 2
	defaultDownloadTimeout       = 600
	defaultRequestTimeoutSeconds = 1800
	defaultMaxBodyMiB            = 8
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30

	redactedValue = "<redacted>"
)

// Storage backends.
const (
	StorageS3         = "s3"
	StorageFilesystem = "filesystem"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
			APIBind:  defaultAPIBind,
		},
		AssemblyAI: AssemblyAI{
			BaseURL:            defaultAssemblyAIBaseURL,
			SpeakerLabels:      true,
			PollTimeoutSeconds: defaultPollTimeoutSeconds,
			CacheEnabled:       true,
		},
		Storage: Storage{
			Backend: StorageFilesystem,
			Region:  defaultStorageRegion,
			UseSSL:  true,
			Dir:     defaultStorageDir,
		},
		Subtitles: Subtitles{
			StyleName:   defaultStyleName,
			FontName:    defaultFontName,
			FontColor:   defaultFontColor,
			FontSize:    defaultFontSize,
			MinFontSize: defaultMinFontSize,
			FontScale:   defaultFontScale,
			Terminators: defaultTerminators,
		},
		Media: Media{
			FFmpegBinary:           defaultFFmpegBinary,
			FFprobeBinary:          defaultFFprobeBinary,
			VideoCodec:             defaultVideoCodec,
			AudioCodec:             defaultAudioCodec,
			MinFreeGiB:             defaultMinFreeGiB,
			DownloadTimeoutSeconds: defaultDownloadTimeout,
		},
		API: API{
			AllowedOrigins:        []string{"*"},
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			MaxBodyMiB:            defaultMaxBodyMiB,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
