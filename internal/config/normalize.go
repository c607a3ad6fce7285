package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAssemblyAI()
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeSubtitles()
	c.normalizeMedia()
	c.normalizeAPI()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeAssemblyAI() {
	c.AssemblyAI.APIKey = strings.TrimSpace(c.AssemblyAI.APIKey)
	if c.AssemblyAI.APIKey == "" {
		if value, ok := os.LookupEnv("ASSEMBLYAI_API_KEY"); ok {
			c.AssemblyAI.APIKey = strings.TrimSpace(value)
		}
	}
	c.AssemblyAI.BaseURL = strings.TrimRight(strings.TrimSpace(c.AssemblyAI.BaseURL), "/")
	if c.AssemblyAI.BaseURL == "" {
		c.AssemblyAI.BaseURL = defaultAssemblyAIBaseURL
	}
	c.AssemblyAI.LanguageCode = strings.ToLower(strings.TrimSpace(c.AssemblyAI.LanguageCode))
	if c.AssemblyAI.PollTimeoutSeconds <= 0 {
		c.AssemblyAI.PollTimeoutSeconds = defaultPollTimeoutSeconds
	}
}

func (c *Config) normalizeStorage() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageFilesystem
	}
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	if c.Storage.Region == "" {
		c.Storage.Region = defaultStorageRegion
	}
	if c.Storage.AccessKey == "" {
		if value, ok := os.LookupEnv("SUBBURN_S3_ACCESS_KEY"); ok {
			c.Storage.AccessKey = strings.TrimSpace(value)
		}
	}
	if c.Storage.SecretKey == "" {
		if value, ok := os.LookupEnv("SUBBURN_S3_SECRET_KEY"); ok {
			c.Storage.SecretKey = strings.TrimSpace(value)
		}
	}
	c.Storage.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Storage.PublicBaseURL), "/")
	if strings.TrimSpace(c.Storage.Dir) == "" {
		c.Storage.Dir = defaultStorageDir
	}
	var err error
	if c.Storage.Dir, err = expandPath(c.Storage.Dir); err != nil {
		return fmt.Errorf("storage.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.StyleName = strings.TrimSpace(c.Subtitles.StyleName)
	if c.Subtitles.StyleName == "" {
		c.Subtitles.StyleName = defaultStyleName
	}
	c.Subtitles.FontName = strings.TrimSpace(c.Subtitles.FontName)
	if c.Subtitles.FontName == "" {
		c.Subtitles.FontName = defaultFontName
	}
	c.Subtitles.FontColor = strings.TrimSpace(c.Subtitles.FontColor)
	if c.Subtitles.MinFontSize <= 0 {
		c.Subtitles.MinFontSize = defaultMinFontSize
	}
	if c.Subtitles.FontScale <= 0 {
		c.Subtitles.FontScale = defaultFontScale
	}
	if c.Subtitles.Terminators == "" {
		c.Subtitles.Terminators = defaultTerminators
	}
}

func (c *Config) normalizeMedia() {
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobeBinary
	}
	c.Media.VideoCodec = strings.TrimSpace(c.Media.VideoCodec)
	if c.Media.VideoCodec == "" {
		c.Media.VideoCodec = defaultVideoCodec
	}
	c.Media.AudioCodec = strings.TrimSpace(c.Media.AudioCodec)
	if c.Media.AudioCodec == "" {
		c.Media.AudioCodec = defaultAudioCodec
	}
	if c.Media.DownloadTimeoutSeconds <= 0 {
		c.Media.DownloadTimeoutSeconds = defaultDownloadTimeout
	}
}

func (c *Config) normalizeAPI() {
	origins := make([]string, 0, len(c.API.AllowedOrigins))
	for _, origin := range c.API.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.API.AllowedOrigins = origins
	if c.API.RequestTimeoutSeconds <= 0 {
		c.API.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if c.API.MaxBodyMiB <= 0 {
		c.API.MaxBodyMiB = defaultMaxBodyMiB
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
