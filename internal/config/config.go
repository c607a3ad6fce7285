package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkDir  string `toml:"work_dir"`
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
	APIBind  string `toml:"api_bind"`
}

// AssemblyAI contains configuration for the transcription provider.
type AssemblyAI struct {
	APIKey             string `toml:"api_key"`
	BaseURL            string `toml:"base_url"`
	SpeakerLabels      bool   `toml:"speaker_labels"`
	LanguageCode       string `toml:"language_code"`
	PollTimeoutSeconds int    `toml:"poll_timeout_seconds"`
	CacheEnabled       bool   `toml:"cache_enabled"`
}

// Storage selects and configures the blob store that receives rendered videos.
type Storage struct {
	Backend       string `toml:"backend"`
	Endpoint      string `toml:"endpoint"`
	Bucket        string `toml:"bucket"`
	Region        string `toml:"region"`
	AccessKey     string `toml:"access_key"`
	SecretKey     string `toml:"secret_key"`
	UseSSL        bool   `toml:"use_ssl"`
	Dir           string `toml:"dir"`
	PublicBaseURL string `toml:"public_base_url"`
}

// Subtitles contains the styling and segmentation defaults.
type Subtitles struct {
	StyleName       string  `toml:"style_name"`
	FontName        string  `toml:"font_name"`
	FontColor       string  `toml:"font_color"`
	FontSize        int     `toml:"font_size"`
	MinFontSize     int     `toml:"min_font_size"`
	FontScale       float64 `toml:"font_scale"`
	Terminators     string  `toml:"terminators"`
	StrictAlignment bool    `toml:"strict_alignment"`
}

// Media contains external tool and download settings.
type Media struct {
	FFmpegBinary           string `toml:"ffmpeg_binary"`
	FFprobeBinary          string `toml:"ffprobe_binary"`
	VideoCodec             string `toml:"video_codec"`
	AudioCodec             string `toml:"audio_codec"`
	MinFreeGiB             int    `toml:"min_free_gib"`
	DownloadTimeoutSeconds int    `toml:"download_timeout_seconds"`
	KeepWorkDirs           bool   `toml:"keep_work_dirs"`
}

// API contains HTTP server settings.
type API struct {
	AllowedOrigins        []string `toml:"allowed_origins"`
	RequestTimeoutSeconds int      `toml:"request_timeout_seconds"`
	MaxBodyMiB            int      `toml:"max_body_mib"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for subburn.
//
// Configuration sections by subsystem:
//   - Paths: job workspace, logs, state and API bind address
//   - AssemblyAI: transcription provider credentials and polling
//   - Storage: S3-compatible or filesystem output store
//   - Subtitles: default cue style and segmentation rules
//   - Media: ffmpeg/ffprobe binaries, codecs and disk headroom
//   - API: CORS origins, timeouts and request size limits
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	AssemblyAI AssemblyAI `toml:"assemblyai"`
	Storage    Storage    `toml:"storage"`
	Subtitles  Subtitles  `toml:"subtitles"`
	Media      Media      `toml:"media"`
	API        API        `toml:"api"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subburn.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the server and CLI write to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.StateDir}
	if c.Storage.Backend == StorageFilesystem {
		dirs = append(dirs, c.Storage.Dir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// TranscriptCachePath returns the SQLite database holding cached transcripts.
func (c *Config) TranscriptCachePath() string {
	return filepath.Join(c.Paths.StateDir, "transcripts.db")
}

// LockPath returns the single-instance lock file used by the server.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "subburn.lock")
}

// LogPath returns the server log file for the day containing now. Files
// older than logging.retention_days are pruned at startup.
func (c *Config) LogPath(now time.Time) string {
	return filepath.Join(c.Paths.LogDir, "subburn-"+now.Format("20060102")+".log")
}

// PollTimeout returns how long to wait for a transcript to complete.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.AssemblyAI.PollTimeoutSeconds) * time.Second
}

// DownloadTimeout bounds remote video downloads.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Media.DownloadTimeoutSeconds) * time.Second
}

// RequestTimeout bounds a single API request.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.RequestTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the annotated sample configuration to path, creating
// parent directories. An existing file is an error wrapping os.ErrExist
// unless overwrite is set.
func CreateSample(path string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	if _, err := f.WriteString(sampleConfig); err != nil {
		f.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return f.Close()
}

// Encode renders the configuration as TOML, with secrets redacted.
func (c *Config) Encode() ([]byte, error) {
	redacted := *c
	redacted.API.AllowedOrigins = append([]string(nil), c.API.AllowedOrigins...)
	if redacted.AssemblyAI.APIKey != "" {
		redacted.AssemblyAI.APIKey = redactedValue
	}
	if redacted.Storage.SecretKey != "" {
		redacted.Storage.SecretKey = redactedValue
	}
	return toml.Marshal(redacted)
}
