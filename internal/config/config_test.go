package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"subburn/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	t.Setenv("ASSEMBLYAI_API_KEY", "env-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "subburn", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.AssemblyAI.APIKey != "env-key" {
		t.Fatalf("expected AssemblyAI key from env, got %q", cfg.AssemblyAI.APIKey)
	}
	if !cfg.AssemblyAI.SpeakerLabels {
		t.Fatal("expected speaker labels enabled by default")
	}
	if cfg.Storage.Backend != config.StorageFilesystem {
		t.Fatalf("expected filesystem storage by default, got %q", cfg.Storage.Backend)
	}
	if cfg.Subtitles.FontColor != "#FF0000" || cfg.Subtitles.FontSize != 10 {
		t.Fatalf("unexpected subtitle defaults: %+v", cfg.Subtitles)
	}
	if cfg.Subtitles.MinFontSize != 16 || cfg.Subtitles.FontScale != 0.05 {
		t.Fatalf("unexpected layout defaults: %+v", cfg.Subtitles)
	}
	if cfg.Media.VideoCodec != "libx264" || cfg.Media.AudioCodec != "aac" {
		t.Fatalf("unexpected codec defaults: %+v", cfg.Media)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir, cfg.Paths.StateDir, cfg.Storage.Dir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if cfg.TranscriptCachePath() != filepath.Join(cfg.Paths.StateDir, "transcripts.db") {
		t.Fatalf("unexpected cache path: %q", cfg.TranscriptCachePath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("SUBBURN_S3_ACCESS_KEY", "")
	t.Setenv("SUBBURN_S3_SECRET_KEY", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subburn.toml")

	type payload struct {
		Storage struct {
			Backend   string `toml:"backend"`
			Endpoint  string `toml:"endpoint"`
			Bucket    string `toml:"bucket"`
			AccessKey string `toml:"access_key"`
			SecretKey string `toml:"secret_key"`
		} `toml:"storage"`
		Subtitles struct {
			FontColor       string `toml:"font_color"`
			StrictAlignment bool   `toml:"strict_alignment"`
		} `toml:"subtitles"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Storage.Backend = "S3"
	custom.Storage.Endpoint = "s3.example.com"
	custom.Storage.Bucket = "renders"
	custom.Storage.AccessKey = "file-access"
	custom.Storage.SecretKey = "file-secret"
	custom.Subtitles.FontColor = "#00FF00"
	custom.Subtitles.StrictAlignment = true
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Storage.Backend != config.StorageS3 || cfg.Storage.Bucket != "renders" {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
	if cfg.Storage.AccessKey != "file-access" {
		t.Fatalf("expected file access key, got %q", cfg.Storage.AccessKey)
	}
	if cfg.Subtitles.FontColor != "#00FF00" || !cfg.Subtitles.StrictAlignment {
		t.Fatalf("unexpected subtitles: %+v", cfg.Subtitles)
	}
	if cfg.Subtitles.FontName != "Arial" {
		t.Fatalf("expected default font retained, got %q", cfg.Subtitles.FontName)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized log format, got %q", cfg.Logging.Format)
	}
}

func TestEnvFillsMissingStorageCredentials(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subburn.toml")
	body := "[storage]\nbackend = \"s3\"\nendpoint = \"minio:9000\"\nbucket = \"out\"\naccess_key = \"from-file\"\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUBBURN_S3_ACCESS_KEY", "env-access")
	t.Setenv("SUBBURN_S3_SECRET_KEY", "env-secret")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.AccessKey != "from-file" {
		t.Errorf("expected file value to win, got %q", cfg.Storage.AccessKey)
	}
	if cfg.Storage.SecretKey != "env-secret" {
		t.Errorf("expected secret key from env, got %q", cfg.Storage.SecretKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path, false); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if err := config.CreateSample(path, false); !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected ErrExist without overwrite, got %v", err)
	}
	if err := config.CreateSample(path, true); err != nil {
		t.Fatalf("CreateSample overwrite failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "ASSEMBLYAI_API_KEY") {
		t.Fatalf("sample config missing AssemblyAI hint: %s", contents)
	}

	cfg := config.Default()
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.WorkDir, "subburn") {
		t.Fatalf("expected work dir to contain subburn, got %q", cfg.Paths.WorkDir)
	}
	if cfg.Subtitles.Terminators != ".!?。！？" {
		t.Fatalf("unexpected terminators: %q", cfg.Subtitles.Terminators)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "ftp" }},
		{"s3 without endpoint", func(c *config.Config) {
			c.Storage.Backend = config.StorageS3
			c.Storage.Bucket = "b"
			c.Storage.AccessKey, c.Storage.SecretKey = "a", "s"
		}},
		{"s3 endpoint with scheme", func(c *config.Config) {
			c.Storage.Backend = config.StorageS3
			c.Storage.Endpoint = "https://s3.example.com"
			c.Storage.Bucket = "b"
			c.Storage.AccessKey, c.Storage.SecretKey = "a", "s"
		}},
		{"s3 without credentials", func(c *config.Config) {
			c.Storage.Backend = config.StorageS3
			c.Storage.Endpoint = "s3.example.com"
			c.Storage.Bucket = "b"
		}},
		{"bad colour", func(c *config.Config) { c.Subtitles.FontColor = "red" }},
		{"font scale", func(c *config.Config) { c.Subtitles.FontScale = 2 }},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }},
		{"free space", func(c *config.Config) { c.Media.MinFreeGiB = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestEncodeRedactsSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.AssemblyAI.APIKey = "super-secret"
	cfg.Storage.SecretKey = "also-secret"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(data), "super-secret") || strings.Contains(string(data), "also-secret") {
		t.Fatalf("secrets leaked: %s", data)
	}
	if cfg.AssemblyAI.APIKey != "super-secret" {
		t.Fatal("Encode mutated the config")
	}
}
