package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Provider credentials are
// checked lazily by the components that need them so offline commands such as
// render work without an API key.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case StorageFilesystem:
		if c.Storage.Dir == "" {
			return errors.New("storage.dir must be set for the filesystem backend")
		}
	case StorageS3:
		if c.Storage.Endpoint == "" {
			return errors.New("storage.endpoint is required for the s3 backend")
		}
		if strings.Contains(c.Storage.Endpoint, "://") {
			return fmt.Errorf("storage.endpoint %q must be a host[:port] without scheme; use storage.use_ssl", c.Storage.Endpoint)
		}
		if c.Storage.Bucket == "" {
			return errors.New("storage.bucket is required for the s3 backend")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return errors.New("storage.access_key and storage.secret_key are required for the s3 backend (or set SUBBURN_S3_ACCESS_KEY / SUBBURN_S3_SECRET_KEY)")
		}
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (want %q or %q)", c.Storage.Backend, StorageS3, StorageFilesystem)
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if c.Subtitles.FontSize < 0 {
		return errors.New("subtitles.font_size must be zero or positive")
	}
	if c.Subtitles.FontScale > 1 {
		return errors.New("subtitles.font_scale must be at most 1")
	}
	if c.Subtitles.FontColor != "" && !validHexColor(c.Subtitles.FontColor) {
		return fmt.Errorf("subtitles.font_color %q must be #RRGGBB or #AARRGGBB", c.Subtitles.FontColor)
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.MinFreeGiB < 0 {
		return errors.New("media.min_free_gib must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func validHexColor(value string) bool {
	digits, ok := strings.CutPrefix(value, "#")
	if !ok || (len(digits) != 6 && len(digits) != 8) {
		return false
	}
	for _, r := range digits {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
