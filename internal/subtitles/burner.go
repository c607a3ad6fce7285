package subtitles

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"subburn/internal/config"
	"subburn/internal/logging"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

// BurnRequest describes one ffmpeg burn-in.
type BurnRequest struct {
	InputPath    string // Source video
	SubtitlePath string // ASS script to render onto the frames
	OutputPath   string // Destination; replaced atomically on success
	Width        int
	Height       int
}

// Burner renders ASS subtitles into video frames using ffmpeg.
type Burner struct {
	logger     *slog.Logger
	run        commandRunner
	binary     string
	videoCodec string
	audioCodec string
}

// NewBurner constructs a burner from the [media] config section.
func NewBurner(cfg config.Media, logger *slog.Logger) *Burner {
	b := &Burner{
		logger:     logging.NewComponentLogger(logger, "burner"),
		run:        defaultCommandRunner,
		binary:     strings.TrimSpace(cfg.FFmpegBinary),
		videoCodec: strings.TrimSpace(cfg.VideoCodec),
		audioCodec: strings.TrimSpace(cfg.AudioCodec),
	}
	if b.binary == "" {
		b.binary = "ffmpeg"
	}
	if b.videoCodec == "" {
		b.videoCodec = "libx264"
	}
	if b.audioCodec == "" {
		b.audioCodec = "aac"
	}
	return b
}

// SetLogger updates the burner's logging destination.
func (b *Burner) SetLogger(logger *slog.Logger) {
	if b == nil {
		return
	}
	b.logger = logging.NewComponentLogger(logger, "burner")
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (b *Burner) WithCommandRunner(r commandRunner) {
	if b != nil && r != nil {
		b.run = r
	}
}

// Burn re-encodes the input with the subtitles drawn on every frame. The
// output is written next to the destination and renamed into place.
func (b *Burner) Burn(ctx context.Context, req BurnRequest) error {
	if b == nil {
		return fmt.Errorf("burner not initialized")
	}
	if strings.TrimSpace(req.InputPath) == "" || strings.TrimSpace(req.OutputPath) == "" {
		return fmt.Errorf("input and output paths are required")
	}
	if req.Width <= 0 || req.Height <= 0 {
		return fmt.Errorf("invalid output dimensions %dx%d", req.Width, req.Height)
	}
	if _, err := os.Stat(req.InputPath); err != nil {
		return fmt.Errorf("source video not found: %w", err)
	}
	if _, err := os.Stat(req.SubtitlePath); err != nil {
		return fmt.Errorf("subtitle file not found %q: %w", req.SubtitlePath, err)
	}

	// Keep the extension so ffmpeg can pick the container.
	tmpPath := filepath.Join(filepath.Dir(req.OutputPath), ".burn-"+filepath.Base(req.OutputPath))
	args := b.buildArgs(req, tmpPath)

	b.logger.Debug("executing ffmpeg",
		logging.String("input", req.InputPath),
		logging.String("subtitles", req.SubtitlePath),
		logging.Int("width", req.Width),
		logging.Int("height", req.Height),
	)
	started := time.Now()
	if err := b.run(ctx, b.binary, args...); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	if _, err := os.Stat(tmpPath); err != nil {
		return fmt.Errorf("ffmpeg did not produce output file: %w", err)
	}
	if err := os.Rename(tmpPath, req.OutputPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("move rendered video into place: %w", err)
	}

	b.logger.Info("subtitles burned into video",
		logging.String(logging.FieldEventType, "subtitle_burn_complete"),
		logging.String("output", req.OutputPath),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (b *Burner) buildArgs(req BurnRequest, outputPath string) []string {
	filter := fmt.Sprintf("ass=%s,scale=%d:%d", escapeFilterValue(filepath.ToSlash(req.SubtitlePath)), req.Width, req.Height)
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", req.InputPath,
		"-vf", filter,
		"-c:v", b.videoCodec,
		"-c:a", b.audioCodec,
		outputPath,
	}
}

var filterEscaper = strings.NewReplacer(
	`\`, `\\\\`,
	`'`, `\\\'`,
	`:`, `\\:`,
	`,`, `\,`,
	`[`, `\[`,
	`]`, `\]`,
	`;`, `\;`,
)

// escapeFilterValue escapes a filter option value for both the option and
// the filtergraph parsing levels.
func escapeFilterValue(value string) string {
	return filterEscaper.Replace(value)
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
