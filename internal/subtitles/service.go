package subtitles

import (
	"context"
	"log/slog"

	"subburn/internal/blobstore"
	"subburn/internal/config"
	"subburn/internal/layout"
	"subburn/internal/logging"
	"subburn/internal/media/ffprobe"
	"subburn/internal/ssa"
	"subburn/internal/transcriptcache"
	"subburn/internal/transcription"
	"subburn/internal/workspace"
)

var inspectMedia = ffprobe.Inspect

// Transcriber produces transcripts for media sources.
type Transcriber interface {
	Transcribe(ctx context.Context, source string) (transcription.Result, error)
	Fetch(ctx context.Context, id string) (transcription.Result, error)
}

// TranscriptCache stores completed transcripts by source key.
type TranscriptCache interface {
	Get(ctx context.Context, key string) (*transcriptcache.Entry, error)
	Put(ctx context.Context, entry transcriptcache.Entry) error
	FindByTranscriptID(ctx context.Context, id string) (*transcriptcache.Entry, error)
}

// Service orchestrates segmentation, rendering and burn-in.
type Service struct {
	config      *config.Config
	logger      *slog.Logger
	transcriber Transcriber
	cache       TranscriptCache
	store       blobstore.Store
	workspace   *workspace.Manager
	burner      *Burner
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithTranscriber sets the transcription provider.
func WithTranscriber(t Transcriber) ServiceOption {
	return func(s *Service) {
		s.transcriber = t
	}
}

// WithTranscriptCache enables transcript caching.
func WithTranscriptCache(c TranscriptCache) ServiceOption {
	return func(s *Service) {
		s.cache = c
	}
}

// WithBlobStore sets where rendered videos are published.
func WithBlobStore(store blobstore.Store) ServiceOption {
	return func(s *Service) {
		s.store = store
	}
}

// WithWorkspace overrides the job workspace manager.
func WithWorkspace(m *workspace.Manager) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.workspace = m
		}
	}
}

// WithCommandRunner injects a custom command runner for ffmpeg (primarily
// for tests).
func WithCommandRunner(r commandRunner) ServiceOption {
	return func(s *Service) {
		s.burner.WithCommandRunner(r)
	}
}

// NewService constructs a pipeline service. Collaborators that are not
// supplied leave the operations that need them returning configuration
// errors.
func NewService(cfg *config.Config, logger *slog.Logger, opts ...ServiceOption) *Service {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	svc := &Service{
		config: cfg,
		logger: logging.NewComponentLogger(logger, "subtitles"),
	}
	svc.burner = NewBurner(cfg.Media, logger)
	svc.workspace = workspace.NewManager(cfg.Paths.WorkDir, workspace.WithLogger(logger))
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// SetLogger swaps the service logger.
func (s *Service) SetLogger(logger *slog.Logger) {
	if s == nil {
		return
	}
	s.logger = logging.NewComponentLogger(logger, "subtitles")
	s.burner.SetLogger(logger)
}

// Style returns the SSA style built from the [subtitles] config section.
func (s *Service) Style() ssa.Style {
	return ssa.Style{
		Name:     s.config.Subtitles.StyleName,
		FontName: s.config.Subtitles.FontName,
	}
}

// LayoutOptions returns font sizing and splitting rules from config.
func (s *Service) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	if s.config.Subtitles.MinFontSize > 0 {
		opts.MinFontSize = s.config.Subtitles.MinFontSize
	}
	if s.config.Subtitles.FontScale > 0 {
		opts.FontScale = s.config.Subtitles.FontScale
	}
	return opts
}
