package daemonrun

import (
	"errors"
	"fmt"
	"log/slog"

	"subburn/internal/blobstore"
	"subburn/internal/config"
	"subburn/internal/logging"
	"subburn/internal/subtitles"
	"subburn/internal/transcriptcache"
	"subburn/internal/transcription"
	"subburn/internal/workspace"
)

// Pipeline bundles the subtitle service with the resources it holds open.
type Pipeline struct {
	Service *subtitles.Service
	Cache   *transcriptcache.Store
	Store   blobstore.Store
}

// Close releases the transcript cache.
func (p *Pipeline) Close() error {
	if p == nil || p.Cache == nil {
		return nil
	}
	return p.Cache.Close()
}

// NewPipeline builds the subtitle service for cfg. A missing transcription
// key or an unreachable cache degrades the matching operation instead of
// failing construction; a misconfigured blob store is an error.
func NewPipeline(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := blobstore.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init blob store: %w", err)
	}
	p := &Pipeline{Store: store}
	opts := []subtitles.ServiceOption{
		subtitles.WithBlobStore(store),
		subtitles.WithWorkspace(workspace.NewManager(cfg.Paths.WorkDir, workspace.WithLogger(logger))),
	}

	client, err := transcription.New(cfg.AssemblyAI, transcription.WithLogger(logger))
	switch {
	case errors.Is(err, transcription.ErrMissingAPIKey):
		logging.WarnWithContext(logger, "transcription disabled", "transcription_disabled",
			logging.String(logging.FieldErrorHint, "set assemblyai.api_key or ASSEMBLYAI_API_KEY"),
			logging.String(logging.FieldImpact, "transcribe requests fail with a configuration error"),
		)
	case err != nil:
		return nil, fmt.Errorf("init transcription client: %w", err)
	default:
		opts = append(opts, subtitles.WithTranscriber(client))
	}

	if cfg.AssemblyAI.CacheEnabled {
		cache, err := transcriptcache.Open(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "transcript cache unavailable", "transcript_cache_failed",
				logging.Error(err),
				logging.String("path", cfg.TranscriptCachePath()),
				logging.String(logging.FieldErrorHint, "check state_dir permissions or delete the cache database"),
				logging.String(logging.FieldImpact, "every transcription request reaches the provider"),
			)
		} else {
			p.Cache = cache
			opts = append(opts, subtitles.WithTranscriptCache(cache))
		}
	}

	p.Service = subtitles.NewService(cfg, logger, opts...)
	return p, nil
}
