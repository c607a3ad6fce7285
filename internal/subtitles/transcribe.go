package subtitles

import (
	"context"
	"errors"
	"os"
	"strings"

	"subburn/internal/logging"
	"subburn/internal/services"
	"subburn/internal/transcript"
	"subburn/internal/transcriptcache"
	"subburn/internal/transcription"
	"subburn/internal/workspace"
)

// TranscribeResult is a transcript ready for segmentation.
type TranscribeResult struct {
	ID         string
	Utterances []transcript.Utterance
	Cached     bool
}

// Transcribe returns utterances for source, consulting the transcript cache
// before calling the provider. Cache failures are logged and bypassed.
func (s *Service) Transcribe(ctx context.Context, source string) (TranscribeResult, error) {
	if s.transcriber == nil {
		return TranscribeResult{}, services.Wrap(services.ErrConfiguration, "transcribe", "init", "Transcription provider is not configured", transcription.ErrMissingAPIKey)
	}
	ctx = services.WithStage(ctx, "transcribe")
	logger := logging.WithContext(ctx, s.logger)

	key, err := sourceKey(source)
	if err != nil {
		return TranscribeResult{}, classifyTranscribeError("hash source", err)
	}

	useCache := s.cache != nil && s.config.AssemblyAI.CacheEnabled
	if useCache {
		entry, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "transcript cache lookup failed", "transcript_cache_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the transcript cache database if this persists"),
				logging.String(logging.FieldImpact, "transcribing without cache"),
			)
		case entry != nil:
			attrs := logging.DecisionAttrs("transcript_cache", "hit", "source already transcribed")
			attrs = append(attrs,
				logging.String("transcript_id", entry.TranscriptID),
				logging.Int("words", entry.WordCount()),
			)
			logger.Info("transcript cache hit", logging.Args(attrs...)...)
			return TranscribeResult{ID: entry.TranscriptID, Utterances: entry.Utterances, Cached: true}, nil
		}
	}

	result, err := s.transcriber.Transcribe(ctx, source)
	if err != nil {
		return TranscribeResult{}, classifyTranscribeError("request transcript", err)
	}

	if useCache {
		entry := transcriptcache.Entry{
			SourceKey:    key,
			Provider:     transcription.ProviderName,
			TranscriptID: result.ID,
			Utterances:   result.Utterances,
		}
		if err := s.cache.Put(ctx, entry); err != nil {
			logging.WarnWithContext(logger, "transcript cache store failed", "transcript_cache_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check state_dir permissions"),
				logging.String(logging.FieldImpact, "the next request for this media transcribes again"),
			)
		}
	}
	return TranscribeResult{ID: result.ID, Utterances: result.Utterances}, nil
}

// TranscriptByID returns a completed transcript, from the cache when it was
// stored there, otherwise from the provider.
func (s *Service) TranscriptByID(ctx context.Context, id string) (TranscribeResult, error) {
	if strings.TrimSpace(id) == "" {
		return TranscribeResult{}, services.Wrap(services.ErrValidation, "transcribe", "fetch transcript", "transcript_id is required", nil)
	}
	ctx = services.WithStage(ctx, "transcribe")
	if s.cache != nil && s.config.AssemblyAI.CacheEnabled {
		entry, err := s.cache.FindByTranscriptID(ctx, id)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "transcript cache lookup failed", "transcript_cache_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "fetching from provider"),
			)
		} else if entry != nil {
			return TranscribeResult{ID: entry.TranscriptID, Utterances: entry.Utterances, Cached: true}, nil
		}
	}
	if s.transcriber == nil {
		return TranscribeResult{}, services.Wrap(services.ErrConfiguration, "transcribe", "init", "Transcription provider is not configured", transcription.ErrMissingAPIKey)
	}
	result, err := s.transcriber.Fetch(ctx, id)
	if err != nil {
		return TranscribeResult{}, classifyTranscribeError("fetch transcript", err)
	}
	return TranscribeResult{ID: result.ID, Utterances: result.Utterances}, nil
}

func sourceKey(source string) (string, error) {
	if workspace.IsRemote(source) {
		return transcriptcache.KeyForURL(source), nil
	}
	return transcriptcache.KeyForFile(source)
}

func classifyTranscribeError(op string, err error) error {
	marker := services.ErrExternalTool
	msg := "Transcription provider request failed"
	switch {
	case errors.Is(err, os.ErrNotExist):
		marker, msg = services.ErrNotFound, "Media source does not exist"
	case errors.Is(err, context.DeadlineExceeded):
		marker, msg = services.ErrTimeout, "Transcription did not finish in time"
	case errors.Is(err, transcription.ErrNotReady):
		marker, msg = services.ErrTransient, "Transcript is still processing"
	case errors.Is(err, transcription.ErrTranscriptFailed):
		msg = "Transcription provider rejected the media"
	}
	return services.Wrap(marker, "transcribe", op, msg, err)
}
