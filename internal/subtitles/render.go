package subtitles

import (
	"context"
	"errors"

	"subburn/internal/layout"
	"subburn/internal/logging"
	"subburn/internal/services"
	"subburn/internal/ssa"
)

var buildEvents = ssa.BuildEvents

// RenderResult is a serialized subtitle document.
type RenderResult struct {
	Document string
	Events   []ssa.Event
	Config   layout.Config
	Lines    int
}

// Render lays out every cue for cfg and serializes the result.
func (s *Service) Render(ctx context.Context, cues []layout.Cue, cfg layout.Config) (RenderResult, error) {
	events, writer, err := s.prepare(ctx, cues, cfg)
	if err != nil {
		return RenderResult{}, err
	}
	doc, err := writer.Render(events)
	if err != nil {
		return RenderResult{}, services.Wrap(services.ErrInternal, "render", "serialize", "Failed to serialize subtitles", err)
	}
	result := RenderResult{Document: doc, Events: events, Config: cfg, Lines: countLines(events)}
	logging.WithContext(ctx, s.logger).Debug("subtitles rendered",
		logging.Int("cues", len(cues)),
		logging.Int("dialogue_lines", result.Lines),
		logging.Int("video_width", cfg.VideoWidth),
		logging.Int("video_height", cfg.VideoHeight),
	)
	return result, nil
}

// RenderFile renders cues and writes the document to path atomically.
func (s *Service) RenderFile(ctx context.Context, cues []layout.Cue, cfg layout.Config, path string) ([]ssa.Event, error) {
	events, writer, err := s.prepare(ctx, cues, cfg)
	if err != nil {
		return nil, err
	}
	if err := writer.WriteFile(path, events); err != nil {
		return nil, services.Wrap(services.ErrInternal, "render", "write subtitles", "Failed to write subtitle file", err)
	}
	return events, nil
}

func (s *Service) prepare(ctx context.Context, cues []layout.Cue, cfg layout.Config) ([]ssa.Event, *ssa.Writer, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, services.Wrap(services.ErrValidation, "render", "validate resolution", "Invalid video dimensions", err)
	}
	opts := s.LayoutOptions()
	events, err := buildEvents(cues, cfg, opts)
	if err != nil {
		marker := services.ErrInternal
		if errors.Is(err, layout.ErrInvalidCue) {
			marker = services.ErrValidation
		}
		return nil, nil, services.Wrap(marker, "render", "layout cues", "Failed to lay out cues", err)
	}
	return events, ssa.NewWriter(s.Style(), cfg, opts), nil
}

func countLines(events []ssa.Event) int {
	n := 0
	for _, ev := range events {
		if len(ev.Chunks) == 0 {
			n++
			continue
		}
		n += len(ev.Chunks)
	}
	return n
}
