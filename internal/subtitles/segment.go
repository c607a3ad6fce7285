package subtitles

import (
	"context"
	"strings"

	"subburn/internal/layout"
	"subburn/internal/logging"
	"subburn/internal/services"
	"subburn/internal/transcript"
)

// CueStyle is the styling applied to cues built from sentences. Zero fields
// fall back to the [subtitles] config defaults.
type CueStyle struct {
	FontColor string
	FontSize  int
	Bold      bool
	Italic    bool
}

// DefaultCueStyle returns the configured cue color and size.
func (s *Service) DefaultCueStyle() CueStyle {
	return CueStyle{
		FontColor: s.config.Subtitles.FontColor,
		FontSize:  s.config.Subtitles.FontSize,
	}
}

// Segment splits utterances into timed sentences. In lenient mode every
// alignment mismatch is logged and the affected sentence keeps whatever
// timing it recovered; with strict_alignment the first mismatch fails the
// call.
func (s *Service) Segment(ctx context.Context, utterances []transcript.Utterance) ([]transcript.Sentence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := logging.WithContext(ctx, s.logger)
	opts := transcript.SegmentOptions{
		Terminators: s.config.Subtitles.Terminators,
		Strict:      s.config.Subtitles.StrictAlignment,
		OnMismatch: func(m *transcript.MismatchError) {
			logging.WarnWithContext(logger, "sentence alignment truncated", "alignment_truncated",
				logging.Int("utterance", m.Utterance),
				logging.Int("sentence", m.Sentence),
				logging.String("token", m.Token),
				logging.String("expected", m.Expected),
				logging.String(logging.FieldErrorHint, "provider text and word list disagree"),
				logging.String(logging.FieldImpact, "sentence timing covers only the matched words"),
			)
		},
	}

	sentences, err := transcript.SegmentAll(utterances, opts)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "segment", "align words", "Transcript words do not match its text", err)
	}
	logger.Debug("transcript segmented",
		logging.Int("utterances", len(utterances)),
		logging.Int("sentences", len(sentences)),
	)
	return sentences, nil
}

// CuesFromSentences turns sentences into cues carrying style. Sentences with
// no visible text are skipped.
func (s *Service) CuesFromSentences(sentences []transcript.Sentence, style CueStyle) []layout.Cue {
	def := s.DefaultCueStyle()
	if strings.TrimSpace(style.FontColor) == "" {
		style.FontColor = def.FontColor
	}
	if style.FontSize <= 0 {
		style.FontSize = def.FontSize
	}
	cues := make([]layout.Cue, 0, len(sentences))
	for _, sentence := range sentences {
		if strings.TrimSpace(sentence.Text) == "" {
			continue
		}
		cues = append(cues, layout.Cue{
			Text:      sentence.Text,
			Start:     sentence.Start,
			End:       sentence.End,
			FontColor: style.FontColor,
			FontSize:  style.FontSize,
			Bold:      style.Bold,
			Italic:    style.Italic,
		})
	}
	return cues
}
