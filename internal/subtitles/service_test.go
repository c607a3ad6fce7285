package subtitles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"subburn/internal/layout"
	"subburn/internal/services"
	"subburn/internal/ssa"
	"subburn/internal/testsupport"
	"subburn/internal/transcript"
)

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return NewService(cfg, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), opts...)
}

func TestSegmentAndBuildCues(t *testing.T) {
	svc := newTestService(t)
	utterances := []transcript.Utterance{{
		Text:    "Hi there. Bye now.",
		Speaker: "A",
		Words: []transcript.Word{
			{Text: "Hi", Start: 0, End: 100},
			{Text: "there.", Start: 100, End: 400},
			{Text: "Bye", Start: 500, End: 700},
			{Text: "now.", Start: 700, End: 900},
		},
	}}

	sentences, err := svc.Segment(context.Background(), utterances)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	cues := svc.CuesFromSentences(sentences, CueStyle{Italic: true})
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	want := []layout.Cue{
		{Text: "Hi there.", Start: 0, End: 400, FontColor: "#FF0000", FontSize: 10, Italic: true},
		{Text: "Bye now.", Start: 500, End: 900, FontColor: "#FF0000", FontSize: 10, Italic: true},
	}
	for i := range want {
		if cues[i] != want[i] {
			t.Errorf("cue %d = %+v, want %+v", i, cues[i], want[i])
		}
	}

	custom := svc.CuesFromSentences(sentences, CueStyle{FontColor: "#00FF00", FontSize: 24, Bold: true})
	if custom[0].FontColor != "#00FF00" || custom[0].FontSize != 24 || !custom[0].Bold {
		t.Fatalf("explicit style not applied: %+v", custom[0])
	}
}

func TestSegmentLenientModeLogsMismatch(t *testing.T) {
	var buf bytes.Buffer
	cfg := testsupport.NewConfig(t)
	svc := NewService(cfg, slog.New(slog.NewJSONHandler(&buf, nil)))

	sentences, err := svc.Segment(context.Background(), []transcript.Utterance{
		{Text: "Intro.", Words: []transcript.Word{{Text: "Intro.", Start: 0, End: 50}}},
		{Text: "Hello world.", Words: []transcript.Word{{Text: "Hello", Start: 60, End: 100}, {Text: "word.", Start: 100, End: 300}}},
	})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(sentences) != 2 || sentences[1].End != 100 {
		t.Fatalf("expected truncated sentence ending at 100, got %+v", sentences)
	}
	if !strings.Contains(buf.String(), `"event_type":"alignment_truncated"`) {
		t.Fatalf("expected alignment warning, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"utterance":1`) {
		t.Fatalf("expected warning to name utterance 1, got %s", buf.String())
	}
}

func TestSegmentStrictModeFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Subtitles.StrictAlignment = true
	svc := NewService(cfg, nil)

	_, err := svc.Segment(context.Background(), []transcript.Utterance{{
		Text:  "Hello world.",
		Words: []transcript.Word{{Text: "Hello"}, {Text: "word."}},
	}})
	if !errors.Is(err, services.ErrValidation) || !errors.Is(err, transcript.ErrAlignmentMismatch) {
		t.Fatalf("expected validation-marked alignment mismatch, got %v", err)
	}
	if services.HTTPStatus(err) != 400 {
		t.Fatalf("expected 400, got %d", services.HTTPStatus(err))
	}
}

func TestRenderProducesDocument(t *testing.T) {
	svc := newTestService(t)
	cues := []layout.Cue{
		{Text: "Second", Start: 2000, End: 3000},
		{Text: "First", Start: 0, End: 1500, FontColor: "#112233"},
	}
	result, err := svc.Render(context.Background(), cues, layout.Config{VideoWidth: 1920, VideoHeight: 1080})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.Lines != 2 || len(result.Events) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	for _, want := range []string{
		"PlayResX: 1920\nPlayResY: 1080\n",
		"Style: Default,Arial,54,",
		"Dialogue: 0,0:00:00.00,0:00:01.50,Default,,0,0,0,,{\\c&H332211&}First\n",
	} {
		if !strings.Contains(result.Document, want) {
			t.Errorf("document missing %q:\n%s", want, result.Document)
		}
	}
	if strings.Index(result.Document, "First") > strings.Index(result.Document, "Second") {
		t.Error("events should be ordered by start time")
	}
}

func TestRenderRejectsBadInput(t *testing.T) {
	svc := newTestService(t)
	cases := []struct {
		name string
		cues []layout.Cue
		cfg  layout.Config
	}{
		{"zero resolution", []layout.Cue{{Text: "x", End: 10}}, layout.Config{}},
		{"inverted cue", []layout.Cue{{Text: "x", Start: 20, End: 10}}, layout.Config{VideoWidth: 640, VideoHeight: 360}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Render(context.Background(), tc.cues, tc.cfg)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRenderInternalFailuresMapTo500(t *testing.T) {
	svc := newTestService(t)
	cfg := layout.Config{VideoWidth: 640, VideoHeight: 360}
	cues := []layout.Cue{{Text: "Hello", Start: 0, End: 1000}}

	orig := buildEvents
	buildEvents = func([]layout.Cue, layout.Config, layout.Options) ([]ssa.Event, error) {
		return nil, fmt.Errorf("cue 0: %w", layout.ErrSplitInvariant)
	}
	_, err := svc.Render(context.Background(), cues, cfg)
	buildEvents = orig
	if !errors.Is(err, services.ErrInternal) || !errors.Is(err, layout.ErrSplitInvariant) {
		t.Fatalf("expected internal split error, got %v", err)
	}
	if got := services.HTTPStatus(err); got != http.StatusInternalServerError {
		t.Fatalf("HTTPStatus = %d, want 500", got)
	}

	missingDir := filepath.Join(t.TempDir(), "missing", "out.ass")
	_, err = svc.RenderFile(context.Background(), cues, cfg, missingDir)
	if !errors.Is(err, services.ErrInternal) {
		t.Fatalf("expected internal write error, got %v", err)
	}
	if got := services.HTTPStatus(err); got != http.StatusInternalServerError {
		t.Fatalf("HTTPStatus = %d, want 500", got)
	}
}

func TestRenderEmptyCuesYieldsHeaderOnly(t *testing.T) {
	svc := newTestService(t)
	result, err := svc.Render(context.Background(), nil, layout.Config{VideoWidth: 640, VideoHeight: 360})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(result.Document, "Dialogue:") || !strings.HasSuffix(result.Document, "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n") {
		t.Fatalf("unexpected document:\n%s", result.Document)
	}
}

func TestServiceUsesConfiguredStyle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Subtitles.StyleName = "Burned"
	cfg.Subtitles.FontName = "Noto Sans"
	cfg.Subtitles.MinFontSize = 20
	svc := NewService(cfg, nil)

	result, err := svc.Render(context.Background(), []layout.Cue{{Text: "Hi", End: 100}}, layout.Config{VideoWidth: 320, VideoHeight: 240})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(result.Document, "Style: Burned,Noto Sans,20,") {
		t.Fatalf("configured style not used:\n%s", result.Document)
	}
	if !strings.Contains(result.Document, ",Burned,,0,0,0,,Hi\n") {
		t.Fatalf("dialogue should reference configured style:\n%s", result.Document)
	}
}
