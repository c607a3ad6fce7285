package ssa

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"subburn/internal/fileutil"
	"subburn/internal/layout"
)

// Defaults for the single style definition.
const (
	DefaultStyleName = "Default"
	DefaultFontName  = "Arial"
	DefaultTitle     = "Generated Subtitle"
)

const (
	stylesFormat = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, TertiaryColour, BackColour, Bold, Italic, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, AlphaLevel, Encoding"
	styleColours = "&H00FFFFFF,&H000000FF,&H00000000,&H00000000"
	styleTail    = "0,0,1,2,2,2,30,30,10,0,1"
	eventsFormat = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"
)

// Style names the one style every Dialogue line references.
type Style struct {
	Name     string
	FontName string
	Title    string
}

// DefaultStyle returns the Default/Arial style.
func DefaultStyle() Style {
	return Style{Name: DefaultStyleName, FontName: DefaultFontName, Title: DefaultTitle}
}

func (s Style) withDefaults() Style {
	if strings.TrimSpace(s.Name) == "" {
		s.Name = DefaultStyleName
	}
	if strings.TrimSpace(s.FontName) == "" {
		s.FontName = DefaultFontName
	}
	if strings.TrimSpace(s.Title) == "" {
		s.Title = DefaultTitle
	}
	return s
}

// Event is one cue together with the display chunks it was split into. Each
// chunk becomes one Dialogue line carrying the cue's overrides. An event with
// no chunks is emitted as a single line spanning the cue.
type Event struct {
	Cue    layout.Cue
	Chunks []layout.DisplayChunk
}

// Overrides returns the inline override block for the cue, or "" when the cue
// carries no styling. Malformed colours are dropped.
func (e Event) Overrides() string {
	var parts []string
	if e.Cue.FontColor != "" {
		if colour, ok := HexToColor(e.Cue.FontColor); ok {
			parts = append(parts, `\c`+colour)
		}
	}
	if e.Cue.FontSize > 0 {
		parts = append(parts, fmt.Sprintf(`\fs%d`, e.Cue.FontSize))
	}
	if e.Cue.Bold {
		parts = append(parts, `\b1`)
	}
	if e.Cue.Italic {
		parts = append(parts, `\i1`)
	}
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, "") + "}"
}

func (e Event) chunks() []layout.DisplayChunk {
	if len(e.Chunks) > 0 {
		return e.Chunks
	}
	return []layout.DisplayChunk{{Text: e.Cue.Text, Start: e.Cue.Start, End: e.Cue.End}}
}

// BuildEvents splits every cue for the target resolution.
func BuildEvents(cues []layout.Cue, cfg layout.Config, opts layout.Options) ([]Event, error) {
	events := make([]Event, 0, len(cues))
	for i, cue := range cues {
		chunks, err := layout.Split(cue, cfg, opts)
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", i, err)
		}
		events = append(events, Event{Cue: cue, Chunks: chunks})
	}
	return events, nil
}

// Writer serializes events for one target resolution.
type Writer struct {
	style Style
	cfg   layout.Config
	opts  layout.Options
}

// NewWriter returns a writer for the given style and resolution.
func NewWriter(style Style, cfg layout.Config, opts layout.Options) *Writer {
	return &Writer{style: style.withDefaults(), cfg: cfg, opts: opts}
}

// Header returns the script info, style and events-format block.
func (w *Writer) Header() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Script Info]\nTitle: %s\nScriptType: v4.00+\nCollisions: Normal\nPlayDepth: 0\n", w.style.Title)
	fmt.Fprintf(&b, "PlayResX: %d\nPlayResY: %d\n\n", w.cfg.VideoWidth, w.cfg.VideoHeight)
	b.WriteString("[V4+ Styles]\n")
	b.WriteString(stylesFormat + "\n")
	fmt.Fprintf(&b, "Style: %s,%s,%d,%s,%s\n\n", w.style.Name, w.style.FontName, w.cfg.BaseFontSize(w.opts), styleColours, styleTail)
	b.WriteString("[Events]\n")
	b.WriteString(eventsFormat + "\n")
	return b.String()
}

// Render returns the complete document. Events are stably sorted by cue start
// so equal starts keep their input order.
func (w *Writer) Render(events []Event) (string, error) {
	var b strings.Builder
	if err := w.Write(&b, events); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Write streams the document to out.
func (w *Writer) Write(out io.Writer, events []Event) error {
	if err := w.cfg.Validate(); err != nil {
		return fmt.Errorf("ssa: %w", err)
	}
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int {
		switch {
		case a.Cue.Start < b.Cue.Start:
			return -1
		case a.Cue.Start > b.Cue.Start:
			return 1
		default:
			return 0
		}
	})

	bw := bufio.NewWriter(out)
	if _, err := bw.WriteString(w.Header()); err != nil {
		return err
	}
	for _, ev := range sorted {
		overrides := ev.Overrides()
		for _, chunk := range ev.chunks() {
			if _, err := fmt.Fprintf(bw, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s%s\n",
				FormatTime(chunk.Start), FormatTime(chunk.End), w.style.Name, overrides, EscapeText(chunk.Text)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteFile writes the document to path atomically. On error the previous
// file, if any, is left untouched.
func (w *Writer) WriteFile(path string, events []Event) error {
	if err := w.cfg.Validate(); err != nil {
		return fmt.Errorf("ssa: %w", err)
	}
	return fileutil.WriteAtomicFunc(path, 0o644, func(out io.Writer) error {
		return w.Write(out, events)
	})
}
