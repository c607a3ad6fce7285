package layout

import (
	"fmt"
	"math"
)

// Defaults used when Options fields are zero.
const (
	DefaultMinFontSize = 16
	DefaultFontScale   = 0.05
	// DefaultPunctuation are the characters a piece may absorb when they fall
	// right after a cut.
	DefaultPunctuation = "。？！，；：,.?!;:、"
	// LineBreak is the subtitle markup's inline line-break escape, written as
	// two literal characters.
	LineBreak = `\n`
)

// Cue is a span of text scheduled for display. Times are milliseconds.
type Cue struct {
	Text      string `json:"text"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
	FontColor string `json:"font_color,omitempty"`
	FontSize  int    `json:"font_size,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
}

// DisplayChunk is the part of a cue shown during [Start, End). Text may hold
// LineBreak markers between lines.
type DisplayChunk struct {
	Text  string `json:"text"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// Config describes the target video.
type Config struct {
	VideoWidth  int `json:"video_width"`
	VideoHeight int `json:"video_height"`
}

// Options carries the tunables for font sizing and splitting.
type Options struct {
	MinFontSize int
	FontScale   float64
	Punctuation string
	LineBreak   string
}

// DefaultOptions returns the standard sizing and splitting rules.
func DefaultOptions() Options {
	return Options{
		MinFontSize: DefaultMinFontSize,
		FontScale:   DefaultFontScale,
		Punctuation: DefaultPunctuation,
		LineBreak:   LineBreak,
	}
}

func (o Options) withDefaults() Options {
	if o.MinFontSize <= 0 {
		o.MinFontSize = DefaultMinFontSize
	}
	if o.FontScale <= 0 {
		o.FontScale = DefaultFontScale
	}
	if o.Punctuation == "" {
		o.Punctuation = DefaultPunctuation
	}
	if o.LineBreak == "" {
		o.LineBreak = LineBreak
	}
	return o
}

// BaseFontSize returns max(MinFontSize, round(VideoHeight*FontScale)).
// Halves round to even.
func (c Config) BaseFontSize(opts Options) int {
	opts = opts.withDefaults()
	size := int(math.RoundToEven(float64(c.VideoHeight) * opts.FontScale))
	if size < opts.MinFontSize {
		return opts.MinFontSize
	}
	return size
}

// ChunkCharBudget returns VideoWidth / BaseFontSize using integer division.
func (c Config) ChunkCharBudget(opts Options) int {
	return c.VideoWidth / c.BaseFontSize(opts)
}

// Validate reports whether the dimensions describe a renderable video.
func (c Config) Validate() error {
	if c.VideoWidth <= 0 || c.VideoHeight <= 0 {
		return fmt.Errorf("video dimensions %dx%d must be positive", c.VideoWidth, c.VideoHeight)
	}
	return nil
}
