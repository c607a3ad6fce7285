package api

import (
	"subburn/internal/layout"
	"subburn/internal/transcript"
)

// Response status values.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// Cue style defaults applied to subtitle_data entries that omit them.
const (
	DefaultFontColor = "#FF0000"
	DefaultFontSize  = 10
)

// SubtitleData is one caller-supplied cue.
type SubtitleData struct {
	Text      string  `json:"text"`
	Start     int64   `json:"start"`
	End       int64   `json:"end"`
	FontColor *string `json:"font_color,omitempty"`
	FontSize  *int    `json:"font_size,omitempty"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
}

// Cue converts the entry to a layout cue, applying defaults for an absent
// colour or size. An explicit empty colour means no colour override.
func (d SubtitleData) Cue() layout.Cue {
	cue := layout.Cue{
		Text:      d.Text,
		Start:     d.Start,
		End:       d.End,
		FontColor: DefaultFontColor,
		FontSize:  DefaultFontSize,
		Bold:      d.Bold,
		Italic:    d.Italic,
	}
	if d.FontColor != nil {
		cue.FontColor = *d.FontColor
	}
	if d.FontSize != nil {
		cue.FontSize = *d.FontSize
	}
	return cue
}

// Cues converts a request's subtitle_data list.
func Cues(data []SubtitleData) []layout.Cue {
	cues := make([]layout.Cue, 0, len(data))
	for _, d := range data {
		cues = append(cues, d.Cue())
	}
	return cues
}

// TranscribeRequest asks for a transcript of a local file or URL. When
// TranscriptID is set the finished transcript is fetched instead.
type TranscribeRequest struct {
	AudioPath    string `json:"audio_path"`
	TranscriptID string `json:"transcript_id,omitempty"`
}

// TranscribeData is the payload of a successful transcription.
type TranscribeData struct {
	TranscriptID string                 `json:"transcript_id"`
	Cached       bool                   `json:"cached"`
	Utterances   []transcript.Utterance `json:"utterances"`
}

// SegmentRequest carries utterances to split into sentences.
type SegmentRequest struct {
	Utterances []transcript.Utterance `json:"utterances"`
}

// SegmentData is the payload of a successful segmentation.
type SegmentData struct {
	Sentences []transcript.Sentence `json:"sentences"`
}

// RenderRequest asks for a subtitle document sized for a video.
type RenderRequest struct {
	SubtitleData []SubtitleData `json:"subtitle_data"`
	VideoWidth   int            `json:"video_width"`
	VideoHeight  int            `json:"video_height"`
	Format       string         `json:"format,omitempty"`
}

// RenderData is the payload of a successful render.
type RenderData struct {
	Format   string `json:"format"`
	Document string `json:"document"`
	Events   int    `json:"events"`
	Lines    int    `json:"lines"`
}

// EmbedSubtitleRequest asks for cues to be burned into a video.
type EmbedSubtitleRequest struct {
	SubtitleData []SubtitleData `json:"subtitle_data"`
	VideoPath    string         `json:"video_path"`
}

// EmbedSubtitleResponse is the body of a successful embed.
type EmbedSubtitleResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Output  string `json:"output"`
	JobID   string `json:"job_id,omitempty"`
}

// SuccessResponse wraps a successful payload.
type SuccessResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// ErrorResponse describes a failed request.
type ErrorResponse struct {
	Status       string `json:"status"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	RequestID    string `json:"request_id,omitempty"`
}
