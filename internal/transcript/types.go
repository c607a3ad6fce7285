package transcript

// Word is a single timed token reported by the transcription provider.
// Start and End are milliseconds from the beginning of the media.
type Word struct {
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
	Speaker    string  `json:"speaker,omitempty"`
}

// Utterance is one contiguous speech segment with word-level timing.
// Joining Words[i].Text with spaces is expected to reproduce Text after
// whitespace normalization; alignment depends on it.
type Utterance struct {
	Text       string  `json:"text"`
	Speaker    string  `json:"speaker"`
	Confidence float64 `json:"confidence"`
	Start      int64   `json:"start,omitempty"`
	End        int64   `json:"end,omitempty"`
	Words      []Word  `json:"words"`
}

// Sentence is a punctuation-delimited slice of an utterance with timing
// recovered from the words it matched.
type Sentence struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Words      []Word  `json:"words"`
}

// Duration returns the sentence span in milliseconds.
func (s Sentence) Duration() int64 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}
