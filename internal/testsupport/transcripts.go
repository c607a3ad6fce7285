package testsupport

import "subburn/internal/transcript"

// SampleUtterances returns two speaker turns whose word lists align exactly
// with their text.
func SampleUtterances() []transcript.Utterance {
	return []transcript.Utterance{
		{
			Text:       "Hello there. How are you?",
			Speaker:    "A",
			Confidence: 0.93,
			Start:      0,
			End:        1900,
			Words: []transcript.Word{
				{Text: "Hello", Start: 0, End: 400, Speaker: "A"},
				{Text: "there.", Start: 450, End: 900, Speaker: "A"},
				{Text: "How", Start: 1000, End: 1200, Speaker: "A"},
				{Text: "are", Start: 1250, End: 1500, Speaker: "A"},
				{Text: "you?", Start: 1550, End: 1900, Speaker: "A"},
			},
		},
		{
			Text:       "Fine, thanks!",
			Speaker:    "B",
			Confidence: 0.88,
			Start:      2100,
			End:        2900,
			Words: []transcript.Word{
				{Text: "Fine,", Start: 2100, End: 2400, Speaker: "B"},
				{Text: "thanks!", Start: 2450, End: 2900, Speaker: "B"},
			},
		},
	}
}
