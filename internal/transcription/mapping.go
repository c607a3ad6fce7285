package transcription

import (
	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"subburn/internal/textutil"
	"subburn/internal/transcript"
)

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// mapUtterances converts provider utterances. Transcripts requested without
// speaker labels have no utterances; their word list becomes one utterance
// with an empty speaker.
func mapUtterances(tr aai.Transcript) []transcript.Utterance {
	if len(tr.Utterances) == 0 {
		if len(tr.Words) == 0 {
			return nil
		}
		words := mapWords(tr.Words)
		return []transcript.Utterance{{
			Text:       textutil.NormalizeTranscriptText(deref(tr.Text)),
			Confidence: deref(tr.Confidence),
			Start:      words[0].Start,
			End:        words[len(words)-1].End,
			Words:      words,
		}}
	}

	out := make([]transcript.Utterance, 0, len(tr.Utterances))
	for _, u := range tr.Utterances {
		out = append(out, transcript.Utterance{
			Text:       textutil.NormalizeTranscriptText(deref(u.Text)),
			Speaker:    deref(u.Speaker),
			Confidence: deref(u.Confidence),
			Start:      deref(u.Start),
			End:        deref(u.End),
			Words:      mapWords(u.Words),
		})
	}
	return out
}

func mapWords(words []aai.TranscriptWord) []transcript.Word {
	out := make([]transcript.Word, 0, len(words))
	for _, w := range words {
		out = append(out, transcript.Word{
			Text:       textutil.NormalizeTranscriptText(deref(w.Text)),
			Start:      deref(w.Start),
			End:        deref(w.End),
			Confidence: deref(w.Confidence),
			Speaker:    deref(w.Speaker),
		})
	}
	return out
}
