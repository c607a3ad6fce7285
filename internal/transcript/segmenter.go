package transcript

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// DefaultTerminators lists the sentence-ending characters recognized by Segment.
const DefaultTerminators = ".!?。！？"

// ErrAlignmentMismatch marks a sentence whose tokens did not fully match the
// utterance's word list. It is only returned in strict mode.
var ErrAlignmentMismatch = errors.New("alignment mismatch")

// MismatchError describes where alignment stopped for a sentence.
type MismatchError struct {
	// Utterance is the index within the SegmentAll input. Segment leaves it
	// zero.
	Utterance int
	Sentence  int
	Text      string
	Token     string
	Expected  string
}

func (e *MismatchError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("utterance %d sentence %d %q: token %q has no remaining word", e.Utterance, e.Sentence, e.Text, e.Token)
	}
	return fmt.Sprintf("utterance %d sentence %d %q: token %q does not match word %q", e.Utterance, e.Sentence, e.Text, e.Token, e.Expected)
}

func (e *MismatchError) Unwrap() error { return ErrAlignmentMismatch }

// SegmentOptions controls sentence splitting and alignment.
type SegmentOptions struct {
	// Terminators are the characters that end a sentence. Empty means
	// DefaultTerminators.
	Terminators string
	// Strict returns an error on the first alignment mismatch instead of
	// truncating the sentence's word consumption.
	Strict bool
	// OnMismatch, when set, observes every mismatch in lenient mode.
	// SegmentAll calls it from several goroutines at once, so it must be
	// safe for concurrent use.
	OnMismatch func(*MismatchError)
}

// DefaultSegmentOptions returns lenient options with the default terminators.
func DefaultSegmentOptions() SegmentOptions {
	return SegmentOptions{Terminators: DefaultTerminators}
}

// Segment splits an utterance into sentences and assigns each the timing of
// the words it aligned with.
//
// A sentence whose first token does not match gets a zero-length span placed
// at the previous sentence's end (0 for the first sentence), which keeps spans
// monotonic in document order.
func Segment(u Utterance, opts SegmentOptions) ([]Sentence, error) {
	parts := SplitSentences(u.Text, opts.Terminators)
	if len(parts) == 0 {
		return nil, nil
	}

	aligner := NewAligner(u.Words)
	sentences := make([]Sentence, 0, len(parts))
	var lastEnd int64
	for i, text := range parts {
		tokens := strings.Fields(text)
		alignment := aligner.Align(tokens)
		if !alignment.Complete {
			mismatch := &MismatchError{
				Sentence: i,
				Text:     text,
				Token:    tokens[alignment.MismatchIndex],
				Expected: alignment.Expected,
			}
			if opts.Strict {
				return nil, mismatch
			}
			if opts.OnMismatch != nil {
				opts.OnMismatch(mismatch)
			}
		}

		start, end := lastEnd, lastEnd
		if alignment.OK {
			start, end = alignment.Start, alignment.End
		}
		lastEnd = end

		sentences = append(sentences, Sentence{
			Speaker:    u.Speaker,
			Text:       text,
			Confidence: u.Confidence,
			Start:      start,
			End:        end,
			Words:      alignment.Words,
		})
	}
	return sentences, nil
}

// SegmentAll segments each utterance independently and concatenates the
// results in input order. Utterances are processed concurrently; each gets its
// own Aligner.
func SegmentAll(utterances []Utterance, opts SegmentOptions) ([]Sentence, error) {
	results := make([][]Sentence, len(utterances))
	errs := make([]error, len(utterances))

	var wg sync.WaitGroup
	for i := range utterances {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			local := opts
			if opts.OnMismatch != nil {
				local.OnMismatch = func(m *MismatchError) {
					m.Utterance = i
					opts.OnMismatch(m)
				}
			}
			results[i], errs[i] = Segment(utterances[i], local)
		}(i)
	}
	wg.Wait()

	var out []Sentence
	for i, sentences := range results {
		if err := errs[i]; err != nil {
			var mismatch *MismatchError
			if errors.As(err, &mismatch) {
				mismatch.Utterance = i
				return nil, mismatch
			}
			return nil, fmt.Errorf("utterance %d: %w", i, err)
		}
		out = append(out, sentences...)
	}
	return out, nil
}

// SplitSentences splits text after each terminator, keeping the terminator
// with the text before it. Segments that are empty or whitespace are dropped;
// a terminator that follows such a segment is attached to the previous
// sentence, or carried into the next one when there is none. Text after the
// last terminator becomes its own sentence. Returned sentences are trimmed.
func SplitSentences(text, terminators string) []string {
	if terminators == "" {
		terminators = DefaultTerminators
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var (
		sentences []string
		current   strings.Builder
		pending   string
	)
	for _, r := range text {
		if !strings.ContainsRune(terminators, r) {
			current.WriteRune(r)
			continue
		}
		content := current.String()
		current.Reset()
		if strings.TrimSpace(content) == "" {
			if n := len(sentences); n > 0 {
				sentences[n-1] += string(r)
			} else {
				pending += content + string(r)
			}
			continue
		}
		sentences = append(sentences, strings.TrimSpace(pending+content+string(r)))
		pending = ""
	}
	if rest := current.String(); strings.TrimSpace(rest) != "" {
		sentences = append(sentences, strings.TrimSpace(pending+rest))
	} else if pending != "" && len(sentences) == 0 {
		sentences = append(sentences, strings.TrimSpace(pending))
	}
	return sentences
}
