package layout

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrSplitInvariant indicates the splitter produced pieces or intervals
	// that do not reconstruct the input. It always signals a bug.
	ErrSplitInvariant = errors.New("split invariant violated")
	// ErrInvalidCue rejects cues with negative or inverted times.
	ErrInvalidCue = errors.New("invalid cue")
)

// Split returns the display chunks for a cue at the given resolution. The
// result is never empty: text within the character budget comes back as a
// single chunk identical to the cue.
func Split(c Cue, cfg Config, opts Options) ([]DisplayChunk, error) {
	if c.Start < 0 || c.End < c.Start {
		return nil, fmt.Errorf("cue [%d, %d): %w", c.Start, c.End, ErrInvalidCue)
	}
	opts = opts.withDefaults()

	budget := cfg.ChunkCharBudget(opts)
	if utf8.RuneCountInString(c.Text) < budget {
		return []DisplayChunk{{Text: c.Text, Start: c.Start, End: c.End}}, nil
	}

	pieces := SplitPieces(c.Text, budget, opts.Punctuation)
	if strings.Join(pieces, "") != c.Text {
		return nil, fmt.Errorf("pieces do not reconstruct cue text: %w", ErrSplitInvariant)
	}

	if len(pieces) <= 2 {
		return []DisplayChunk{{
			Text:  strings.Join(pieces, opts.LineBreak),
			Start: c.Start,
			End:   c.End,
		}}, nil
	}

	intervals, err := Partition(c.Start, c.End, len(pieces))
	if err != nil {
		return nil, err
	}
	if err := checkIntervals(intervals, c.Start, c.End); err != nil {
		return nil, err
	}

	chunks := make([]DisplayChunk, 0, (len(pieces)+1)/2)
	for i := 0; i < len(pieces); i += 2 {
		j := min(i+2, len(pieces))
		chunks = append(chunks, DisplayChunk{
			Text:  strings.Join(pieces[i:j], opts.LineBreak),
			Start: intervals[i].Start,
			End:   intervals[j-1].End,
		})
	}
	return chunks, nil
}

// SplitPieces cuts text into runs of budget runes. When the rune right after a
// cut is in punctuation, it stays with the preceding piece. Budgets below one
// are treated as one.
func SplitPieces(text string, budget int, punctuation string) []string {
	if text == "" {
		return nil
	}
	if budget < 1 {
		budget = 1
	}
	runes := []rune(text)
	var pieces []string
	for i := 0; i < len(runes); {
		end := min(i+budget, len(runes))
		if end < len(runes) && strings.ContainsRune(punctuation, runes[end]) {
			end++
		}
		pieces = append(pieces, string(runes[i:end]))
		i = end
	}
	return pieces
}

func checkIntervals(intervals []Interval, start, end int64) error {
	if len(intervals) == 0 || intervals[0].Start != start || intervals[len(intervals)-1].End != end {
		return fmt.Errorf("intervals do not span [%d, %d): %w", start, end, ErrSplitInvariant)
	}
	var total int64
	for i, iv := range intervals {
		if iv.End < iv.Start {
			return fmt.Errorf("interval %d is inverted: %w", i, ErrSplitInvariant)
		}
		if i > 0 && intervals[i-1].End != iv.Start {
			return fmt.Errorf("gap or overlap before interval %d: %w", i, ErrSplitInvariant)
		}
		total += iv.End - iv.Start
	}
	if total != end-start {
		return fmt.Errorf("intervals sum to %d, want %d: %w", total, end-start, ErrSplitInvariant)
	}
	return nil
}
