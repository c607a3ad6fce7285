package transcript

// Alignment reports how a sentence's tokens mapped onto the word list.
type Alignment struct {
	Words []Word
	Start int64
	End   int64
	// OK is true when at least one token matched.
	OK bool
	// Complete is true when every token matched.
	Complete bool
	// MismatchIndex is the token index where matching stopped, or -1.
	MismatchIndex int
	// Expected is the word text at the cursor when matching stopped. Empty
	// when the word list was exhausted.
	Expected string
}

// Aligner matches sentence tokens against an utterance's ordered words.
//
// The cursor only moves forward. A mismatch stops consumption for the current
// sentence but does not roll back words already consumed, so a sentence whose
// tokens differ from the word list (punctuation normalized differently, for
// example) silently loses its trailing words. Callers that need to detect this
// should check Alignment.Complete.
type Aligner struct {
	words  []Word
	cursor int
}

// NewAligner returns an aligner positioned at the first word.
func NewAligner(words []Word) *Aligner {
	return &Aligner{words: words}
}

// Cursor returns the index of the next unconsumed word.
func (a *Aligner) Cursor() int {
	return a.cursor
}

// Remaining returns the number of unconsumed words.
func (a *Aligner) Remaining() int {
	return len(a.words) - a.cursor
}

// Align consumes words matching tokens in order, starting at the cursor.
func (a *Aligner) Align(tokens []string) Alignment {
	result := Alignment{MismatchIndex: -1}
	for idx, token := range tokens {
		if a.cursor >= len(a.words) {
			result.MismatchIndex = idx
			break
		}
		word := a.words[a.cursor]
		if token != word.Text {
			result.MismatchIndex = idx
			result.Expected = word.Text
			break
		}
		a.cursor++
		if !result.OK {
			result.Start = word.Start
			result.OK = true
		}
		result.End = word.End
		result.Words = append(result.Words, word)
	}
	result.Complete = result.MismatchIndex == -1
	return result
}
