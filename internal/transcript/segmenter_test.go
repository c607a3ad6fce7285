package transcript

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
)

func TestSegmentSplitsAndAlignsSentences(t *testing.T) {
	u := Utterance{
		Text:       "Hi there. Bye now.",
		Speaker:    "A",
		Confidence: 0.92,
		Words: []Word{
			{Text: "Hi", Start: 0, End: 100},
			{Text: "there.", Start: 100, End: 400},
			{Text: "Bye", Start: 500, End: 700},
			{Text: "now.", Start: 700, End: 900},
		},
	}

	sentences, err := Segment(u, DefaultSegmentOptions())
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sentences))
	}

	want := []struct {
		text       string
		start, end int64
		words      int
	}{
		{"Hi there.", 0, 400, 2},
		{"Bye now.", 500, 900, 2},
	}
	for i, w := range want {
		got := sentences[i]
		if got.Text != w.text || got.Start != w.start || got.End != w.end {
			t.Errorf("sentence %d = {%q %d %d}, want {%q %d %d}", i, got.Text, got.Start, got.End, w.text, w.start, w.end)
		}
		if len(got.Words) != w.words {
			t.Errorf("sentence %d words = %d, want %d", i, len(got.Words), w.words)
		}
		if got.Speaker != "A" || got.Confidence != 0.92 {
			t.Errorf("sentence %d lost utterance metadata: %+v", i, got)
		}
	}
}

func TestSegmentWithoutTerminatorYieldsWholeText(t *testing.T) {
	u := Utterance{
		Text:  "no punctuation here",
		Words: []Word{{Text: "no", Start: 10, End: 20}, {Text: "punctuation", Start: 20, End: 60}, {Text: "here", Start: 60, End: 90}},
	}
	sentences, err := Segment(u, DefaultSegmentOptions())
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(sentences) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(sentences))
	}
	if sentences[0].Text != u.Text || sentences[0].Start != 10 || sentences[0].End != 90 {
		t.Fatalf("unexpected sentence: %+v", sentences[0])
	}
}

func TestSegmentEmptyTextYieldsNothing(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		sentences, err := Segment(Utterance{Text: text}, DefaultSegmentOptions())
		if err != nil {
			t.Fatalf("Segment(%q): %v", text, err)
		}
		if len(sentences) != 0 {
			t.Fatalf("Segment(%q) = %d sentences, want 0", text, len(sentences))
		}
	}
}

func TestSegmentTruncatesOnMismatchWithoutRollback(t *testing.T) {
	// The word list strips the comma, so the first sentence fails on its first
	// token and the cursor never moves; the second sentence fails the same way
	// and inherits the previous end.
	u := Utterance{
		Text: "Well, what now? Go.",
		Words: []Word{
			{Text: "Well", Start: 0, End: 200},
			{Text: "what", Start: 250, End: 400},
			{Text: "now?", Start: 400, End: 600},
			{Text: "Go.", Start: 700, End: 800},
		},
	}

	var mismatches []*MismatchError
	opts := DefaultSegmentOptions()
	opts.OnMismatch = func(m *MismatchError) { mismatches = append(mismatches, m) }

	sentences, err := Segment(u, opts)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sentences))
	}
	if sentences[0].Start != 0 || sentences[0].End != 0 {
		t.Fatalf("first sentence should have no matched words: %+v", sentences[0])
	}
	if len(sentences[0].Words) != 0 {
		t.Fatalf("first sentence words = %d, want 0", len(sentences[0].Words))
	}
	if sentences[1].Start != 0 || sentences[1].End != 0 {
		t.Fatalf("second sentence should inherit previous end: %+v", sentences[1])
	}
	if len(mismatches) != 2 {
		t.Fatalf("expected 2 mismatches, got %d", len(mismatches))
	}
	if mismatches[0].Token != "Well," || mismatches[0].Expected != "Well" {
		t.Fatalf("unexpected first mismatch: %+v", mismatches[0])
	}
}

func TestSegmentPartialMatchKeepsAdvancedCursor(t *testing.T) {
	u := Utterance{
		Text: "One two three. Four.",
		Words: []Word{
			{Text: "One", Start: 0, End: 100},
			{Text: "two", Start: 100, End: 200},
			{Text: "THREE", Start: 200, End: 300},
			{Text: "Four.", Start: 400, End: 500},
		},
	}
	sentences, err := Segment(u, DefaultSegmentOptions())
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if sentences[0].Start != 0 || sentences[0].End != 200 || len(sentences[0].Words) != 2 {
		t.Fatalf("unexpected first sentence: %+v", sentences[0])
	}
	// The cursor stopped on "THREE", so "Four." cannot match.
	if sentences[1].Start != 200 || sentences[1].End != 200 {
		t.Fatalf("unexpected second sentence: %+v", sentences[1])
	}
}

func TestSegmentStrictModeReturnsMismatch(t *testing.T) {
	u := Utterance{
		Text:  "Hello, world.",
		Words: []Word{{Text: "Hello", Start: 0, End: 100}, {Text: "world.", Start: 100, End: 200}},
	}
	opts := DefaultSegmentOptions()
	opts.Strict = true

	_, err := Segment(u, opts)
	if !errors.Is(err, ErrAlignmentMismatch) {
		t.Fatalf("expected ErrAlignmentMismatch, got %v", err)
	}
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *MismatchError, got %T", err)
	}
	if mismatch.Sentence != 0 || mismatch.Token != "Hello," || mismatch.Expected != "Hello" {
		t.Fatalf("unexpected mismatch detail: %+v", mismatch)
	}
}

func TestSegmentStrictModeReportsExhaustedWords(t *testing.T) {
	u := Utterance{
		Text:  "Hi there.",
		Words: []Word{{Text: "Hi", Start: 0, End: 100}},
	}
	opts := DefaultSegmentOptions()
	opts.Strict = true

	_, err := Segment(u, opts)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *MismatchError, got %v", err)
	}
	if mismatch.Token != "there." || mismatch.Expected != "" {
		t.Fatalf("unexpected mismatch: %+v", mismatch)
	}
}

func TestSegmentSpansAreMonotonic(t *testing.T) {
	u := Utterance{
		Text: "A b. C d! E f? G h。",
		Words: []Word{
			{Text: "A", Start: 0, End: 10}, {Text: "b.", Start: 10, End: 20},
			{Text: "C", Start: 30, End: 40}, {Text: "x", Start: 40, End: 50},
			{Text: "E", Start: 60, End: 70}, {Text: "f?", Start: 70, End: 80},
			{Text: "G", Start: 90, End: 100}, {Text: "h。", Start: 100, End: 110},
		},
	}
	sentences, err := Segment(u, DefaultSegmentOptions())
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	for i := 1; i < len(sentences); i++ {
		if sentences[i].Start < sentences[i-1].Start || sentences[i].End < sentences[i-1].End {
			t.Fatalf("spans not monotonic at %d: %+v then %+v", i, sentences[i-1], sentences[i])
		}
	}
}

func TestSegmentReconstructsText(t *testing.T) {
	texts := []string{
		"Hi there. Bye now.",
		"What did you do to my sisters? Oh, God, no. I was so close",
		"Wait... what?! Really",
		"你好。今天天气很好！是吗？",
		". leading terminator",
	}
	for _, text := range texts {
		words := make([]Word, 0)
		for i, f := range strings.Fields(text) {
			words = append(words, Word{Text: f, Start: int64(i * 100), End: int64(i*100 + 90)})
		}
		sentences, err := Segment(Utterance{Text: text, Words: words}, DefaultSegmentOptions())
		if err != nil {
			t.Fatalf("Segment(%q): %v", text, err)
		}
		var parts []string
		for _, s := range sentences {
			parts = append(parts, s.Text)
		}
		got := strings.Join(strings.Fields(strings.Join(parts, " ")), "")
		want := strings.Join(strings.Fields(text), "")
		if got != want {
			t.Errorf("reconstruction of %q = %q", text, got)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Hi there. Bye now.", []string{"Hi there.", "Bye now."}},
		{"Hi there. Bye now", []string{"Hi there.", "Bye now"}},
		{"Wait... what", []string{"Wait...", "what"}},
		{"一。二！三？", []string{"一。", "二！", "三？"}},
		{"Really?!", []string{"Really?!"}},
		{"...", []string{"..."}},
		{"", nil},
	}
	for _, tt := range tests {
		got := SplitSentences(tt.input, "")
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("SplitSentences(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSegmentAllPreservesUtteranceOrder(t *testing.T) {
	var utterances []Utterance
	for i := 0; i < 20; i++ {
		base := int64(i * 1000)
		utterances = append(utterances, Utterance{
			Text:    "First bit. Second bit.",
			Speaker: string(rune('A' + i%3)),
			Words: []Word{
				{Text: "First", Start: base, End: base + 100},
				{Text: "bit.", Start: base + 100, End: base + 200},
				{Text: "Second", Start: base + 300, End: base + 400},
				{Text: "bit.", Start: base + 400, End: base + 500},
			},
		})
	}
	sentences, err := SegmentAll(utterances, DefaultSegmentOptions())
	if err != nil {
		t.Fatalf("SegmentAll: %v", err)
	}
	if len(sentences) != 40 {
		t.Fatalf("expected 40 sentences, got %d", len(sentences))
	}
	for i := 1; i < len(sentences); i++ {
		if sentences[i].Start <= sentences[i-1].Start {
			t.Fatalf("sentence %d out of order: %d after %d", i, sentences[i].Start, sentences[i-1].Start)
		}
	}
}

func TestSegmentAllWrapsStrictFailure(t *testing.T) {
	utterances := []Utterance{
		{Text: "Fine.", Words: []Word{{Text: "Fine.", Start: 0, End: 10}}},
		{Text: "Broken.", Words: []Word{{Text: "broken", Start: 20, End: 30}}},
	}
	opts := DefaultSegmentOptions()
	opts.Strict = true
	_, err := SegmentAll(utterances, opts)
	if !errors.Is(err, ErrAlignmentMismatch) {
		t.Fatalf("expected alignment mismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "utterance 1") {
		t.Fatalf("expected utterance index in error, got %q", err)
	}
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) || mismatch.Utterance != 1 {
		t.Fatalf("expected mismatch for utterance 1, got %#v", mismatch)
	}
}

func TestSegmentAllReportsMismatchUtterance(t *testing.T) {
	utterances := []Utterance{
		{Text: "Fine.", Words: []Word{{Text: "Fine.", Start: 0, End: 10}}},
		{Text: "Broken.", Words: []Word{{Text: "broken", Start: 20, End: 30}}},
		{Text: "Also fine.", Words: []Word{{Text: "Also", Start: 40, End: 50}, {Text: "fine.", Start: 50, End: 60}}},
		{Text: "Wrong.", Words: []Word{{Text: "wrong", Start: 70, End: 80}}},
	}
	var (
		mu   sync.Mutex
		seen []int
	)
	opts := DefaultSegmentOptions()
	opts.OnMismatch = func(m *MismatchError) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, m.Utterance)
	}
	if _, err := SegmentAll(utterances, opts); err != nil {
		t.Fatalf("SegmentAll: %v", err)
	}
	slices.Sort(seen)
	if !slices.Equal(seen, []int{1, 3}) {
		t.Fatalf("mismatch utterances = %v, want [1 3]", seen)
	}
}
