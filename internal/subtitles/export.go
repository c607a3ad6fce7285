package subtitles

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/asticode/go-astisub"

	"subburn/internal/layout"
	"subburn/internal/ssa"
)

// Output formats accepted by Export.
const (
	FormatASS = "ass"
	FormatSRT = "srt"
	FormatVTT = "vtt"
)

// Export writes events as SubRip or WebVTT. Styling overrides are dropped;
// each display chunk becomes one item and line-break markers become lines.
func Export(w io.Writer, events []ssa.Event, format string) error {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b ssa.Event) int {
		return cmp.Compare(a.Cue.Start, b.Cue.Start)
	})

	subs := astisub.NewSubtitles()
	for _, ev := range sorted {
		chunks := ev.Chunks
		if len(chunks) == 0 {
			chunks = []layout.DisplayChunk{{Text: ev.Cue.Text, Start: ev.Cue.Start, End: ev.Cue.End}}
		}
		for _, chunk := range chunks {
			item := &astisub.Item{
				StartAt: time.Duration(chunk.Start) * time.Millisecond,
				EndAt:   time.Duration(chunk.End) * time.Millisecond,
			}
			for _, line := range strings.Split(chunk.Text, layout.LineBreak) {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				item.Lines = append(item.Lines, astisub.Line{Items: []astisub.LineItem{{Text: line}}})
			}
			if len(item.Lines) > 0 {
				subs.Items = append(subs.Items, item)
			}
		}
	}

	switch strings.ToLower(format) {
	case FormatSRT:
		return subs.WriteToSRT(w)
	case FormatVTT:
		return subs.WriteToWebVTT(w)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
