// Package layout fits subtitle cues to a target video resolution.
//
// A Config derives a base font size and a per-line character budget from the
// video dimensions. Split breaks cues whose text exceeds the budget into
// punctuation-aware pieces, pairs them into two-line display chunks, and
// partitions the cue's time span across the chunks so that the chunks cover
// the cue's interval exactly.
package layout
