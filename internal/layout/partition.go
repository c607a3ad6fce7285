package layout

import "fmt"

// Interval is a half-open span [Start, End) in milliseconds.
type Interval struct {
	Start int64
	End   int64
}

// Partition splits [start, end) into n contiguous integer intervals. The first
// (end-start)%n intervals are one millisecond longer than the rest and the last
// interval always ends exactly at end.
func Partition(start, end int64, n int) ([]Interval, error) {
	if n <= 0 {
		return nil, fmt.Errorf("partition into %d intervals: %w", n, ErrSplitInvariant)
	}
	if end < start {
		return nil, fmt.Errorf("partition [%d, %d): %w", start, end, ErrInvalidCue)
	}
	span := end - start
	base := span / int64(n)
	remainder := span % int64(n)

	out := make([]Interval, n)
	cursor := start
	for i := 0; i < n; i++ {
		length := base
		if int64(i) < remainder {
			length++
		}
		out[i] = Interval{Start: cursor, End: cursor + length}
		cursor += length
	}
	out[n-1].End = end
	return out, nil
}
