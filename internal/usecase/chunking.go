package usecase

import (
	"math"
	"time"
)

// MaxChunk is the longest window fetched in one upstream call
const MaxChunk = 12 * time.Hour

// Window is a half-open time span [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// SplitIntoChunks covers [start, end) with contiguous windows of at most size.
// The last window may be shorter.
func SplitIntoChunks(start, end time.Time, size time.Duration) []Window {
	if size <= 0 || size > MaxChunk {
		size = MaxChunk
	}

	var windows []Window
	for cur := start; cur.Before(end); {
		next := cur.Add(size)
		if next.After(end) {
			next = end
		}
		windows = append(windows, Window{Start: cur, End: next})
		cur = next
	}
	return windows
}

// OffsetAndDuration expresses w relative to now the way the provider expects:
// the offset is derived from the window midpoint and the duration is capped at 720 minutes.
func OffsetAndDuration(w Window, now time.Time) (int, int) {
	duration := int(math.Ceil(w.Duration().Minutes()))
	duration = min(duration, int(MaxChunk/time.Minute))

	mid := w.Start.Add(w.Duration() / 2)
	offset := int(math.Round(mid.Sub(now).Minutes() - float64(duration)/2))

	return offset, duration
}
