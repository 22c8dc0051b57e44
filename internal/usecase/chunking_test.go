package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIntoChunks_CoversRangeWithoutGaps(t *testing.T) {
	start := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Hour)

	windows := SplitIntoChunks(start, end, 12*time.Hour)
	require.Len(t, windows, 3)

	assert.Equal(t, start, windows[0].Start)
	assert.Equal(t, end, windows[len(windows)-1].End)

	var total time.Duration
	for i, w := range windows {
		assert.LessOrEqual(t, w.Duration(), 720*time.Minute)
		assert.True(t, w.Duration() > 0)
		if i > 0 {
			assert.Equal(t, windows[i-1].End, w.Start, "gap or overlap at window %d", i)
		}
		total += w.Duration()
	}
	assert.Equal(t, 30*time.Hour, total)
	assert.Equal(t, 6*time.Hour, windows[2].Duration())
}

func TestSplitIntoChunks_ClampsSize(t *testing.T) {
	start := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	windows := SplitIntoChunks(start, start.Add(24*time.Hour), 48*time.Hour)
	assert.Len(t, windows, 2)

	assert.Empty(t, SplitIntoChunks(start, start, time.Hour))
	assert.Empty(t, SplitIntoChunks(start, start.Add(-time.Hour), time.Hour))
}

func TestOffsetAndDuration(t *testing.T) {
	now := time.Date(2025, time.July, 31, 12, 0, 0, 0, time.UTC)
	w := Window{
		Start: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC),
	}

	offset, duration := OffsetAndDuration(w, now)
	assert.Equal(t, 720, offset)
	assert.Equal(t, 720, duration)
	assert.Equal(t, w.Start, now.Add(time.Duration(offset)*time.Minute))

	past := Window{Start: now.Add(-6 * time.Hour), End: now.Add(-2 * time.Hour)}
	offset, duration = OffsetAndDuration(past, now)
	assert.Equal(t, -360, offset)
	assert.Equal(t, 240, duration)
}
