package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"flightsched-service/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icnWindow() *entity.RawWindow {
	return &entity.RawWindow{
		Departures: []entity.RawFlight{
			rawFlight("KE 631", "ICN", "CEB", "2025-08-01 06:55+09:00", "2025-08-01 10:35+08:00"),
			rawFlight("KE 701", "ICN", "NRT", "2025-08-01 08:00+09:00", "2025-08-01 10:20+09:00"),
			rawFlight("7C 2405", "ICN", "MNL", "2025-08-01 11:00+09:00", "2025-08-01 14:10+08:00"),
		},
	}
}

func TestRun_StoresOnlyRelevantFlights(t *testing.T) {
	f := newPipelineFixture(t, &fakeProvider{windows: []*entity.RawWindow{icnWindow()}})
	ctx := context.Background()
	req := f.newRun(t, "ICN", "2025-08-01", "2025-08-01")

	require.NoError(t, f.pipeline.Run(ctx, req))

	assert.Equal(t, []string{
		"routes/ICN-CEB/2025-08-01/flights/KE_631_202508010655",
		"routes/ICN-MNL/2025-08-01/flights/7C_2405_202508011100",
	}, f.shards.Paths())

	flights, err := f.store.GetByRouteAndDate(ctx, "ICN-CEB", "2025-08-01")
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "Incheon International Airport", flights[0].DepartureAirport)
	// filled in from airline reference data
	assert.Equal(t, "Korean Air", flights[0].Airline)

	status, err := f.pipeline.GetRunStatus(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunCompleted, status.Status)
	assert.Equal(t, 2, status.TotalWindows)
	assert.Equal(t, 2, status.CompletedWindows)
	assert.Equal(t, 0, status.FailedWindows)
	assert.Equal(t, 2, status.TotalFlights)
	assert.Equal(t, 2, status.CollectedFlights)
	assert.Equal(t, 2, f.provider.Calls())
}

func TestRun_SecondRunAddsNothing(t *testing.T) {
	provider := &fakeProvider{windows: []*entity.RawWindow{icnWindow(), nil, icnWindow()}}
	f := newPipelineFixture(t, provider)
	ctx := context.Background()

	require.NoError(t, f.pipeline.Run(ctx, f.newRun(t, "ICN", "2025-08-01", "2025-08-01")))
	second := f.newRun(t, "ICN", "2025-08-01", "2025-08-01")
	require.NoError(t, f.pipeline.Run(ctx, second))

	assert.Len(t, f.shards.Paths(), 2)

	status, err := f.pipeline.GetRunStatus(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunCompleted, status.Status)
	assert.Equal(t, 2, status.CollectedFlights)
	assert.Equal(t, 2, status.SkippedFlights)
}

func TestRun_FailedWindowDoesNotStopRun(t *testing.T) {
	provider := &fakeProvider{
		windows: []*entity.RawWindow{nil, icnWindow()},
		errs:    []error{errors.New("upstream returned 503")},
	}
	f := newPipelineFixture(t, provider)
	ctx := context.Background()
	req := f.newRun(t, "ICN", "2025-08-01", "2025-08-01")

	require.NoError(t, f.pipeline.Run(ctx, req))

	status, err := f.pipeline.GetRunStatus(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunCompleted, status.Status)
	assert.Equal(t, 1, status.FailedWindows)
	assert.Equal(t, 1, status.CompletedWindows)
	assert.Len(t, f.shards.Paths(), 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.pipeline.metrics.WindowsFailed))
}

func TestRun_CancelledBeforeNextWindow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := &fakeProvider{windows: []*entity.RawWindow{icnWindow()}}
	f := newPipelineFixture(t, provider)
	// cancel once the first fetch has been issued; it returns the context error
	provider.onCall = func(call int) {
		if call == 0 {
			cancel()
		}
	}
	req := f.newRun(t, "ICN", "2025-08-01", "2025-08-03")

	err := f.pipeline.Run(ctx, req)
	require.ErrorIs(t, err, context.Canceled)

	status, err := f.pipeline.GetRunStatus(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunFailed, status.Status)
	assert.Equal(t, "cancelled", status.ErrorDetail)
	assert.Equal(t, 1, provider.Calls())
	assert.Empty(t, f.shards.Paths())
}

func TestRun_StoreFailureCountsAsFailedWindow(t *testing.T) {
	provider := &fakeProvider{windows: []*entity.RawWindow{icnWindow()}}
	f := newPipelineFixture(t, provider)
	failing := &failingShardStore{MemoryShardStore: f.shards, failOn: 1}
	f.pipeline.store = NewShardedStore(failing, f.clock, f.pipeline.logger, f.pipeline.metrics)
	ctx := context.Background()
	req := f.newRun(t, "ICN", "2025-08-01", "2025-08-01")

	require.NoError(t, f.pipeline.Run(ctx, req))

	status, err := f.pipeline.GetRunStatus(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunCompleted, status.Status)
	assert.Equal(t, 1, status.FailedWindows)
	// partial outcome: received but not stored
	assert.Equal(t, 2, status.TotalFlights)
	assert.Equal(t, 0, status.CollectedFlights)
	assert.Empty(t, f.shards.Paths())
}

func TestRun_InvalidatesMonthCache(t *testing.T) {
	f := newPipelineFixture(t, &fakeProvider{windows: []*entity.RawWindow{icnWindow()}})
	ctx := context.Background()

	f.cache.Put("ICN-CEB", 2025, time.August, nil)
	f.cache.Put("ICN-CEB", 2025, time.September, nil)

	require.NoError(t, f.pipeline.Run(ctx, f.newRun(t, "ICN", "2025-08-01", "2025-08-01")))

	_, ok := f.cache.Get("ICN-CEB", 2025, time.August)
	assert.False(t, ok)
	_, ok = f.cache.Get("ICN-CEB", 2025, time.September)
	assert.True(t, ok)
}

func TestRun_RejectsRunNotPending(t *testing.T) {
	f := newPipelineFixture(t, &fakeProvider{})
	ctx := context.Background()
	req := f.newRun(t, "ICN", "2025-08-01", "2025-08-01")

	require.NoError(t, f.pipeline.Run(ctx, req))
	err := f.pipeline.Run(ctx, req)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	status, err := f.pipeline.GetRunStatus(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunCompleted, status.Status)
}

func TestRequestCollection_RunsInBackground(t *testing.T) {
	f := newPipelineFixture(t, &fakeProvider{windows: []*entity.RawWindow{icnWindow()}})
	ctx := context.Background()

	id, err := f.pipeline.RequestCollection(ctx, "icn", "2025-08-01", "2025-08-01")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		status, err := f.pipeline.GetRunStatus(ctx, id)
		return err == nil && status.Status == entity.RunCompleted
	}, 5*time.Second, 10*time.Millisecond)

	status, err := f.pipeline.GetRunStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ICN", status.DepartureIata)
	assert.Equal(t, "Incheon International Airport", status.DepartureAirport)
	assert.Len(t, f.shards.Paths(), 2)

	require.NoError(t, f.pipeline.Close(ctx))
	assert.False(t, f.pipeline.CancelRun(id))
}

func TestRequestCollection_CancelRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	provider := &fakeProvider{}
	provider.onCall = func(call int) {
		if call == 0 {
			close(started)
			<-release
		}
	}
	f := newPipelineFixture(t, provider)
	ctx := context.Background()

	id, err := f.pipeline.RequestCollection(ctx, "ICN", "2025-08-01", "2025-08-05")
	require.NoError(t, err)

	<-started
	assert.True(t, f.pipeline.CancelRun(id))
	close(release)

	require.NoError(t, f.pipeline.Close(ctx))

	status, err := f.pipeline.GetRunStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.RunFailed, status.Status)
	assert.Equal(t, "cancelled", status.ErrorDetail)
	assert.Equal(t, 1, provider.Calls())
}

func TestRequestCollection_Validation(t *testing.T) {
	f := newPipelineFixture(t, &fakeProvider{})
	ctx := context.Background()

	tests := []struct {
		name       string
		airport    string
		start, end string
	}{
		{"bad airport", "INCHEON", "2025-08-01", "2025-08-01"},
		{"bad start", "ICN", "2025/08/01", "2025-08-01"},
		{"bad end", "ICN", "2025-08-01", "tomorrow"},
		{"reversed", "ICN", "2025-08-02", "2025-08-01"},
		{"too long", "ICN", "2025-08-01", "2025-10-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.pipeline.RequestCollection(ctx, tt.airport, tt.start, tt.end)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
	assert.Equal(t, 0, f.provider.Calls())
}

func TestRun_WindowsFollowAirportTimezone(t *testing.T) {
	f := newPipelineFixture(t, &fakeProvider{})
	req := f.newRun(t, "ICN", "2025-08-01", "2025-08-02")

	span, err := f.pipeline.rangeOf(context.Background(), req)
	require.NoError(t, err)

	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	assert.True(t, span.Start.Equal(time.Date(2025, time.August, 1, 0, 0, 0, 0, seoul)))
	assert.True(t, span.End.Equal(time.Date(2025, time.August, 3, 0, 0, 0, 0, seoul)))
	assert.Len(t, SplitIntoChunks(span.Start, span.End, f.pipeline.cfg.ChunkSize), 4)
}
