package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/internal/interface/repository"
	"flightsched-service/pkg/cache"
	"flightsched-service/pkg/clock"
	"flightsched-service/pkg/logger"
	"flightsched-service/pkg/metrics"
	"flightsched-service/pkg/utils"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics("test", prometheus.NewRegistry())
}

func newTestNormalizer() *ScheduleNormalizer {
	return NewScheduleNormalizer(utils.NewTimeNormalizer(logger.NewNopLogger(), nil, nil))
}

func rawFlight(number, from, to, depLocal, arrLocal string) entity.RawFlight {
	return entity.RawFlight{
		Number: number,
		Status: "Expected",
		Departure: entity.RawMovement{
			Airport:       entity.RawAirport{Iata: from, Name: from + " Airport"},
			ScheduledTime: entity.RawTime{Local: depLocal},
		},
		Arrival: entity.RawMovement{
			Airport:       entity.RawAirport{Iata: to, Name: to + " Airport"},
			ScheduledTime: entity.RawTime{Local: arrLocal},
		},
	}
}

// fakeProvider answers FetchWindow from a script indexed by call number.
// Calls past the end of the script get an empty window.
type fakeProvider struct {
	mu      sync.Mutex
	windows []*entity.RawWindow
	errs    []error
	calls   int
	onCall  func(call int)
}

func (p *fakeProvider) FetchWindow(ctx context.Context, _ string, _, _ int) (*entity.RawWindow, error) {
	p.mu.Lock()
	call := p.calls
	p.calls++
	onCall := p.onCall
	p.mu.Unlock()

	if onCall != nil {
		onCall(call)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if call < len(p.errs) && p.errs[call] != nil {
		return nil, p.errs[call]
	}
	if call < len(p.windows) && p.windows[call] != nil {
		return p.windows[call], nil
	}
	return &entity.RawWindow{}, nil
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// failingShardStore fails the commit with the given 1-based index
type failingShardStore struct {
	*repository.MemoryShardStore
	failOn  int
	commits int
}

var errCommitFailed = errors.New("commit failed")

func (s *failingShardStore) CommitBatch(ctx context.Context, schedules []*entity.FlightSchedule) error {
	s.commits++
	if s.commits == s.failOn {
		return errCommitFailed
	}
	return s.MemoryShardStore.CommitBatch(ctx, schedules)
}

// countingShardStore counts shard reads
type countingShardStore struct {
	*repository.MemoryShardStore
	mu    sync.Mutex
	reads int
}

func (s *countingShardStore) FindByShard(ctx context.Context, route, date string) ([]*entity.FlightSchedule, error) {
	s.mu.Lock()
	s.reads++
	s.mu.Unlock()
	return s.MemoryShardStore.FindByShard(ctx, route, date)
}

func (s *countingShardStore) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

type pipelineFixture struct {
	pipeline *IngestionPipeline
	provider *fakeProvider
	shards   *repository.MemoryShardStore
	requests *repository.MemoryCollectionRequestRepository
	store    *ShardedStore
	cache    *QueryCache
	clock    *clock.Fake
}

func newPipelineFixture(t *testing.T, provider *fakeProvider) *pipelineFixture {
	t.Helper()

	log := logger.NewNopLogger()
	m := newTestMetrics()
	clk := clock.NewFake(time.Date(2025, time.July, 25, 9, 0, 0, 0, time.UTC))

	shards := repository.NewMemoryShardStore()
	requests := repository.NewMemoryCollectionRequestRepository()
	store := NewShardedStore(shards, clk, log, m)
	qc := NewQueryCache(cache.NewTTL[string, []*entity.FlightSchedule](time.Hour, clk), log, m)
	airports := NewAirportDirectory(repository.NewStaticTimezoneRepository(), time.UTC, log)

	p := NewIngestionPipeline(
		context.Background(),
		provider,
		requests,
		store,
		newTestNormalizer(),
		NewRelevanceFilter([]string{"CEB", "MNL"}),
		airports,
		repository.NewStaticAirlineRepository(),
		qc,
		log,
		m,
		PipelineConfig{
			ChunkSize:    12 * time.Hour,
			MaxBatchSize: 500,
			MaxRangeDays: 31,
			Clock:        clk,
		},
	)

	return &pipelineFixture{
		pipeline: p,
		provider: provider,
		shards:   shards,
		requests: requests,
		store:    store,
		cache:    qc,
		clock:    clk,
	}
}

// newRun records a pending run the way RequestCollection does, without starting it
func (f *pipelineFixture) newRun(t *testing.T, iata, start, end string) *entity.CollectionRequest {
	t.Helper()

	req := &entity.CollectionRequest{
		ID:               uuid.NewString(),
		DepartureAirport: f.pipeline.airports.Name(context.Background(), iata),
		DepartureIata:    iata,
		StartDate:        start,
		EndDate:          end,
		Status:           entity.RunPending,
	}
	if err := f.requests.Create(context.Background(), req); err != nil {
		t.Fatalf("create run: %v", err)
	}
	return req
}
