package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/internal/domain/repository"
	"flightsched-service/pkg/clock"
	"flightsched-service/pkg/logger"
	"flightsched-service/pkg/metrics"
	"flightsched-service/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// StoreWriteError reports a failed batch commit. Batches committed before it stay written.
type StoreWriteError struct {
	Batch int
	Size  int
	Err   error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("failed to commit batch %d (%d writes): %v", e.Batch, e.Size, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}

// PutResult summarizes one BatchPut call
type PutResult struct {
	Written     int
	Skipped     int
	Rejected    int
	Batches     int
	WrittenKeys []entity.ShardKey
}

// ShardedStore deduplicates, batches and reads flight schedules over a ShardStore
type ShardedStore struct {
	store   repository.ShardStore
	clock   clock.Clock
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewShardedStore creates a sharded store
func NewShardedStore(store repository.ShardStore, clk clock.Clock, logger logger.Logger, m *metrics.Metrics) *ShardedStore {
	if clk == nil {
		clk = clock.Real()
	}
	return &ShardedStore{
		store:   store,
		clock:   clk,
		logger:  logger,
		metrics: m,
	}
}

// Exists checks for a stored schedule at key
func (s *ShardedStore) Exists(ctx context.Context, key entity.ShardKey) (bool, error) {
	return s.store.Exists(ctx, key)
}

// BatchPut writes schedules that are not stored yet in batches of at most
// maxBatchSize. Records without both airport codes are rejected before any
// store access. A commit failure stops the call with a *StoreWriteError.
func (s *ShardedStore) BatchPut(ctx context.Context, schedules []*entity.FlightSchedule, maxBatchSize int) (PutResult, error) {
	var result PutResult
	if maxBatchSize < 1 {
		return result, fmt.Errorf("invalid batch size %d", maxBatchSize)
	}

	seen := make(map[string]struct{}, len(schedules))
	batch := make([]*entity.FlightSchedule, 0, min(maxBatchSize, len(schedules)))

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		start := time.Now()
		if err := s.store.CommitBatch(ctx, batch); err != nil {
			s.metrics.ErrorsCount.WithLabelValues("batch_commit").Inc()
			return &StoreWriteError{Batch: result.Batches + 1, Size: len(batch), Err: err}
		}
		s.metrics.CommitTime.Observe(time.Since(start).Seconds())

		result.Batches++
		result.Written += len(batch)
		for _, sch := range batch {
			result.WrittenKeys = append(result.WrittenKeys, sch.Key())
		}
		s.metrics.RecordsStored.Add(float64(len(batch)))
		s.logger.Debug("Committed batch", "batch", result.Batches, "size", len(batch))

		batch = batch[:0]
		return nil
	}

	for _, sch := range schedules {
		if !sch.Storable() {
			result.Rejected++
			s.metrics.RecordsRejected.Inc()
			s.logger.Warn("Rejecting schedule without airport codes",
				"id", sch.ID,
				"departureIata", sch.DepartureIata,
				"arrivalIata", sch.ArrivalIata)
			continue
		}

		key := sch.Key()
		path := key.Path()
		if _, dup := seen[path]; dup {
			result.Skipped++
			s.metrics.RecordsSkipped.Inc()
			continue
		}
		seen[path] = struct{}{}

		exists, err := s.store.Exists(ctx, key)
		if err != nil {
			return result, fmt.Errorf("failed to check existing schedule: %w", err)
		}
		if exists {
			result.Skipped++
			s.metrics.RecordsSkipped.Inc()
			continue
		}

		now := s.clock.Now()
		sch.CreatedAt = now
		sch.UpdatedAt = now
		batch = append(batch, sch)

		if len(batch) >= maxBatchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}

	if err := flush(); err != nil {
		return result, err
	}

	return result, nil
}

// GetByRouteAndDate reads one shard
func (s *ShardedStore) GetByRouteAndDate(ctx context.Context, route, date string) ([]*entity.FlightSchedule, error) {
	schedules, err := s.store.FindByShard(ctx, route, date)
	if err != nil {
		return nil, err
	}
	sortByDeparture(schedules)
	return schedules, nil
}

// GetByRouteAndMonth reads every day shard of the month concurrently and
// returns the concatenation sorted by departure time.
func (s *ShardedStore) GetByRouteAndMonth(ctx context.Context, route string, year int, month time.Month) ([]*entity.FlightSchedule, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	days := DaysIn(year, month)
	perDay := make([][]*entity.FlightSchedule, days)

	g, gctx := errgroup.WithContext(ctx)
	for day := 1; day <= days; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(utils.DATE_LAYOUT)
		g.Go(func() error {
			schedules, err := s.store.FindByShard(gctx, route, date)
			if err != nil {
				return err
			}
			perDay[day-1] = schedules
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read %s %04d-%02d: %w", route, year, month, err)
	}

	var out []*entity.FlightSchedule
	for _, schedules := range perDay {
		out = append(out, schedules...)
	}
	sortByDeparture(out)

	return out, nil
}

// DaysIn returns the number of days of the month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func sortByDeparture(schedules []*entity.FlightSchedule) {
	sort.SliceStable(schedules, func(i, j int) bool {
		if schedules[i].DepartureTime != schedules[j].DepartureTime {
			return schedules[i].DepartureTime < schedules[j].DepartureTime
		}
		return schedules[i].ID < schedules[j].ID
	})
}
