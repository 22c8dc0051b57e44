package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/pkg/logger"
	"flightsched-service/pkg/utils"
)

// FlightService is the entry point the rest of the application uses:
// collection runs on the write side, shard and cached month reads on the read side.
type FlightService struct {
	pipeline *IngestionPipeline
	store    *ShardedStore
	cache    *QueryCache
	logger   logger.Logger
}

func NewFlightService(pipeline *IngestionPipeline, store *ShardedStore, cache *QueryCache, logger logger.Logger) *FlightService {
	return &FlightService{
		pipeline: pipeline,
		store:    store,
		cache:    cache,
		logger:   logger,
	}
}

// RequestCollection starts an asynchronous run and returns its id
func (s *FlightService) RequestCollection(ctx context.Context, airportCode, startDate, endDate string) (string, error) {
	return s.pipeline.RequestCollection(ctx, airportCode, startDate, endDate)
}

// GetRunStatus returns the progress record of a run
func (s *FlightService) GetRunStatus(ctx context.Context, runID string) (*entity.CollectionRequest, error) {
	return s.pipeline.GetRunStatus(ctx, runID)
}

// CancelRun stops an active run
func (s *FlightService) CancelRun(runID string) bool {
	return s.pipeline.CancelRun(runID)
}

// GetFlights returns the schedules of one route on one departure date
func (s *FlightService) GetFlights(ctx context.Context, route, date string) ([]*entity.FlightSchedule, error) {
	route, err := normalizeRoute(route)
	if err != nil {
		return nil, err
	}
	if _, err := time.Parse(utils.DATE_LAYOUT, date); err != nil {
		return nil, fmt.Errorf("%w: date %q", ErrInvalidRequest, date)
	}

	return s.store.GetByRouteAndDate(ctx, route, date)
}

// GetFlightsForMonth returns the month of a route, from cache when fresh
func (s *FlightService) GetFlightsForMonth(ctx context.Context, route string, year int, month time.Month) ([]*entity.FlightSchedule, error) {
	route, err := normalizeRoute(route)
	if err != nil {
		return nil, err
	}
	if month < time.January || month > time.December || year < 1 {
		return nil, fmt.Errorf("%w: month %d-%d", ErrInvalidRequest, year, month)
	}

	if cached, ok := s.cache.Get(route, year, month); ok {
		return cached, nil
	}

	schedules, err := s.store.GetByRouteAndMonth(ctx, route, year, month)
	if err != nil {
		return nil, err
	}

	s.cache.Put(route, year, month, schedules)
	return schedules, nil
}

func normalizeRoute(route string) (string, error) {
	dep, arr, ok := entity.ParseRouteKey(strings.ToUpper(strings.TrimSpace(route)))
	if !ok {
		return "", fmt.Errorf("%w: route %q", ErrInvalidRequest, route)
	}
	return entity.RouteKey(dep, arr), nil
}
