package repository

import (
	"context"

	"flightsched-service/internal/domain/entity"
)

// FlightDataProvider fetches one bounded time window of movements for an
// airport. offsetMinutes is relative to now; durationMinutes is capped by the provider.
type FlightDataProvider interface {
	FetchWindow(ctx context.Context, iata string, offsetMinutes, durationMinutes int) (*entity.RawWindow, error)
}
