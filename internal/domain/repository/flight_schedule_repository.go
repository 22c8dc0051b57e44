package repository

import (
	"context"

	"flightsched-service/internal/domain/entity"
)

// ShardStore is the backing document store for flight schedules, addressed by
// (route, date, id). CommitBatch must apply all writes of one call atomically
// where the store supports it and is never given more than the store's batch ceiling.
type ShardStore interface {
	Exists(ctx context.Context, key entity.ShardKey) (bool, error)
	CommitBatch(ctx context.Context, schedules []*entity.FlightSchedule) error
	FindByShard(ctx context.Context, route, date string) ([]*entity.FlightSchedule, error)
}
