package repository

import (
	"context"

	"flightsched-service/internal/domain/entity"
)

// AirlineRepository resolves airline reference data
type AirlineRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Airline, error)
}
