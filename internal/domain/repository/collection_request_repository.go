package repository

import (
	"context"

	"flightsched-service/internal/domain/entity"
)

// CollectionRequestRepository persists ingestion run progress
type CollectionRequestRepository interface {
	Create(ctx context.Context, req *entity.CollectionRequest) error
	FindByID(ctx context.Context, id string) (*entity.CollectionRequest, error)
	// UpdateStatus moves a run forward; it fails with entity.ErrInvalidTransition
	// when the stored status is not a valid predecessor of status.
	UpdateStatus(ctx context.Context, id, status, errorDetail string) error
	UpdateProgress(ctx context.Context, id string, progress entity.RunProgress) error
}
