package repository

import (
	"context"

	"flightsched-service/internal/domain/entity"
)

// TimezoneRepository resolves airport names and IANA timezones by IATA code
type TimezoneRepository interface {
	GetByAirportCode(ctx context.Context, code string) (*entity.Timezone, error)
}
