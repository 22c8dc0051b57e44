package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	// zone data for minimal containers without /usr/share/zoneinfo
	_ "time/tzdata"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/internal/domain/repository"
	"flightsched-service/pkg/logger"
)

// AirportDirectory resolves monitored airport names and timezones, caching lookups
type AirportDirectory struct {
	repo       repository.TimezoneRepository
	defaultLoc *time.Location
	logger     logger.Logger

	mu      sync.Mutex
	entries map[string]airportInfo
}

type airportInfo struct {
	name string
	loc  *time.Location
}

// NewAirportDirectory creates a directory; unknown airports use defaultLoc
func NewAirportDirectory(repo repository.TimezoneRepository, defaultLoc *time.Location, logger logger.Logger) *AirportDirectory {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &AirportDirectory{
		repo:       repo,
		defaultLoc: defaultLoc,
		logger:     logger,
		entries:    make(map[string]airportInfo),
	}
}

func (d *AirportDirectory) lookup(ctx context.Context, iata string) airportInfo {
	iata = strings.ToUpper(iata)

	d.mu.Lock()
	info, ok := d.entries[iata]
	d.mu.Unlock()
	if ok {
		return info
	}

	info = airportInfo{name: iata, loc: d.defaultLoc}
	tz, err := d.repo.GetByAirportCode(ctx, iata)
	switch {
	case err == nil:
		if tz.AirportName != "" {
			info.name = tz.AirportName
		}
		if loc, lerr := time.LoadLocation(tz.TzName); lerr == nil && tz.TzName != "" {
			info.loc = loc
		} else {
			d.logger.Warn("Unknown airport timezone, using default", "iata", iata, "tzName", tz.TzName)
		}
	case errors.Is(err, entity.ErrNotFound):
		d.logger.Warn("Airport not in reference data, using defaults", "iata", iata)
	default:
		// transient lookup failure: answer with defaults but do not cache
		d.logger.Error("Failed to look up airport", "iata", iata, "error", err)
		return info
	}

	d.mu.Lock()
	d.entries[iata] = info
	d.mu.Unlock()

	return info
}

// Name returns the airport display name, the code itself when unknown
func (d *AirportDirectory) Name(ctx context.Context, iata string) string {
	return d.lookup(ctx, iata).name
}

// Location returns the airport's timezone
func (d *AirportDirectory) Location(ctx context.Context, iata string) *time.Location {
	return d.lookup(ctx, iata).loc
}
