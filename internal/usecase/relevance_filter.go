package usecase

import (
	"strings"

	"flightsched-service/internal/domain/entity"
)

// RelevanceFilter keeps records whose far endpoint is an allow-listed airport
type RelevanceFilter struct {
	allowed map[string]struct{}
}

// NewRelevanceFilter creates a filter over the given IATA codes
func NewRelevanceFilter(airports []string) *RelevanceFilter {
	allowed := make(map[string]struct{}, len(airports))
	for _, a := range airports {
		allowed[strings.ToUpper(strings.TrimSpace(a))] = struct{}{}
	}
	return &RelevanceFilter{allowed: allowed}
}

// Allowed reports whether iata is on the allow-list
func (f *RelevanceFilter) Allowed(iata string) bool {
	_, ok := f.allowed[strings.ToUpper(strings.TrimSpace(iata))]
	return ok
}

// KeepRelevant filters departures by arrival airport and arrivals by departure airport
func (f *RelevanceFilter) KeepRelevant(raws []entity.RawFlight, leg entity.Leg) []entity.RawFlight {
	out := make([]entity.RawFlight, 0, len(raws))
	for _, raw := range raws {
		far := raw.Arrival.Airport.Iata
		if leg == entity.Arrival {
			far = raw.Departure.Airport.Iata
		}
		if f.Allowed(far) {
			out = append(out, raw)
		}
	}
	return out
}
