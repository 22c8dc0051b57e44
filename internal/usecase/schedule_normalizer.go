package usecase

import (
	"strings"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/pkg/utils"
)

// MonitoredAirport is the airport a collection run watches
type MonitoredAirport struct {
	Iata string
	Name string
}

// ScheduleNormalizer converts raw provider records into FlightSchedule entities
type ScheduleNormalizer struct {
	times *utils.TimeNormalizer
}

// NewScheduleNormalizer creates a normalizer backed by the given time parser
func NewScheduleNormalizer(times *utils.TimeNormalizer) *ScheduleNormalizer {
	return &ScheduleNormalizer{times: times}
}

// ToSchedule maps one raw record. On a departure leg the monitored airport is
// the origin; on an arrival leg it is the destination. Timestamps stay in
// the wall-clock time of their own airport.
func (n *ScheduleNormalizer) ToSchedule(raw entity.RawFlight, leg entity.Leg, monitored MonitoredAirport) *entity.FlightSchedule {
	airlineCode, flightNumber := SplitFlightNumber(raw.Number)

	departure := n.times.ParseLocal(raw.Departure.ScheduledTime.Local)
	arrival := n.times.ParseLocal(raw.Arrival.ScheduledTime.Local)

	s := &entity.FlightSchedule{
		ID:            entity.ScheduleID(airlineCode, flightNumber, departure),
		FlightNumber:  flightNumber,
		Airline:       strings.TrimSpace(raw.Airline.Name),
		AirlineCode:   airlineCode,
		DepartureTime: utils.FormatLocal(departure),
		ArrivalTime:   utils.FormatLocal(arrival),
		DepartureDate: utils.LocalDate(departure),
		ArrivalDate:   utils.LocalDate(arrival),
		Status:        MapStatus(raw.Status),
	}

	if raw.Aircraft != nil {
		s.AircraftType = strings.TrimSpace(raw.Aircraft.Model)
	}

	switch leg {
	case entity.Departure:
		s.DepartureIata = monitored.Iata
		s.DepartureAirport = monitored.Name
		s.ArrivalIata = strings.ToUpper(strings.TrimSpace(raw.Arrival.Airport.Iata))
		s.ArrivalAirport = strings.TrimSpace(raw.Arrival.Airport.Name)
	case entity.Arrival:
		s.DepartureIata = strings.ToUpper(strings.TrimSpace(raw.Departure.Airport.Iata))
		s.DepartureAirport = strings.TrimSpace(raw.Departure.Airport.Name)
		s.ArrivalIata = monitored.Iata
		s.ArrivalAirport = monitored.Name
	}

	return s
}

// Normalize maps every record of one leg
func (n *ScheduleNormalizer) Normalize(raws []entity.RawFlight, leg entity.Leg, monitored MonitoredAirport) []*entity.FlightSchedule {
	out := make([]*entity.FlightSchedule, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.ToSchedule(raw, leg, monitored))
	}
	return out
}

// SplitFlightNumber splits "KE 631" on the first space into ("KE", "631").
// Without a space the airline code is empty.
func SplitFlightNumber(number string) (string, string) {
	number = strings.TrimSpace(number)
	code, rest, ok := strings.Cut(number, " ")
	if !ok {
		return "", number
	}
	return code, strings.TrimSpace(rest)
}

// MapStatus derives the schedule status from the provider's free text
func MapStatus(status string) string {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "cancelled"), strings.Contains(s, "canceled"):
		return entity.FlightCancelled
	case strings.Contains(s, "delayed"):
		return entity.FlightDelayed
	case strings.Contains(s, "diverted"):
		return entity.FlightDiverted
	default:
		return entity.FlightScheduled
	}
}
