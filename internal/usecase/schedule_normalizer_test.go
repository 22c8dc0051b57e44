package usecase

import (
	"testing"

	"flightsched-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFlightNumber(t *testing.T) {
	tests := []struct {
		in     string
		code   string
		number string
	}{
		{"KE 631", "KE", "631"},
		{"7C 2405", "7C", "2405"},
		{"  PR 467 ", "PR", "467"},
		{"KE631", "", "KE631"},
		{"", "", ""},
	}

	for _, tt := range tests {
		code, number := SplitFlightNumber(tt.in)
		assert.Equal(t, tt.code, code, tt.in)
		assert.Equal(t, tt.number, number, tt.in)
	}
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, entity.FlightCancelled, MapStatus("Canceled"))
	assert.Equal(t, entity.FlightCancelled, MapStatus("CancelledUncertain"))
	assert.Equal(t, entity.FlightDelayed, MapStatus("Delayed"))
	assert.Equal(t, entity.FlightDiverted, MapStatus("Diverted"))
	assert.Equal(t, entity.FlightScheduled, MapStatus("Expected"))
	assert.Equal(t, entity.FlightScheduled, MapStatus(""))
}

func TestToSchedule_DepartureLeg(t *testing.T) {
	n := newTestNormalizer()
	raw := rawFlight("KE 631", "ICN", "CEB", "2025-08-01 06:55+09:00", "2025-08-01 10:35+08:00")
	raw.Airline.Name = "Korean Air"
	raw.Aircraft = &entity.RawAircraft{Model: "Airbus A330"}

	s := n.ToSchedule(raw, entity.Departure, MonitoredAirport{Iata: "ICN", Name: "Incheon International Airport"})

	assert.Equal(t, "KE_631_202508010655", s.ID)
	assert.Equal(t, "KE", s.AirlineCode)
	assert.Equal(t, "631", s.FlightNumber)
	assert.Equal(t, "Korean Air", s.Airline)
	assert.Equal(t, "ICN", s.DepartureIata)
	assert.Equal(t, "Incheon International Airport", s.DepartureAirport)
	assert.Equal(t, "CEB", s.ArrivalIata)
	assert.Equal(t, "CEB Airport", s.ArrivalAirport)
	assert.Equal(t, "2025-08-01T06:55:00", s.DepartureTime)
	assert.Equal(t, "2025-08-01T10:35:00", s.ArrivalTime)
	assert.Equal(t, "2025-08-01", s.DepartureDate)
	assert.Equal(t, "Airbus A330", s.AircraftType)
	assert.Equal(t, entity.FlightScheduled, s.Status)
	assert.Equal(t, "ICN-CEB", s.Route())
}

func TestToSchedule_ArrivalLeg(t *testing.T) {
	n := newTestNormalizer()
	raw := rawFlight("5J 188", "MNL", "ICN", "2025-08-01 23:50+08:00", "2025-08-02 05:05+09:00")

	s := n.ToSchedule(raw, entity.Arrival, MonitoredAirport{Iata: "ICN", Name: "Incheon International Airport"})

	assert.Equal(t, "MNL", s.DepartureIata)
	assert.Equal(t, "MNL Airport", s.DepartureAirport)
	assert.Equal(t, "ICN", s.ArrivalIata)
	assert.Equal(t, "Incheon International Airport", s.ArrivalAirport)
	// the shard date is the departure date even across midnight
	assert.Equal(t, "2025-08-01", s.DepartureDate)
	assert.Equal(t, "2025-08-02", s.ArrivalDate)
	assert.Equal(t, "MNL-ICN", s.Route())
}

func TestToSchedule_DeterministicID(t *testing.T) {
	n := newTestNormalizer()
	monitored := MonitoredAirport{Iata: "ICN", Name: "Incheon"}

	a := n.ToSchedule(rawFlight("KE 631", "ICN", "CEB", "2025-08-01 06:55+09:00", "2025-08-01 10:35+08:00"), entity.Departure, monitored)
	b := n.ToSchedule(rawFlight("KE 631", "ICN", "CEB", "2025-08-01 06:55", "2025-08-01 10:35"), entity.Departure, monitored)
	c := n.ToSchedule(rawFlight("KE 631", "ICN", "CEB", "2025-08-02 06:55+09:00", "2025-08-02 10:35+08:00"), entity.Departure, monitored)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestNormalize_KeepsOrder(t *testing.T) {
	n := newTestNormalizer()
	raws := []entity.RawFlight{
		rawFlight("KE 631", "ICN", "CEB", "2025-08-01 06:55+09:00", "2025-08-01 10:35+08:00"),
		rawFlight("7C 2405", "ICN", "MNL", "2025-08-01 20:00+09:00", "2025-08-01 23:10+08:00"),
	}

	out := n.Normalize(raws, entity.Departure, MonitoredAirport{Iata: "ICN"})
	require.Len(t, out, 2)
	assert.Equal(t, "631", out[0].FlightNumber)
	assert.Equal(t, "2405", out[1].FlightNumber)
}
