package entity

// Leg tells which side of a raw record is the monitored airport
type Leg int

const (
	// Departure: the monitored airport is the origin
	Departure Leg = iota
	// Arrival: the monitored airport is the destination
	Arrival
)

func (l Leg) String() string {
	if l == Arrival {
		return "arrival"
	}
	return "departure"
}

// RawFlight is one provider record as returned by the flight-data API
type RawFlight struct {
	Number    string       `json:"number"`
	Status    string       `json:"status"`
	Airline   RawAirline   `json:"airline"`
	Aircraft  *RawAircraft `json:"aircraft,omitempty"`
	Departure RawMovement  `json:"departure"`
	Arrival   RawMovement  `json:"arrival"`
}

type RawAirline struct {
	Name string `json:"name"`
	Iata string `json:"iata,omitempty"`
}

type RawAircraft struct {
	Model string `json:"model"`
}

// RawMovement is either endpoint of a provider record
type RawMovement struct {
	Airport       RawAirport `json:"airport"`
	ScheduledTime RawTime    `json:"scheduledTime"`
}

type RawAirport struct {
	Iata string `json:"iata"`
	Name string `json:"name"`
}

// RawTime carries the provider's local time, e.g. "2025-08-01 06:55+09:00"
type RawTime struct {
	Local string `json:"local"`
	UTC   string `json:"utc,omitempty"`
}

// RawWindow is the response for one fetched time window
type RawWindow struct {
	Departures []RawFlight `json:"departures"`
	Arrivals   []RawFlight `json:"arrivals"`
}
