// internal/domain/entity/flight_schedule.go
package entity

import (
	"fmt"
	"strings"
	"time"

	"flightsched-service/pkg/utils"
)

// Flight status values derived from the provider's free-text status
const (
	FlightScheduled = "Scheduled"
	FlightDelayed   = "Delayed"
	FlightCancelled = "Cancelled"
	FlightDiverted  = "Diverted"
)

// FlightSchedule is the canonical, immutable record of one flight occurrence.
// DepartureTime/ArrivalTime are airport wall-clock values (YYYY-MM-DDTHH:mm:ss),
// never normalized to a single timezone.
type FlightSchedule struct {
	ID               string    `json:"id" bson:"scheduleId"`
	FlightNumber     string    `json:"flightNumber" bson:"flightNumber"`
	Airline          string    `json:"airline" bson:"airline"`
	AirlineCode      string    `json:"airlineCode" bson:"airlineCode"`
	DepartureAirport string    `json:"departureAirport" bson:"departureAirport"`
	DepartureIata    string    `json:"departureIata" bson:"departureIata"`
	ArrivalAirport   string    `json:"arrivalAirport" bson:"arrivalAirport"`
	ArrivalIata      string    `json:"arrivalIata" bson:"arrivalIata"`
	DepartureTime    string    `json:"departureTime" bson:"departureTime"`
	ArrivalTime      string    `json:"arrivalTime" bson:"arrivalTime"`
	DepartureDate    string    `json:"departureDate" bson:"departureDate"`
	ArrivalDate      string    `json:"arrivalDate" bson:"arrivalDate"`
	AircraftType     string    `json:"aircraftType,omitempty" bson:"aircraftType,omitempty"`
	Status           string    `json:"status" bson:"status"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ScheduleID builds the deterministic id: airline code, flight number and the
// departure wall-clock time truncated to the minute. The separators keep
// ("K","E631") and ("KE","631") apart.
func ScheduleID(airlineCode, flightNumber string, departure time.Time) string {
	return fmt.Sprintf("%s_%s_%s", airlineCode, flightNumber, departure.Truncate(time.Minute).Format(utils.MINUTE_KEY_LAYOUT))
}

// RouteKey is the shard route component: "{departureIata}-{arrivalIata}"
func RouteKey(departureIata, arrivalIata string) string {
	return departureIata + "-" + arrivalIata
}

// ParseRouteKey splits "ICN-CEB" into its endpoints
func ParseRouteKey(route string) (string, string, bool) {
	dep, arr, ok := strings.Cut(route, "-")
	if !ok || len(dep) != 3 || len(arr) != 3 {
		return "", "", false
	}
	return dep, arr, true
}

// Route returns the route shard key of the schedule
func (f *FlightSchedule) Route() string {
	return RouteKey(f.DepartureIata, f.ArrivalIata)
}

// Storable reports whether both endpoint codes are present
func (f *FlightSchedule) Storable() bool {
	return f.DepartureIata != "" && f.ArrivalIata != ""
}

// ShardKey is the composite (route, date, id) address of a stored schedule.
// Date is always the departure-leg date.
type ShardKey struct {
	Route string
	Date  string
	ID    string
}

// Key returns the shard key of the schedule
func (f *FlightSchedule) Key() ShardKey {
	return ShardKey{Route: f.Route(), Date: f.DepartureDate, ID: f.ID}
}

// Path renders routes/{route}/{date}/flights/{id}
func (k ShardKey) Path() string {
	return ShardPrefix(k.Route, k.Date) + k.ID
}

// ShardPrefix renders routes/{route}/{date}/flights/
func ShardPrefix(route, date string) string {
	return "routes/" + route + "/" + date + "/flights/"
}
