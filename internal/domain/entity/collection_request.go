// internal/domain/entity/collection_request.go
package entity

import (
	"errors"
	"time"
)

// Collection run status
const (
	RunPending    = "pending"
	RunInProgress = "in_progress"
	RunCompleted  = "completed"
	RunFailed     = "failed"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// CollectionRequest tracks the progress of one ingestion run
type CollectionRequest struct {
	ID               string    `json:"id" bson:"_id"`
	DepartureAirport string    `json:"departureAirport" bson:"departureAirport"`
	DepartureIata    string    `json:"departureIata" bson:"departureIata"`
	StartDate        string    `json:"startDate" bson:"startDate"`
	EndDate          string    `json:"endDate" bson:"endDate"`
	Status           string    `json:"status" bson:"status"`
	TotalFlights     int       `json:"totalFlights" bson:"totalFlights"`
	CollectedFlights int       `json:"collectedFlights" bson:"collectedFlights"`
	SkippedFlights   int       `json:"skippedFlights" bson:"skippedFlights"`
	TotalWindows     int       `json:"totalWindows" bson:"totalWindows"`
	CompletedWindows int       `json:"completedWindows" bson:"completedWindows"`
	FailedWindows    int       `json:"failedWindows" bson:"failedWindows"`
	ErrorDetail      string    `json:"errorDetail,omitempty" bson:"errorDetail,omitempty"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}

// RunProgress is the counter snapshot written after each window
type RunProgress struct {
	TotalFlights     int `bson:"totalFlights"`
	CollectedFlights int `bson:"collectedFlights"`
	SkippedFlights   int `bson:"skippedFlights"`
	TotalWindows     int `bson:"totalWindows"`
	CompletedWindows int `bson:"completedWindows"`
	FailedWindows    int `bson:"failedWindows"`
}

var runStatusRank = map[string]int{
	RunPending:    0,
	RunInProgress: 1,
	RunCompleted:  2,
	RunFailed:     2,
}

// PreviousRunStatuses lists the statuses a run may move to next from.
func PreviousRunStatuses(next string) []string {
	switch next {
	case RunInProgress:
		return []string{RunPending}
	case RunCompleted, RunFailed:
		return []string{RunPending, RunInProgress}
	}
	return nil
}

// CanTransition reports whether from -> next moves the run strictly forward
func CanTransition(from, next string) bool {
	for _, s := range PreviousRunStatuses(next) {
		if s == from {
			return true
		}
	}
	return false
}

// IsTerminal reports whether status ends a run
func IsTerminal(status string) bool {
	return runStatusRank[status] == 2
}
