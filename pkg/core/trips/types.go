package trips

import (
	"errors"

	"com.aviebrantz.radar-client/pkg/status"
)

// Status is the lifecycle stage of a trip.
type Status string

const (
	StatusStarted     Status = "started"
	StatusApproaching Status = "approaching"
	StatusArrived     Status = "arrived"
	StatusCompleted   Status = "completed"
	StatusExpired     Status = "expired"
	StatusCanceled    Status = "canceled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusStarted, StatusApproaching, StatusArrived, StatusCompleted, StatusExpired, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether s ends the trip.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusExpired || s == StatusCanceled
}

// Options describe a trip. Empty optional fields are not sent.
type Options struct {
	ExternalID                    string                 `json:"externalId"`
	DestinationGeofenceTag        string                 `json:"destinationGeofenceTag,omitempty"`
	DestinationGeofenceExternalID string                 `json:"destinationGeofenceExternalId,omitempty"`
	Mode                          string                 `json:"mode,omitempty"`
	Metadata                      map[string]interface{} `json:"metadata,omitempty"`
}

var (
	// ErrNoActiveTrip is returned when completing or canceling without an
	// active trip.
	ErrNoActiveTrip = errors.New("trips: no active trip")
	// ErrInvalidStatus is returned for a status outside the lifecycle.
	ErrInvalidStatus = errors.New("trips: invalid status")
	// ErrMissingExternalID is returned for options without an external id.
	ErrMissingExternalID = errors.New("trips: missing external id")
)

func localFailure(err error) error {
	return status.Wrap(status.ErrorBadRequest, err)
}
