// Package location abstracts the platform call that reports the current
// position of the device.
package location

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"com.aviebrantz.radar-client/pkg/status"
)

// Coordinates is a position reported by the platform or supplied by the
// caller. Accuracy is in meters.
type Coordinates struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// String formats c as "latitude,longitude".
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// Source returns the current position of the device. Each call makes a
// single request to the platform.
type Source interface {
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Coordinates, error)

func (f SourceFunc) CurrentPosition(ctx context.Context) (Coordinates, error) {
	return f(ctx)
}

// Platform error codes, as reported by browser geolocation.
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// PlatformError is a failure reported by the platform position call.
type PlatformError struct {
	Code    int
	Message string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("position error %d: %s", e.Code, e.Message)
}

// Current asks src for the position and classifies any failure. A nil
// source means the capability is unavailable.
func Current(ctx context.Context, src Source) (Coordinates, error) {
	if src == nil {
		return Coordinates{}, status.New(status.ErrorLocation)
	}
	c, err := src.CurrentPosition(ctx)
	if err != nil {
		return Coordinates{}, Classify(err)
	}
	return c, nil
}

// Classify maps a position failure to ErrorPermissions when the platform
// denied permission and to ErrorLocation otherwise. Errors that already
// carry a kind are returned unchanged.
func Classify(err error) error {
	var se *status.Error
	if errors.As(err, &se) {
		return err
	}
	var pe *PlatformError
	if errors.As(err, &pe) && pe.Code == CodePermissionDenied {
		return status.Wrap(status.ErrorPermissions, err)
	}
	return status.Wrap(status.ErrorLocation, err)
}

// Static returns a source that always reports c.
func Static(c Coordinates) Source {
	return SourceFunc(func(ctx context.Context) (Coordinates, error) {
		return c, nil
	})
}

// Unavailable returns a source for platforms without a position capability.
func Unavailable() Source {
	return SourceFunc(func(ctx context.Context) (Coordinates, error) {
		return Coordinates{}, status.New(status.ErrorLocation)
	})
}
