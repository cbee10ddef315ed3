package radar

import (
	"context"

	"com.aviebrantz.radar-client/pkg/core/trips"
	"com.aviebrantz.radar-client/pkg/transport"
)

// TripOptions describe a trip.
type TripOptions = trips.Options

// TripStatus is the lifecycle stage of a trip.
type TripStatus = trips.Status

// StartTrip starts a trip and makes it the active one.
func (r *Radar) StartTrip(ctx context.Context, opts *TripOptions) (Result, transport.Response, error) {
	return r.run(ctx, "startTrip", r.updateTrip(opts, trips.StatusStarted))
}

func (r *Radar) StartTripAsync(opts *TripOptions, cb Callback) {
	r.dispatch("startTrip", cb, r.updateTrip(opts, trips.StatusStarted))
}

// UpdateTrip reports s for the trip described by opts.
func (r *Radar) UpdateTrip(ctx context.Context, opts *TripOptions, s TripStatus) (Result, transport.Response, error) {
	return r.run(ctx, "updateTrip", r.updateTrip(opts, s))
}

func (r *Radar) UpdateTripAsync(opts *TripOptions, s TripStatus, cb Callback) {
	r.dispatch("updateTrip", cb, r.updateTrip(opts, s))
}

// CompleteTrip completes the active trip.
func (r *Radar) CompleteTrip(ctx context.Context) (Result, transport.Response, error) {
	return r.run(ctx, "completeTrip", tripOperation(r.trips.Complete))
}

func (r *Radar) CompleteTripAsync(cb Callback) {
	r.dispatch("completeTrip", cb, tripOperation(r.trips.Complete))
}

// CancelTrip cancels the active trip.
func (r *Radar) CancelTrip(ctx context.Context) (Result, transport.Response, error) {
	return r.run(ctx, "cancelTrip", tripOperation(r.trips.Cancel))
}

func (r *Radar) CancelTripAsync(cb Callback) {
	r.dispatch("cancelTrip", cb, tripOperation(r.trips.Cancel))
}

// GetTripOptions returns the options of the active trip, or nil.
func (r *Radar) GetTripOptions(ctx context.Context) *TripOptions {
	opts, _ := r.trips.Active(ctx)
	return opts
}

// GetTripStatus returns the last confirmed status of the active trip.
func (r *Radar) GetTripStatus(ctx context.Context) TripStatus {
	return r.trips.Status(ctx)
}

func (r *Radar) updateTrip(opts *TripOptions, s TripStatus) operation {
	var o TripOptions
	if opts != nil {
		o = *opts
	}
	return tripOperation(func(ctx context.Context) (transport.Response, error) {
		return r.trips.Update(ctx, o, s)
	})
}

func tripOperation(call func(ctx context.Context) (transport.Response, error)) operation {
	return func(ctx context.Context) (Result, transport.Response, error) {
		raw, err := call(ctx)
		if err != nil {
			return nil, nil, err
		}
		return curate(raw, "trip", "events"), raw, nil
	}
}
