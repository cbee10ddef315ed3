// Package trips keeps the active trip in sync with the server. Local state
// only changes after the server confirmed a transition.
package trips

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"com.aviebrantz.radar-client/pkg/core/store"
	"com.aviebrantz.radar-client/pkg/transport"
	"github.com/apex/log"
)

// Machine drives the lifecycle of the single active trip.
type Machine struct {
	requester transport.Requester
	store     *store.Safe
	notifier  *Notifier
	logger    *log.Entry
}

type Option func(*Machine)

// WithNotifier publishes every confirmed transition through n.
func WithNotifier(n *Notifier) Option {
	return func(m *Machine) {
		m.notifier = n
	}
}

func NewMachine(requester transport.Requester, s *store.Safe, opts ...Option) *Machine {
	m := &Machine{
		requester: requester,
		store:     s,
		logger:    log.WithField("module", "trips"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Active returns the options of the active trip.
func (m *Machine) Active(ctx context.Context) (*Options, bool) {
	var opts Options
	if !m.store.GetJSON(ctx, store.KeyTripOptions, &opts) {
		return nil, false
	}
	return &opts, true
}

// Status returns the last confirmed status of the active trip, or "" when
// there is none.
func (m *Machine) Status(ctx context.Context) Status {
	if _, ok := m.Active(ctx); !ok {
		return ""
	}
	s, _ := m.store.Get(ctx, store.KeyTripStatus)
	return Status(s)
}

// Start starts a trip and makes it the active one.
func (m *Machine) Start(ctx context.Context, opts Options) (transport.Response, error) {
	return m.Update(ctx, opts, StatusStarted)
}

// Update reports status for the trip described by opts. On success opts
// becomes the active trip, or the active trip is cleared when status ends
// the trip. On failure the active trip is left as it was.
func (m *Machine) Update(ctx context.Context, opts Options, s Status) (transport.Response, error) {
	if !s.Valid() {
		return nil, localFailure(fmt.Errorf("%w: %q", ErrInvalidStatus, s))
	}
	if opts.ExternalID == "" {
		return nil, localFailure(ErrMissingExternalID)
	}

	res, err := m.send(ctx, opts, s)
	if err != nil {
		return nil, err
	}

	if s.Terminal() {
		m.clear(ctx)
	} else {
		m.store.SetJSON(ctx, store.KeyTripOptions, opts, store.Long)
		m.store.Set(ctx, store.KeyTripStatus, string(s), store.Long)
	}
	m.notify(ctx, opts.ExternalID, s)
	return res, nil
}

// Complete marks the active trip completed.
func (m *Machine) Complete(ctx context.Context) (transport.Response, error) {
	return m.finish(ctx, StatusCompleted)
}

// Cancel marks the active trip canceled.
func (m *Machine) Cancel(ctx context.Context) (transport.Response, error) {
	return m.finish(ctx, StatusCanceled)
}

func (m *Machine) finish(ctx context.Context, s Status) (transport.Response, error) {
	opts, ok := m.Active(ctx)
	if !ok {
		return nil, localFailure(ErrNoActiveTrip)
	}
	return m.Update(ctx, *opts, s)
}

func (m *Machine) send(ctx context.Context, opts Options, s Status) (transport.Response, error) {
	params := transport.Params{
		"externalId":                    opts.ExternalID,
		"status":                        string(s),
		"destinationGeofenceTag":        transport.Optional(opts.DestinationGeofenceTag),
		"destinationGeofenceExternalId": transport.Optional(opts.DestinationGeofenceExternalID),
		"mode":                          transport.Optional(opts.Mode),
		"metadata":                      opts.Metadata,
	}
	return m.requester.Request(ctx, http.MethodPatch, "trips/"+url.PathEscape(opts.ExternalID), params)
}

func (m *Machine) clear(ctx context.Context) {
	m.store.Delete(ctx, store.KeyTripOptions)
	m.store.Delete(ctx, store.KeyTripStatus)
}

func (m *Machine) notify(ctx context.Context, externalID string, s Status) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Publish(ctx, Transition{ExternalID: externalID, Status: s}); err != nil {
		m.logger.Errorf("err publishing transition for trip %s: %v", externalID, err)
	}
}
