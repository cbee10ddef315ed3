// Package radar is the public client. Every operation has an awaitable form
// returning (Result, transport.Response, error) and an Async form reporting
// through a Callback.
package radar

import (
	"context"
	"fmt"
	"net/http"

	"com.aviebrantz.radar-client/pkg/core/device"
	"com.aviebrantz.radar-client/pkg/core/settings"
	"com.aviebrantz.radar-client/pkg/core/store"
	"com.aviebrantz.radar-client/pkg/core/trips"
	"com.aviebrantz.radar-client/pkg/location"
	"com.aviebrantz.radar-client/pkg/status"
	"com.aviebrantz.radar-client/pkg/transport"
	"github.com/apex/log"
)

// Version of the client, as reported to the API.
const Version = transport.SDKVersion

// Result is the curated payload of a successful operation. It always holds
// "status".
type Result map[string]interface{}

// Status returns the status tag of r.
func (r Result) Status() status.Status {
	s, _ := r["status"].(status.Status)
	return s
}

// Callback receives the outcome of an Async operation. On failure err is a
// *status.Error, result is empty and raw holds the response body if the
// server sent one.
type Callback func(err error, result Result, raw transport.Response)

type Radar struct {
	store     *store.Safe
	settings  *settings.Settings
	identity  *device.Identity
	requester transport.Requester
	trips     *trips.Machine
	positions location.Source
	logger    *log.Entry

	transportOpts []transport.Option
	tripOpts      []trips.Option
}

type Option func(*Radar)

// WithPositionSource sets where the device position comes from. Without it
// every operation that needs a position fails with ERROR_LOCATION.
func WithPositionSource(src location.Source) Option {
	return func(r *Radar) {
		r.positions = src
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(r *Radar) {
		r.transportOpts = append(r.transportOpts, transport.WithHTTPClient(c))
	}
}

// WithRateLimit paces requests to rps per second.
func WithRateLimit(rps float64) Option {
	return func(r *Radar) {
		r.transportOpts = append(r.transportOpts, transport.WithRateLimit(rps))
	}
}

// WithTripNotifier publishes confirmed trip transitions through n.
func WithTripNotifier(n *trips.Notifier) Option {
	return func(r *Radar) {
		r.tripOpts = append(r.tripOpts, trips.WithNotifier(n))
	}
}

// WithRequester replaces the transport.
func WithRequester(req transport.Requester) Option {
	return func(r *Radar) {
		r.requester = req
	}
}

// New returns a client keeping its state in backend. A nil backend behaves
// like storage that is not available: nothing is remembered.
func New(backend store.Store, opts ...Option) *Radar {
	r := &Radar{
		logger: log.WithField("module", "radar"),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.store = store.NewSafe(backend)
	r.settings = settings.New(r.store)
	r.identity = device.NewIdentity(r.store)
	if r.requester == nil {
		r.requester = transport.New(r.settings, r.transportOpts...)
	}
	r.trips = trips.NewMachine(r.requester, r.store, r.tripOpts...)
	return r
}

// Initialize sets the publishable key used by every request.
func (r *Radar) Initialize(ctx context.Context, publishableKey string) {
	r.settings.Initialize(ctx, publishableKey)
}

// SetHost points the client to another API host for this session.
func (r *Radar) SetHost(ctx context.Context, host, basePath string) {
	r.settings.SetHost(ctx, host, basePath)
}

func (r *Radar) SetUserID(ctx context.Context, userID string) {
	r.identity.SetUserID(ctx, userID)
}

func (r *Radar) SetDeviceID(ctx context.Context, deviceID, installID string) {
	r.identity.SetDeviceID(ctx, deviceID, installID)
}

func (r *Radar) SetDeviceType(ctx context.Context, deviceType string) {
	r.identity.SetDeviceType(ctx, deviceType)
}

func (r *Radar) SetDescription(ctx context.Context, description string) {
	r.identity.SetDescription(ctx, description)
}

func (r *Radar) SetMetadata(ctx context.Context, metadata map[string]interface{}) {
	r.identity.SetMetadata(ctx, metadata)
}

// SetRequestHeaders replaces the headers added to every request.
func (r *Radar) SetRequestHeaders(ctx context.Context, headers map[string]string) {
	r.settings.SetRequestHeaders(ctx, headers)
}

// DeviceID returns the persisted device id, generating it on first use.
func (r *Radar) DeviceID(ctx context.Context) string {
	return r.identity.GetID(ctx)
}

type operation func(ctx context.Context) (Result, transport.Response, error)

// run executes op and normalizes its failure.
func (r *Radar) run(ctx context.Context, name string, op operation) (Result, transport.Response, error) {
	res, raw, err := op(ctx)
	if err != nil {
		se := status.Normalize(err)
		if raw == nil && se.Response != nil {
			raw = transport.Response(se.Response)
		}
		r.logger.Debugf("%s failed: %v", name, se)
		return Result{}, raw, se
	}
	return res, raw, nil
}

// dispatch runs op in its own goroutine and calls cb exactly once.
func (r *Radar) dispatch(name string, cb Callback, op operation) {
	go func() {
		res, raw, err := r.guard(name, op)
		if cb != nil {
			cb(err, res, raw)
		}
	}()
}

func (r *Radar) guard(name string, op operation) (res Result, raw transport.Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Errorf("%s panicked: %v", name, p)
			res, raw, err = Result{}, nil, status.Wrap(status.ErrorUnknown, fmt.Errorf("panic: %v", p))
		}
	}()
	return r.run(context.Background(), name, op)
}

// curate builds a successful Result from the given keys of raw.
func curate(raw transport.Response, keys ...string) Result {
	res := Result{"status": status.Success}
	for _, k := range keys {
		res[k] = raw[k]
	}
	return res
}

// position returns c when set, the current device position otherwise.
func (r *Radar) position(ctx context.Context, c *location.Coordinates) (location.Coordinates, error) {
	if c != nil {
		return *c, nil
	}
	return location.Current(ctx, r.positions)
}
