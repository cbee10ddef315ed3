package radar

import (
	"context"
	"net/http"

	"com.aviebrantz.radar-client/pkg/location"
	"com.aviebrantz.radar-client/pkg/status"
	"com.aviebrantz.radar-client/pkg/transport"
)

// TrackOptions configure TrackOnce. Params are extra body fields; they never
// override the fields the client sets itself.
type TrackOptions struct {
	Location *location.Coordinates
	Params   map[string]interface{}
}

// GetLocation returns the current device position.
func (r *Radar) GetLocation(ctx context.Context) (Result, transport.Response, error) {
	return r.run(ctx, "getLocation", r.getLocation)
}

func (r *Radar) GetLocationAsync(cb Callback) {
	r.dispatch("getLocation", cb, r.getLocation)
}

func (r *Radar) getLocation(ctx context.Context) (Result, transport.Response, error) {
	c, err := location.Current(ctx, r.positions)
	if err != nil {
		return nil, nil, err
	}
	return Result{"location": c, "status": status.Success}, nil, nil
}

// TrackOnce reports a single position for this device. The current device
// position is used when opts carries none.
func (r *Radar) TrackOnce(ctx context.Context, opts *TrackOptions) (Result, transport.Response, error) {
	return r.run(ctx, "trackOnce", r.trackOnce(opts))
}

func (r *Radar) TrackOnceAsync(opts *TrackOptions, cb Callback) {
	r.dispatch("trackOnce", cb, r.trackOnce(opts))
}

func (r *Radar) trackOnce(opts *TrackOptions) operation {
	var o TrackOptions
	extra := transport.Params{}
	if opts != nil {
		o = *opts
		for k, v := range opts.Params {
			extra[k] = v
		}
	}
	return func(ctx context.Context) (Result, transport.Response, error) {
		c, err := r.position(ctx, o.Location)
		if err != nil {
			return nil, nil, err
		}

		profile := r.identity.Profile(ctx)
		tripOptions, _ := r.trips.Active(ctx)

		params := transport.Params{}
		for k, v := range extra {
			params[k] = v
		}
		params["accuracy"] = c.Accuracy
		params["description"] = transport.Optional(profile.Description)
		params["deviceId"] = profile.DeviceID
		params["deviceType"] = profile.DeviceType
		params["foreground"] = true
		params["installId"] = profile.InstallID
		params["latitude"] = c.Latitude
		params["longitude"] = c.Longitude
		params["metadata"] = profile.Metadata
		params["sdkVersion"] = transport.SDKVersion
		params["stopped"] = true
		params["userId"] = transport.Optional(profile.UserID)
		params["tripOptions"] = tripOptions

		raw, err := r.requester.Request(ctx, http.MethodPost, "track", params)
		if err != nil {
			return nil, nil, err
		}
		if raw == nil {
			raw = transport.Response{}
		}
		raw["location"] = c
		return curate(raw, "location", "user", "events"), raw, nil
	}
}

// GetContext returns the context of c, or of the current device position
// when c is nil.
func (r *Radar) GetContext(ctx context.Context, c *location.Coordinates) (Result, transport.Response, error) {
	return r.run(ctx, "getContext", r.getContext(c))
}

func (r *Radar) GetContextAsync(c *location.Coordinates, cb Callback) {
	r.dispatch("getContext", cb, r.getContext(c))
}

func (r *Radar) getContext(c *location.Coordinates) operation {
	if c != nil {
		pos := *c
		c = &pos
	}
	return func(ctx context.Context) (Result, transport.Response, error) {
		pos, err := r.position(ctx, c)
		if err != nil {
			return nil, nil, err
		}

		raw, err := r.requester.Request(ctx, http.MethodGet, "context", transport.Params{
			"coordinates": pos.String(),
		})
		if err != nil {
			return nil, nil, err
		}
		return curate(raw, "context"), raw, nil
	}
}
