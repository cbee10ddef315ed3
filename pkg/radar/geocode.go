package radar

import (
	"context"
	"net/http"

	"com.aviebrantz.radar-client/pkg/location"
	"com.aviebrantz.radar-client/pkg/transport"
)

type GeocodeOptions struct {
	Query   string
	Layers  []string
	Country string
}

// ReverseGeocodeOptions configure ReverseGeocode. Location defaults to the
// current device position.
type ReverseGeocodeOptions struct {
	Location *location.Coordinates
	Layers   []string
}

// IPGeocodeOptions configure IPGeocode. An empty IP geocodes the caller.
type IPGeocodeOptions struct {
	IP string
}

// Geocode converts an address into coordinates.
func (r *Radar) Geocode(ctx context.Context, opts *GeocodeOptions) (Result, transport.Response, error) {
	return r.run(ctx, "geocode", r.geocode(opts))
}

func (r *Radar) GeocodeAsync(opts *GeocodeOptions, cb Callback) {
	r.dispatch("geocode", cb, r.geocode(opts))
}

func (r *Radar) geocode(opts *GeocodeOptions) operation {
	var o GeocodeOptions
	if opts != nil {
		o = *opts
	}
	return func(ctx context.Context) (Result, transport.Response, error) {
		raw, err := r.requester.Request(ctx, http.MethodGet, "geocode/forward", transport.Params{
			"query":   transport.Optional(o.Query),
			"layers":  transport.Join(o.Layers, ","),
			"country": transport.Optional(o.Country),
		})
		if err != nil {
			return nil, nil, err
		}
		return curate(raw, "addresses"), raw, nil
	}
}

// ReverseGeocode converts coordinates into addresses.
func (r *Radar) ReverseGeocode(ctx context.Context, opts *ReverseGeocodeOptions) (Result, transport.Response, error) {
	return r.run(ctx, "reverseGeocode", r.reverseGeocode(opts))
}

func (r *Radar) ReverseGeocodeAsync(opts *ReverseGeocodeOptions, cb Callback) {
	r.dispatch("reverseGeocode", cb, r.reverseGeocode(opts))
}

func (r *Radar) reverseGeocode(opts *ReverseGeocodeOptions) operation {
	var o ReverseGeocodeOptions
	if opts != nil {
		o = *opts
	}
	return func(ctx context.Context) (Result, transport.Response, error) {
		c, err := r.position(ctx, o.Location)
		if err != nil {
			return nil, nil, err
		}

		raw, err := r.requester.Request(ctx, http.MethodGet, "geocode/reverse", transport.Params{
			"coordinates": c.String(),
			"layers":      transport.Join(o.Layers, ","),
		})
		if err != nil {
			return nil, nil, err
		}
		return curate(raw, "addresses"), raw, nil
	}
}

// IPGeocode converts an IP address into a coarse address.
func (r *Radar) IPGeocode(ctx context.Context, opts *IPGeocodeOptions) (Result, transport.Response, error) {
	return r.run(ctx, "ipGeocode", r.ipGeocode(opts))
}

func (r *Radar) IPGeocodeAsync(opts *IPGeocodeOptions, cb Callback) {
	r.dispatch("ipGeocode", cb, r.ipGeocode(opts))
}

func (r *Radar) ipGeocode(opts *IPGeocodeOptions) operation {
	var o IPGeocodeOptions
	if opts != nil {
		o = *opts
	}
	return func(ctx context.Context) (Result, transport.Response, error) {
		raw, err := r.requester.Request(ctx, http.MethodGet, "geocode/ip", transport.Params{
			"ip": transport.Optional(o.IP),
		})
		if err != nil {
			return nil, nil, err
		}
		return curate(raw, "address"), raw, nil
	}
}
