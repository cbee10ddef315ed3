package radar

import (
	"context"
	"net/http"

	"com.aviebrantz.radar-client/pkg/location"
	"com.aviebrantz.radar-client/pkg/transport"
	"github.com/jeremywohl/flatten"
)

// SearchPlacesOptions filter places around Near. Near defaults to the
// current device position.
type SearchPlacesOptions struct {
	Near       *location.Coordinates
	Radius     int
	Chains     []string
	Categories []string
	Groups     []string
	Limit      int
}

// SearchGeofencesOptions filter geofences around Near. Metadata entries
// are sent as metadata[key] parameters.
type SearchGeofencesOptions struct {
	Near     *location.Coordinates
	Radius   int
	Tags     []string
	Metadata map[string]interface{}
	Limit    int
}

// AutocompleteOptions configure Autocomplete. Without Near the server
// falls back to the caller's IP address.
type AutocompleteOptions struct {
	Query   string
	Near    *location.Coordinates
	Limit   int
	Layers  []string
	Country string
}

func (r *Radar) SearchPlaces(ctx context.Context, opts *SearchPlacesOptions) (Result, transport.Response, error) {
	return r.run(ctx, "searchPlaces", r.searchPlaces(opts))
}

func (r *Radar) SearchPlacesAsync(opts *SearchPlacesOptions, cb Callback) {
	r.dispatch("searchPlaces", cb, r.searchPlaces(opts))
}

func (r *Radar) searchPlaces(opts *SearchPlacesOptions) operation {
	var o SearchPlacesOptions
	if opts != nil {
		o = *opts
	}
	return func(ctx context.Context) (Result, transport.Response, error) {
		near, err := r.position(ctx, o.Near)
		if err != nil {
			return nil, nil, err
		}

		raw, err := r.requester.Request(ctx, http.MethodGet, "search/places", transport.Params{
			"near":       near.String(),
			"radius":     transport.OptionalInt(o.Radius),
			"chains":     transport.Join(o.Chains, ","),
			"categories": transport.Join(o.Categories, ","),
			"groups":     transport.Join(o.Groups, ","),
			"limit":      transport.OptionalInt(o.Limit),
		})
		if err != nil {
			return nil, nil, err
		}
		return curate(raw, "places"), raw, nil
	}
}

func (r *Radar) SearchGeofences(ctx context.Context, opts *SearchGeofencesOptions) (Result, transport.Response, error) {
	return r.run(ctx, "searchGeofences", r.searchGeofences(opts))
}

func (r *Radar) SearchGeofencesAsync(opts *SearchGeofencesOptions, cb Callback) {
	r.dispatch("searchGeofences", cb, r.searchGeofences(opts))
}

func (r *Radar) searchGeofences(opts *SearchGeofencesOptions) operation {
	var o SearchGeofencesOptions
	if opts != nil {
		o = *opts
	}
	return func(ctx context.Context) (Result, transport.Response, error) {
		near, err := r.position(ctx, o.Near)
		if err != nil {
			return nil, nil, err
		}

		params := transport.Params{
			"near":   near.String(),
			"radius": transport.OptionalInt(o.Radius),
			"tags":   transport.Join(o.Tags, ","),
			"limit":  transport.OptionalInt(o.Limit),
		}
		if err := addMetadata(params, o.Metadata); err != nil {
			return nil, nil, err
		}

		raw, err := r.requester.Request(ctx, http.MethodGet, "search/geofences", params)
		if err != nil {
			return nil, nil, err
		}
		return curate(raw, "geofences"), raw, nil
	}
}

// addMetadata sets metadata[key] parameters, nesting keys for nested maps.
func addMetadata(params transport.Params, metadata map[string]interface{}) error {
	if len(metadata) == 0 {
		return nil
	}
	flat, err := flatten.Flatten(map[string]interface{}{"metadata": metadata}, "", flatten.RailsStyle)
	if err != nil {
		return err
	}
	for k, v := range flat {
		params[k] = v
	}
	return nil
}

func (r *Radar) Autocomplete(ctx context.Context, opts *AutocompleteOptions) (Result, transport.Response, error) {
	return r.run(ctx, "autocomplete", r.autocomplete(opts))
}

func (r *Radar) AutocompleteAsync(opts *AutocompleteOptions, cb Callback) {
	r.dispatch("autocomplete", cb, r.autocomplete(opts))
}

func (r *Radar) autocomplete(opts *AutocompleteOptions) operation {
	var o AutocompleteOptions
	if opts != nil {
		o = *opts
	}
	return func(ctx context.Context) (Result, transport.Response, error) {
		var near interface{}
		if o.Near != nil && o.Near.Latitude != 0 && o.Near.Longitude != 0 {
			near = o.Near.String()
		}

		raw, err := r.requester.Request(ctx, http.MethodGet, "search/autocomplete", transport.Params{
			"query":   transport.Optional(o.Query),
			"near":    near,
			"limit":   transport.OptionalInt(o.Limit),
			"layers":  transport.Join(o.Layers, ","),
			"country": transport.Optional(o.Country),
		})
		if err != nil {
			return nil, nil, err
		}
		return curate(raw, "addresses"), raw, nil
	}
}
