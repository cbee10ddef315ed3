package radar

import (
	"context"
	"net/http"
	"strings"

	"com.aviebrantz.radar-client/pkg/location"
	"com.aviebrantz.radar-client/pkg/transport"
)

// DistanceOptions configure GetDistance. Origin defaults to the current
// device position.
type DistanceOptions struct {
	Origin      *location.Coordinates
	Destination *location.Coordinates
	Modes       []string
	Units       string
	Geometry    string
}

// MatrixOptions configure GetMatrix. Origins default to the current device
// position.
type MatrixOptions struct {
	Origins      []location.Coordinates
	Destinations []location.Coordinates
	Mode         string
	Units        string
	Geometry     string
}

// GetDistance returns travel distances and durations between two points.
func (r *Radar) GetDistance(ctx context.Context, opts *DistanceOptions) (Result, transport.Response, error) {
	return r.run(ctx, "getDistance", r.getDistance(opts))
}

func (r *Radar) GetDistanceAsync(opts *DistanceOptions, cb Callback) {
	r.dispatch("getDistance", cb, r.getDistance(opts))
}

func (r *Radar) getDistance(opts *DistanceOptions) operation {
	var o DistanceOptions
	if opts != nil {
		o = *opts
	}
	return func(ctx context.Context) (Result, transport.Response, error) {
		origin, err := r.position(ctx, o.Origin)
		if err != nil {
			return nil, nil, err
		}

		var destination interface{}
		if o.Destination != nil {
			destination = o.Destination.String()
		}

		raw, err := r.requester.Request(ctx, http.MethodGet, "route/distance", transport.Params{
			"origin":      origin.String(),
			"destination": destination,
			"modes":       transport.Join(o.Modes, ","),
			"units":       transport.Optional(o.Units),
			"geometry":    transport.Optional(o.Geometry),
		})
		if err != nil {
			return nil, nil, err
		}
		return curate(raw, "routes"), raw, nil
	}
}

// GetMatrix returns distances and durations between every origin and every
// destination.
func (r *Radar) GetMatrix(ctx context.Context, opts *MatrixOptions) (Result, transport.Response, error) {
	return r.run(ctx, "getMatrix", r.getMatrix(opts))
}

func (r *Radar) GetMatrixAsync(opts *MatrixOptions, cb Callback) {
	r.dispatch("getMatrix", cb, r.getMatrix(opts))
}

func (r *Radar) getMatrix(opts *MatrixOptions) operation {
	var o MatrixOptions
	if opts != nil {
		o = *opts
	}
	return func(ctx context.Context) (Result, transport.Response, error) {
		origins := o.Origins
		if len(origins) == 0 {
			c, err := location.Current(ctx, r.positions)
			if err != nil {
				return nil, nil, err
			}
			origins = []location.Coordinates{c}
		}

		raw, err := r.requester.Request(ctx, http.MethodGet, "route/matrix", transport.Params{
			"origins":      joinCoordinates(origins),
			"destinations": joinCoordinates(o.Destinations),
			"mode":         transport.Optional(o.Mode),
			"units":        transport.Optional(o.Units),
			"geometry":     transport.Optional(o.Geometry),
		})
		if err != nil {
			return nil, nil, err
		}
		return curate(raw, "origins", "destinations", "matrix"), raw, nil
	}
}

func joinCoordinates(list []location.Coordinates) string {
	parts := make([]string, len(list))
	for i, c := range list {
		parts[i] = c.String()
	}
	return strings.Join(parts, "|")
}
