package main

import (
	"context"
	"flag"
	"strings"

	"com.aviebrantz.radar-client/pkg/radar"
	"com.aviebrantz.radar-client/pkg/status"
	"com.aviebrantz.radar-client/pkg/transport"
)

type runFunc func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error)

// command registers its flags on fs and returns the function running it.
type command struct {
	args    string
	summary string
	setup   func(fs *flag.FlagSet) runFunc
}

var commands = map[string]command{
	"device":       {"[options]", "Show the device id, optionally changing the device identity first.", deviceCmd},
	"location":     {"", "Print the configured device position.", locationCmd},
	"track":        {"[options]", "Track the device once.", trackCmd},
	"context":      {"[options]", "Get the context of a position.", contextCmd},
	"trip":         {"start|update|complete|cancel|show [options]", "Manage the active trip.", tripCmd},
	"places":       {"[options]", "Search places near a position.", placesCmd},
	"geofences":    {"[options]", "Search geofences near a position.", geofencesCmd},
	"autocomplete": {"[options] <query>", "Autocomplete a partial address.", autocompleteCmd},
	"geocode":      {"[options] <query>", "Geocode an address.", geocodeCmd},
	"reverse":      {"[options]", "Reverse geocode a position.", reverseCmd},
	"ip":           {"[address]", "Geocode an IP address, or the caller's.", ipCmd},
	"distance":     {"[options]", "Get the distance between two positions.", distanceCmd},
	"matrix":       {"[options]", "Get the distances between origins and destinations.", matrixCmd},
}

func deviceCmd(fs *flag.FlagSet) runFunc {
	deviceID := fs.String("device-id", "", "Override the device id")
	installID := fs.String("install-id", "", "Override the install id (with -device-id)")
	userID := fs.String("user", "", "Set the user id")
	description := fs.String("description", "", "Set the device description")
	var meta metadataFlag
	fs.Var(&meta, "meta", "Set device metadata as key=value, repeatable")

	return func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error) {
		if *deviceID != "" {
			r.SetDeviceID(ctx, *deviceID, *installID)
		}
		if *userID != "" {
			r.SetUserID(ctx, *userID)
		}
		if *description != "" {
			r.SetDescription(ctx, *description)
		}
		metadata, err := meta.Map()
		if err != nil {
			return nil, nil, usagef("invalid metadata: %v", err)
		}
		if metadata != nil {
			r.SetMetadata(ctx, metadata)
		}
		return radar.Result{"deviceId": r.DeviceID(ctx), "status": status.Success}, nil, nil
	}
}

func locationCmd(fs *flag.FlagSet) runFunc {
	return func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error) {
		return r.GetLocation(ctx)
	}
}

func trackCmd(fs *flag.FlagSet) runFunc {
	var at coordinatesFlag
	fs.Var(&at, "at", "Position to track as latitude,longitude[,accuracy]")
	var params metadataFlag
	fs.Var(&params, "param", "Extra body field as key=value, repeatable")

	return func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error) {
		extra, err := params.Map()
		if err != nil {
			return nil, nil, usagef("invalid param: %v", err)
		}
		return r.TrackOnce(ctx, &radar.TrackOptions{Location: at.value, Params: extra})
	}
}

func contextCmd(fs *flag.FlagSet) runFunc {
	var at coordinatesFlag
	fs.Var(&at, "at", "Position as latitude,longitude")

	return func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error) {
		return r.GetContext(ctx, at.value)
	}
}

func tripCmd(fs *flag.FlagSet) runFunc {
	externalID := fs.String("id", "", "External id of the trip")
	tag := fs.String("geofence-tag", "", "Tag of the destination geofence")
	geofenceID := fs.String("geofence-id", "", "External id of the destination geofence")
	mode := fs.String("mode", "", "Travel mode: foot, bike or car")
	tripStatus := fs.String("status", "", "New status for update")
	var meta metadataFlag
	fs.Var(&meta, "meta", "Trip metadata as key=value, repeatable")

	return func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error) {
		if len(args) != 1 {
			return nil, nil, usagef("trip needs one action: start, update, complete, cancel or show")
		}

		metadata, err := meta.Map()
		if err != nil {
			return nil, nil, usagef("invalid metadata: %v", err)
		}
		opts := &radar.TripOptions{
			ExternalID:                    *externalID,
			DestinationGeofenceTag:        *tag,
			DestinationGeofenceExternalID: *geofenceID,
			Mode:                          *mode,
			Metadata:                      metadata,
		}

		switch args[0] {
		case "start":
			return r.StartTrip(ctx, opts)
		case "update":
			if opts.ExternalID == "" {
				if active := r.GetTripOptions(ctx); active != nil {
					opts = mergeTripOptions(active, opts)
				}
			}
			return r.UpdateTrip(ctx, opts, radar.TripStatus(*tripStatus))
		case "complete":
			return r.CompleteTrip(ctx)
		case "cancel":
			return r.CancelTrip(ctx)
		case "show":
			return radar.Result{
				"tripOptions": r.GetTripOptions(ctx),
				"tripStatus":  r.GetTripStatus(ctx),
				"status":      status.Success,
			}, nil, nil
		}
		return nil, nil, usagef("unknown trip action %q", args[0])
	}
}

// mergeTripOptions returns active with the fields set in changes replaced.
func mergeTripOptions(active, changes *radar.TripOptions) *radar.TripOptions {
	merged := *active
	if changes.DestinationGeofenceTag != "" {
		merged.DestinationGeofenceTag = changes.DestinationGeofenceTag
	}
	if changes.DestinationGeofenceExternalID != "" {
		merged.DestinationGeofenceExternalID = changes.DestinationGeofenceExternalID
	}
	if changes.Mode != "" {
		merged.Mode = changes.Mode
	}
	if changes.Metadata != nil {
		merged.Metadata = changes.Metadata
	}
	return &merged
}

func placesCmd(fs *flag.FlagSet) runFunc {
	var near coordinatesFlag
	fs.Var(&near, "near", "Search around latitude,longitude")
	radius := fs.Int("radius", 0, "Search radius in meters")
	var chains, categories, groups listFlag
	fs.Var(&chains, "chains", "Comma separated chain slugs")
	fs.Var(&categories, "categories", "Comma separated categories")
	fs.Var(&groups, "groups", "Comma separated groups")
	limit := fs.Int("limit", 0, "Maximum number of places")

	return func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error) {
		return r.SearchPlaces(ctx, &radar.SearchPlacesOptions{
			Near:       near.value,
			Radius:     *radius,
			Chains:     chains,
			Categories: categories,
			Groups:     groups,
			Limit:      *limit,
		})
	}
}

func geofencesCmd(fs *flag.FlagSet) runFunc {
	var near coordinatesFlag
	fs.Var(&near, "near", "Search around latitude,longitude")
	radius := fs.Int("radius", 0, "Search radius in meters")
	var tags listFlag
	fs.Var(&tags, "tags", "Comma separated geofence tags")
	var meta metadataFlag
	fs.Var(&meta, "meta", "Geofence metadata filter as key=value, repeatable")
	limit := fs.Int("limit", 0, "Maximum number of geofences")

	return func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error) {
		metadata, err := meta.Map()
		if err != nil {
			return nil, nil, usagef("invalid metadata: %v", err)
		}
		return r.SearchGeofences(ctx, &radar.SearchGeofencesOptions{
			Near:     near.value,
			Radius:   *radius,
			Tags:     tags,
			Metadata: metadata,
			Limit:    *limit,
		})
	}
}

func autocompleteCmd(fs *flag.FlagSet) runFunc {
	var near coordinatesFlag
	fs.Var(&near, "near", "Bias results around latitude,longitude")
	limit := fs.Int("limit", 0, "Maximum number of addresses")
	var layers listFlag
	fs.Var(&layers, "layers", "Comma separated layers")
	country := fs.String("country", "", "Country code filter")

	return func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error) {
		if len(args) == 0 {
			return nil, nil, usagef("autocomplete needs a query")
		}
		return r.Autocomplete(ctx, &radar.AutocompleteOptions{
			Query:   strings.Join(args, " "),
			Near:    near.value,
			Limit:   *limit,
			Layers:  layers,
			Country: *country,
		})
	}
}

func geocodeCmd(fs *flag.FlagSet) runFunc {
	var layers listFlag
	fs.Var(&layers, "layers", "Comma separated layers")
	country := fs.String("country", "", "Country code filter")

	return func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error) {
		if len(args) == 0 {
			return nil, nil, usagef("geocode needs a query")
		}
		return r.Geocode(ctx, &radar.GeocodeOptions{
			Query:   strings.Join(args, " "),
			Layers:  layers,
			Country: *country,
		})
	}
}

func reverseCmd(fs *flag.FlagSet) runFunc {
	var at coordinatesFlag
	fs.Var(&at, "at", "Position as latitude,longitude")
	var layers listFlag
	fs.Var(&layers, "layers", "Comma separated layers")

	return func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error) {
		return r.ReverseGeocode(ctx, &radar.ReverseGeocodeOptions{Location: at.value, Layers: layers})
	}
}

func ipCmd(fs *flag.FlagSet) runFunc {
	return func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error) {
		opts := &radar.IPGeocodeOptions{}
		if len(args) > 0 {
			opts.IP = args[0]
		}
		return r.IPGeocode(ctx, opts)
	}
}

func distanceCmd(fs *flag.FlagSet) runFunc {
	var origin, destination coordinatesFlag
	fs.Var(&origin, "origin", "Origin as latitude,longitude")
	fs.Var(&destination, "destination", "Destination as latitude,longitude")
	var modes listFlag
	fs.Var(&modes, "modes", "Comma separated travel modes")
	units := fs.String("units", "", "metric or imperial")
	geometry := fs.String("geometry", "", "Route geometry format: polyline, linestring or none")

	return func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error) {
		if destination.value == nil {
			return nil, nil, usagef("distance needs -destination")
		}
		return r.GetDistance(ctx, &radar.DistanceOptions{
			Origin:      origin.value,
			Destination: destination.value,
			Modes:       modes,
			Units:       *units,
			Geometry:    *geometry,
		})
	}
}

func matrixCmd(fs *flag.FlagSet) runFunc {
	var origins, destinations coordinatesListFlag
	fs.Var(&origins, "origins", "Origins as lat,lng|lat,lng, repeatable")
	fs.Var(&destinations, "destinations", "Destinations as lat,lng|lat,lng, repeatable")
	mode := fs.String("mode", "", "Travel mode")
	units := fs.String("units", "", "metric or imperial")
	geometry := fs.String("geometry", "", "Route geometry format: polyline, linestring or none")

	return func(ctx context.Context, r *radar.Radar, args []string) (radar.Result, transport.Response, error) {
		if len(destinations.values) == 0 {
			return nil, nil, usagef("matrix needs -destinations")
		}
		return r.GetMatrix(ctx, &radar.MatrixOptions{
			Origins:      origins.values,
			Destinations: destinations.values,
			Mode:         *mode,
			Units:        *units,
			Geometry:     *geometry,
		})
	}
}
