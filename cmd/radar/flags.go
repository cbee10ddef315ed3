package main

import (
	"fmt"
	"strconv"
	"strings"

	"com.aviebrantz.radar-client/pkg/location"
	"github.com/nqd/flat"
)

// coordinatesFlag parses "latitude,longitude[,accuracy]".
type coordinatesFlag struct {
	value *location.Coordinates
}

func (f *coordinatesFlag) String() string {
	if f.value == nil {
		return ""
	}
	return f.value.String()
}

func (f *coordinatesFlag) Set(s string) error {
	c, err := parseCoordinates(s)
	if err != nil {
		return err
	}
	f.value = &c
	return nil
}

func parseCoordinates(s string) (location.Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return location.Coordinates{}, fmt.Errorf("want latitude,longitude[,accuracy], got %q", s)
	}

	nums := make([]float64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return location.Coordinates{}, fmt.Errorf("invalid number %q", p)
		}
		nums[i] = n
	}

	if nums[0] < -90 || nums[0] > 90 || nums[1] < -180 || nums[1] > 180 {
		return location.Coordinates{}, fmt.Errorf("coordinates %q out of range", s)
	}
	c := location.Coordinates{Latitude: nums[0], Longitude: nums[1]}
	if len(nums) == 3 {
		c.Accuracy = &nums[2]
	}
	return c, nil
}

// coordinatesListFlag collects coordinates separated by "|" or given by
// repeating the flag.
type coordinatesListFlag struct {
	values []location.Coordinates
}

func (f *coordinatesListFlag) String() string {
	parts := make([]string, len(f.values))
	for i, c := range f.values {
		parts[i] = c.String()
	}
	return strings.Join(parts, "|")
}

func (f *coordinatesListFlag) Set(s string) error {
	for _, part := range strings.Split(s, "|") {
		c, err := parseCoordinates(part)
		if err != nil {
			return err
		}
		f.values = append(f.values, c)
	}
	return nil
}

// listFlag collects comma separated values.
type listFlag []string

func (f *listFlag) String() string {
	return strings.Join(*f, ",")
}

func (f *listFlag) Set(s string) error {
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*f = append(*f, v)
		}
	}
	return nil
}

// metadataFlag collects key=value pairs. Dotted keys build nested maps, so
// -meta hours.open=9 becomes {"hours": {"open": "9"}}.
type metadataFlag struct {
	pairs map[string]interface{}
}

func (f *metadataFlag) String() string {
	pairs := make([]string, 0, len(f.pairs))
	for k, v := range f.pairs {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(pairs, " ")
}

func (f *metadataFlag) Set(s string) error {
	kv := strings.SplitN(s, "=", 2)
	if len(kv) != 2 || kv[0] == "" {
		return fmt.Errorf("want key=value, got %q", s)
	}
	if f.pairs == nil {
		f.pairs = make(map[string]interface{})
	}
	f.pairs[kv[0]] = parseScalar(kv[1])
	return nil
}

// Map returns the nested metadata, or nil when no pair was given.
func (f *metadataFlag) Map() (map[string]interface{}, error) {
	if len(f.pairs) == 0 {
		return nil, nil
	}
	return flat.Unflatten(f.pairs, &flat.Options{
		Delimiter: ".",
	})
}

func parseScalar(s string) interface{} {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}
