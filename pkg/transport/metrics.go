package transport

import (
	"sync"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	MLatencyMs = stats.Float64("radar/transport/latency", "The latency in milliseconds per request", "ms")

	MRequests = stats.Int64("radar/transport/requests", "Number of requests", "By")
)

var (
	LatencyView = &view.View{
		Name:        "radar/transport/latency",
		Measure:     MLatencyMs,
		Description: "The distribution of the latencies",

		Aggregation: view.Distribution(0, 25, 50, 75, 100, 200, 400, 600, 800, 1000, 2000, 4000, 6000),
		TagKeys:     []tag.Key{KeyMethod},
	}

	RequestsCountView = &view.View{
		Name:        "radar/transport/requests",
		Measure:     MRequests,
		Description: "Number of requests by outcome",
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{KeyMethod, KeyStatus},
	}
)

var (
	KeyMethod, _ = tag.NewKey("method")
	KeyStatus, _ = tag.NewKey("status")
)

var registerOnce sync.Once

func registerMetrics() error {
	var err error
	registerOnce.Do(func() {
		err = view.Register(LatencyView, RequestsCountView)
	})
	return err
}

func sinceInMilliseconds(startTime time.Time) float64 {
	return float64(time.Since(startTime).Nanoseconds()) / 1e6
}
