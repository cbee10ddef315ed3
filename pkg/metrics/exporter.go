// Package metrics exposes the client's opencensus views for Prometheus.
package metrics

import (
	"context"
	"net/http"

	"contrib.go.opencensus.io/exporter/prometheus"
	"github.com/apex/log"
)

const Namespace = "radar_client"

// Exporter serves the registered views on /metrics.
type Exporter struct {
	server *http.Server
	logger *log.Entry
}

func NewExporter(addr string) (*Exporter, error) {
	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: Namespace,
	})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", pe)
	return &Exporter{
		server: &http.Server{Addr: addr, Handler: mux},
		logger: log.WithField("module", "metrics"),
	}, nil
}

// Handler returns the scrape handler.
func (e *Exporter) Handler() http.Handler {
	return e.server.Handler
}

// Start runs the scrape endpoint in the background.
func (e *Exporter) Start() {
	go func() {
		e.logger.Infof("serving metrics on %s/metrics", e.server.Addr)
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.logger.Errorf("failed to run Prometheus scrape endpoint: %v", err)
		}
	}()
}

func (e *Exporter) Stop(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
