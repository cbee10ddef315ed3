package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"com.aviebrantz.radar-client/pkg/config"
	"com.aviebrantz.radar-client/pkg/core/store"
	"com.aviebrantz.radar-client/pkg/core/trips"
	"com.aviebrantz.radar-client/pkg/location"
	"com.aviebrantz.radar-client/pkg/metrics"
	"com.aviebrantz.radar-client/pkg/radar"
	"github.com/apex/log"
	bolt "go.etcd.io/bbolt"
	"gocloud.dev/docstore"
	"gocloud.dev/pubsub"

	_ "gocloud.dev/docstore/memdocstore"
	_ "gocloud.dev/docstore/mongodocstore"
	_ "gocloud.dev/pubsub/mempubsub"
)

type app struct {
	radar   *radar.Radar
	closers []func()
}

func newApp(ctx context.Context, cfg *config.ClientConfig) (*app, error) {
	a := &app{}

	backend, err := a.openStore(ctx, cfg.StorageConfig)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []radar.Option{
		radar.WithHTTPClient(&http.Client{Timeout: cfg.APIConfig.Timeout.Duration}),
		radar.WithRateLimit(cfg.APIConfig.RateLimit),
	}
	if src := positionSource(cfg.LocationConfig); src != nil {
		opts = append(opts, radar.WithPositionSource(src))
	}

	if cfg.TripsConfig.TopicURL != "" {
		notifier, err := a.openTripEvents(ctx, cfg.TripsConfig.TopicURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, radar.WithTripNotifier(notifier))
	}

	if cfg.MetricsConfig.Addr != "" {
		exporter, err := metrics.NewExporter(cfg.MetricsConfig.Addr)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("metrics exporter: %w", err)
		}
		exporter.Start()
		a.closers = append(a.closers, func() {
			sctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			exporter.Stop(sctx)
		})
	}

	a.radar = radar.New(backend, opts...)
	applyConfig(ctx, a.radar, cfg)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) openStore(ctx context.Context, cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Type {
	case config.StorageMemory:
		return store.NewMemoryStore(), nil

	case config.StorageLocal:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
		db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: time.Second})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
		}
		a.closers = append(a.closers, func() { db.Close() })
		return store.NewLocalStore(db), nil

	case config.StorageDocstore:
		coll, err := docstore.OpenCollection(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("could not open collection %s: %w", cfg.URL, err)
		}
		a.closers = append(a.closers, func() { coll.Close() })
		return store.NewDocStore(coll), nil
	}
	return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
}

// openTripEvents opens the transition topic and logs every transition
// published on it.
func (a *app) openTripEvents(ctx context.Context, url string) (*trips.Notifier, error) {
	topic, err := pubsub.OpenTopic(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("could not open trip topic: %w", err)
	}

	sub, err := pubsub.OpenSubscription(ctx, url)
	if err != nil {
		topic.Shutdown(ctx)
		return nil, fmt.Errorf("could not open trip subscription: %w", err)
	}

	lctx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	listener := trips.NewListener(sub, func(t trips.Transition) {
		log.WithField("module", "trips").Infof("trip %s is now %s", t.ExternalID, t.Status)
	})
	go func() {
		defer close(done)
		if err := listener.Start(lctx); err != nil {
			log.WithError(err).Warn("trip listener stopped")
		}
	}()

	notifier := trips.NewNotifier(topic)
	a.closers = append(a.closers, func() {
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		// Shutdown flushes pending sends; the listener then gets until the
		// deadline to receive them. Transitions published by other
		// processes on a shared topic are not waited for.
		topic.Shutdown(sctx)
		if err := listener.Wait(sctx, notifier.Published()); err != nil {
			log.WithError(err).Warn("trip transitions left unhandled")
		}
		stop()
		<-done
		sub.Shutdown(sctx)
	})
	return notifier, nil
}

func positionSource(cfg config.LocationConfig) location.Source {
	if cfg.Latitude == nil || cfg.Longitude == nil {
		return nil
	}
	return location.Static(location.Coordinates{
		Latitude:  *cfg.Latitude,
		Longitude: *cfg.Longitude,
		Accuracy:  cfg.Accuracy,
	})
}

// applyConfig writes the configured values to the client. Unset values
// leave what is already stored untouched; host and base path are written
// together once either is set.
func applyConfig(ctx context.Context, r *radar.Radar, cfg *config.ClientConfig) {
	api := cfg.APIConfig
	if api.PublishableKey != "" {
		r.Initialize(ctx, api.PublishableKey)
	}
	if api.Host != "" || api.BasePath != "" {
		r.SetHost(ctx, api.Host, api.BasePath)
	}
	if len(api.Headers) > 0 {
		r.SetRequestHeaders(ctx, api.Headers)
	}

	dev := cfg.DeviceConfig
	if dev.DeviceID != "" || dev.InstallID != "" {
		r.SetDeviceID(ctx, dev.DeviceID, dev.InstallID)
	}
	if dev.DeviceType != "" {
		r.SetDeviceType(ctx, dev.DeviceType)
	}
	if dev.UserID != "" {
		r.SetUserID(ctx, dev.UserID)
	}
	if dev.Description != "" {
		r.SetDescription(ctx, dev.Description)
	}
	if len(dev.Metadata) > 0 {
		r.SetMetadata(ctx, dev.Metadata)
	}
}
