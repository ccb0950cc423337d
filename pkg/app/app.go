// Package app wires configuration, storage, the region list and its
// subscribers into one handle shared by the command line tools.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kass/geofencer/pkg/config"
	"github.com/kass/geofencer/pkg/editor"
	"github.com/kass/geofencer/pkg/events"
	"github.com/kass/geofencer/pkg/geo"
	"github.com/kass/geofencer/pkg/metrics"
	"github.com/kass/geofencer/pkg/region"
	"github.com/kass/geofencer/pkg/regionlist"
	"github.com/kass/geofencer/pkg/store"
)

const persistQueueDepth = 16

// App holds the running components
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Manager *regionlist.Manager
	Index   *geo.Index
	Session *editor.Session

	// LoadErr is set when some or all persisted regions could not be loaded
	LoadErr error

	persister *regionlist.PersistSubscriber
	metrics   *http.Server
	closers   []func()
}

type options struct {
	display  regionlist.Display
	location editor.LocationProvider
	store    regionlist.Store
}

// Option customizes Open
type Option func(*options)

// WithDisplay renders list changes on d
func WithDisplay(d regionlist.Display) Option {
	return func(o *options) { o.display = d }
}

// WithLocation sets the provider used for "current location" points
func WithLocation(loc editor.LocationProvider) Option {
	return func(o *options) { o.location = loc }
}

// WithStore overrides the configured store
func WithStore(s regionlist.Store) Option {
	return func(o *options) { o.store = s }
}

// Open builds every component and loads the persisted regions. A failed
// load is not fatal: the list starts with whatever could be decoded and
// the problem is reported in LoadErr.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, Logger: logger, Index: geo.NewIndex()}

	st := o.store
	if st == nil {
		var closeStore func()
		var err error
		st, closeStore, err = OpenStore(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closeStore)
	}

	a.persister = regionlist.NewPersistSubscriber(st, logger).Async(context.WithoutCancel(ctx), persistQueueDepth)

	listOpts := []regionlist.Option{
		regionlist.WithLogger(logger),
		regionlist.WithSubscriber(a.Index),
		regionlist.WithSubscriber(a.persister),
	}
	if o.display != nil {
		listOpts = append([]regionlist.Option{regionlist.WithDisplay(o.display)}, listOpts...)
	}
	if !cfg.Decode.Strict {
		listOpts = append(listOpts, regionlist.WithDecodeOptions(region.Permissive()))
	}

	if cfg.Events.NATSURL != "" {
		pub, err := events.NewPublisher(cfg.Events.NATSURL, cfg.Events.Subject, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, pub.Close)
		listOpts = append(listOpts, regionlist.WithSubscriber(pub))
	}

	a.Manager = regionlist.New(st, listOpts...)
	a.Session = editor.NewSession(a.Manager, o.location, logger)

	if _, err := a.Manager.Load(ctx); err != nil {
		a.LoadErr = err
		logger.Warn("regions loaded with errors", "error", err)
	}

	if cfg.Metrics.Addr != "" {
		a.serveMetrics(cfg.Metrics.Addr)
	}

	return a, nil
}

// OpenStore creates the store selected by cfg.Driver
func OpenStore(ctx context.Context, cfg config.StoreConfig) (regionlist.Store, func(), error) {
	switch cfg.Driver {
	case "file":
		return store.NewFile(cfg.Path), func() {}, nil
	case "memory":
		return store.NewMemory(), func() {}, nil
	case "postgres":
		pg, err := store.NewPostgres(ctx, cfg.Postgres.ConnString())
		if err != nil {
			return nil, nil, err
		}
		if err := pg.InitSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	case "valkey":
		vk, err := store.NewValkey(cfg.Valkey.Addr, cfg.Valkey.Key)
		if err != nil {
			return nil, nil, err
		}
		return vk, vk.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func (a *App) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	a.metrics = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.Logger.Info("serving metrics", "addr", addr)
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("metrics server failed", "error", err)
		}
	}()
}

// Close flushes pending saves and releases every connection
func (a *App) Close() {
	if a.persister != nil {
		a.persister.Close()
	}

	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.metrics.Shutdown(ctx)
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
