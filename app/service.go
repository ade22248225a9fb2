// Package app assembles the planning service from its configuration.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harborworks/slipway/config"
	"github.com/harborworks/slipway/core/board"
	"github.com/harborworks/slipway/core/events"
	coremetrics "github.com/harborworks/slipway/core/metrics"
	"github.com/harborworks/slipway/core/registry"
	"github.com/harborworks/slipway/core/timeline"
	"github.com/harborworks/slipway/infra/logger"
	"github.com/harborworks/slipway/infra/metrics"
	"github.com/harborworks/slipway/infra/notify"
	"github.com/harborworks/slipway/infra/store"
	"github.com/harborworks/slipway/internal/eventbus"
)

// Service wires the registry, metric sinks, event bus and notifier
// behind a single entry point. Board sessions are created per planner
// through NewSession.
type Service struct {
	Registry registry.Registry
	Bus      *eventbus.Bus[events.Event]

	cfg      *config.Config
	sink     coremetrics.PlanningSink
	notifier *notify.Notifier
	closers  []func() error
	log      logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	zerolog.SetGlobalLevel(cfg.Logging.ZerologLevel())
	logg := logger.New("service")

	svc := &Service{cfg: cfg, log: logg, Bus: eventbus.New[events.Event]()}

	reg, err := svc.openRegistry()
	if err != nil {
		return nil, err
	}
	svc.Registry = reg

	var sinks []coremetrics.PlanningSink
	if cfg.Metrics.Prometheus.Enabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.Influx.Enabled {
		ic := cfg.Metrics.Influx
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(ic.URL, ic.Token, ic.Org, ic.Bucket))
	}
	switch len(sinks) {
	case 0:
		svc.sink = coremetrics.NopSink{}
	case 1:
		svc.sink = sinks[0]
	default:
		svc.sink = metrics.NewMultiSink(sinks...)
	}

	if cfg.Notifier.Enabled {
		n, err := notify.NewNotifier(cfg.Notifier)
		if err != nil {
			return nil, fmt.Errorf("notifier: %w", err)
		}
		svc.notifier = n
	}
	return svc, nil
}

func (s *Service) openRegistry() (registry.Registry, error) {
	var (
		reg    registry.Registry
		writer store.Writer
	)
	switch s.cfg.Store.Backend {
	case "sqlite":
		db, err := store.NewSQLiteRegistry(s.cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		reg, writer = db, db
	default:
		mem := registry.NewMemoryRegistry()
		reg, writer = mem, mem
	}
	if s.cfg.Store.Seed != "" {
		seed, err := store.LoadSeed(s.cfg.Store.Seed)
		if err != nil {
			return nil, fmt.Errorf("load seed: %w", err)
		}
		if err := seed.Apply(writer); err != nil {
			return nil, fmt.Errorf("apply seed: %w", err)
		}
		s.log.Infof("seeded registry with %d units, %d workers", len(seed.Units), len(seed.Workers))
	}
	return reg, nil
}

// NewSession opens a planning board session backed by the service
// registry and sinks.
func (s *Service) NewSession() (*board.Session, error) {
	opts := board.Options{
		Granularity: timeline.Granularity(s.cfg.Planner.Granularity),
		CanEdit:     !s.cfg.Planner.ReadOnly,
		Durations:   s.cfg.Planner.Durations(),
		Sink:        s.sink,
		Bus:         s.Bus,
		Logger:      logger.New("board"),
	}
	if s.cfg.Planner.Anchor != "" {
		anchor, err := timeline.ParseISO(s.cfg.Planner.Anchor)
		if err != nil {
			return nil, err
		}
		opts.Anchor = anchor
	}
	return board.NewSession(s.Registry, opts)
}

// Run starts the background adapters and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.Prometheus.Enabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.Prometheus.Port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.notifier != nil {
		go s.notifier.Pump(ctx, s.Bus)
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.notifier != nil {
		s.notifier.Close()
	}
	s.Bus.Close()
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
