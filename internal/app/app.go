// Package app arma el grafo de dependencias a partir de config.Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-adoption-catalog/internal/adapters/notify/redispub"
	mem "pet-adoption-catalog/internal/adapters/storage/memory"
	pg "pet-adoption-catalog/internal/adapters/storage/postgres"
	lite "pet-adoption-catalog/internal/adapters/storage/sqlite"
	"pet-adoption-catalog/internal/config"
	"pet-adoption-catalog/internal/domain/events"
	"pet-adoption-catalog/internal/domain/mood"
	"pet-adoption-catalog/internal/domain/moodrefresh"
	"pet-adoption-catalog/internal/domain/pets"
	"pet-adoption-catalog/internal/domain/references"
	"pet-adoption-catalog/internal/platform/logger"
	"pet-adoption-catalog/internal/platform/metrics"
)

type repos struct {
	pets       pets.Repository
	references references.Repository
	events     events.Repository
}

// App agrupa los services ya cableados. Close libera storage y redis.
type App struct {
	Config  config.Config
	Log     logger.Logger
	Metrics *metrics.Metrics

	Events     *events.Service
	References *references.Service
	Pets       *pets.Service
	Scheduler  *moodrefresh.Scheduler

	closers []func() error
}

type Option func(*options)

type options struct {
	now func() time.Time
	log logger.Logger
}

// WithClock fija el reloj de todos los services (tests end-to-end).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.New(logger.Options{
			Level:  logger.ParseLevel(cfg.Log.Level),
			Format: logger.ParseFormat(cfg.Log.Format),
			App:    cfg.Log.App,
		})
	}

	a := &App{
		Config:  cfg,
		Log:     o.log,
		Metrics: metrics.New(),
	}

	rs, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	eventOpts := []events.Option{
		events.WithLogger(a.Log.With(map[string]any{"module": "events"})),
		events.WithClock(o.now),
	}
	if cfg.Redis.URL != "" {
		pub, err := redispub.NewFromURL(cfg.Redis.URL, cfg.Redis.ChannelPrefix)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, pub.Close)
		if err := pub.Ping(ctx); err != nil {
			// best-effort: el publisher sigue registrado y reintenta en cada evento.
			a.Log.Warn("redis unreachable", map[string]any{"err": err.Error()})
		}
		eventOpts = append(eventOpts, events.WithPublisher(pub))
	}
	a.Events = events.NewService(rs.events, eventOpts...)

	a.References = references.NewService(rs.references,
		references.WithActivity(a.Events),
		references.WithMetrics(a.Metrics),
		references.WithLogger(a.Log.With(map[string]any{"module": "references"})),
	)

	policy := mood.Policy{IgnoresAdoption: cfg.Mood.IgnoresAdoption}

	a.Pets = pets.NewService(rs.pets, a.References,
		pets.WithClock(o.now),
		pets.WithMoodPolicy(policy),
		pets.WithActivity(a.Events),
		pets.WithLogger(a.Log.With(map[string]any{"module": "pets"})),
	)

	loc, err := cfg.Location()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Scheduler, err = moodrefresh.New(rs.pets,
		moodrefresh.WithRunAt(cfg.Scheduler.RunAt),
		moodrefresh.WithLocation(loc),
		moodrefresh.WithPolicy(policy),
		moodrefresh.WithActivity(a.Events),
		moodrefresh.WithMetrics(a.Metrics),
		moodrefresh.WithLogger(a.Log.With(map[string]any{"module": "moodrefresh"})),
		moodrefresh.WithClock(o.now),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) openStorage(ctx context.Context) (repos, error) {
	cfg := a.Config.Storage

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := pg.Open(cfg.DSN)
		if err != nil {
			return repos{}, fmt.Errorf("postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := pg.Migrate(ctx, db); err != nil {
			_ = a.Close()
			return repos{}, fmt.Errorf("postgres migrate: %w", err)
		}
		a.Log.Info("storage ready", map[string]any{"driver": cfg.Driver})
		return repos{
			pets:       pg.NewPetsRepo(db),
			references: pg.NewReferencesRepo(db),
			events:     pg.NewEventsRepo(db),
		}, nil

	case config.DriverSQLite:
		db, err := lite.Open(cfg.SQLitePath)
		if err != nil {
			return repos{}, fmt.Errorf("sqlite: %w", err)
		}
		a.closers = append(a.closers, func() error { return lite.Close(db) })
		a.Log.Info("storage ready", map[string]any{"driver": cfg.Driver, "path": cfg.SQLitePath})
		return repos{
			pets:       lite.NewPetsRepo(db),
			references: lite.NewReferencesRepo(db),
			events:     lite.NewEventsRepo(db),
		}, nil

	case config.DriverMemory, "":
		store := mem.NewStore()
		a.Log.Info("storage ready", map[string]any{"driver": config.DriverMemory})
		return repos{
			pets:       store.Pets(),
			references: store.References(),
			events:     store.Events(),
		}, nil

	default:
		return repos{}, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// EnsureSentinels crea los "Unknown" de cada kind si faltan.
func (a *App) EnsureSentinels(ctx context.Context) error {
	for _, kind := range references.Kinds() {
		if _, err := a.References.GetOrCreateUnknown(ctx, kind); err != nil {
			return fmt.Errorf("ensure unknown %s: %w", kind, err)
		}
	}
	return nil
}

// Close detiene el scheduler y cierra recursos en orden inverso.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
