package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bandobast/bandobast-backend/internal/alerts"
	"github.com/bandobast/bandobast-backend/internal/config"
	"github.com/bandobast/bandobast-backend/internal/db"
	"github.com/bandobast/bandobast-backend/internal/middleware"
	"github.com/bandobast/bandobast-backend/internal/monitor"
	"github.com/bandobast/bandobast-backend/internal/observability"
	"github.com/bandobast/bandobast-backend/internal/seeds"
	"github.com/bandobast/bandobast-backend/internal/tasks"
	"github.com/bandobast/bandobast-backend/internal/tracker"
	"github.com/bandobast/bandobast-backend/internal/zones"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

// app holds everything the HTTP surface is built from.
type app struct {
	log     zerolog.Logger
	opts    *config.Options
	metrics *observability.Collector

	service *monitor.Service
	store   zones.Store
	journal alerts.Journal
	board   *tasks.Board
}

func main() {
	_ = godotenv.Load(".env.local")

	opts, err := config.Parse(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := opts.Logger.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, log); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func run(ctx context.Context, opts *config.Options, log zerolog.Logger) error {
	var gdb *gorm.DB
	if opts.DatabaseURL != "" {
		var err error
		gdb, err = db.Connect(opts.DatabaseURL, log)
		if err != nil {
			return err
		}
		if err := zones.Migrate(gdb); err != nil {
			return fmt.Errorf("migrate zones: %w", err)
		}
		if err := alerts.Migrate(gdb); err != nil {
			return fmt.Errorf("migrate zone events: %w", err)
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set, zones and events are kept in memory only")
	}

	a, err := newApp(ctx, opts, log, gdb, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	if opts.SeedDemo {
		if err := seeds.SeedAll(a.service, a.board, time.Now().UTC()); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              opts.ListenAddr(),
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Int("zones", a.service.Zones.Len()).
			Bool("database", gdb != nil).
			Msg("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newApp builds the monitor and its observers. gdb may be nil.
func newApp(ctx context.Context, opts *config.Options, log zerolog.Logger, gdb *gorm.DB, reg prometheus.Registerer) (*app, error) {
	metrics, err := observability.NewCollector(reg)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	a := &app{log: log, opts: opts, metrics: metrics, board: tasks.NewBoard()}

	registry := zones.NewRegistry()
	registry.OnChange(metrics.SetZoneCount)

	if gdb != nil {
		a.store = zones.GormStore{DB: gdb}
		a.journal = alerts.GormJournal{DB: gdb}
	} else {
		a.journal = alerts.NewMemoryJournal(opts.JournalCapacity)
	}

	if err := loadZones(ctx, registry, a.store, opts.ZonesFile, log); err != nil {
		return nil, err
	}

	dispatcher := monitor.NewDispatcher(log, metrics)
	dispatcher.Register("alert-log", monitor.AlertLogger(log))
	dispatcher.Register("journal", a.journal)

	a.service = monitor.New(registry, tracker.New(), dispatcher, metrics)
	return a, nil
}

// loadZones fills the registry from the store, then the zones file, then the
// built-in default, stopping at the first source that yields zones. Zones
// read from the file are written to the store.
func loadZones(ctx context.Context, registry *zones.Registry, store zones.Store, file string, log zerolog.Logger) error {
	if store != nil {
		zs, err := store.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("load zones: %w", err)
		}
		if len(zs) > 0 {
			log.Info().Int("count", len(zs)).Msg("Loaded zones from database")
			return register(registry, zs)
		}
	}

	source := "defaults"
	zs := config.DefaultZones()
	if file != "" {
		fromFile, err := config.LoadZones(file)
		if err != nil {
			return fmt.Errorf("zones file: %w", err)
		}
		source, zs = file, fromFile
	}

	if store != nil {
		for _, z := range zs {
			if err := store.Save(ctx, z); err != nil {
				return fmt.Errorf("save zone %s: %w", z.ID, err)
			}
		}
	}
	log.Info().Int("count", len(zs)).Str("source", source).Msg("Loaded zones")
	return register(registry, zs)
}

func register(registry *zones.Registry, zs []zones.Zone) error {
	for _, z := range zs {
		if err := registry.RegisterZone(z); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORSMiddleware(a.opts.CORSOrigins))
	r.Use(middleware.RequestLogger(a.log, a.metrics))

	limiter := middleware.NewRateLimiter(a.opts.PositionRate, a.opts.PositionBurst, middleware.URLParamKey("id"))

	r.Get("/", RootHandler)
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	r.Mount("/zones", zones.SetupRoutes(&zones.Handler{Registry: a.service.Zones, Store: a.store, Log: a.log}))
	r.Mount("/entities", monitor.SetupRoutes(&monitor.Handler{Service: a.service, Log: a.log}, limiter.Handler))
	r.Mount("/events", alerts.SetupRoutes(&alerts.Handler{Journal: a.journal, Log: a.log}))
	r.Mount("/tasks", tasks.SetupRoutes(&tasks.Handler{Board: a.board, Tracker: a.service.Tracker, Log: a.log}))

	return r
}
