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

	"crm_backend/internal/adapters"
	"crm_backend/internal/events"
	"crm_backend/internal/geofence"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/http/router"
	"crm_backend/internal/leads"
	"crm_backend/internal/maps"
	"crm_backend/internal/pool"
	poolrepo "crm_backend/internal/pool/repository"
	poolservice "crm_backend/internal/pool/service"
	"crm_backend/internal/scheduler"
	"crm_backend/migrations"
	"crm_backend/platform/config"
	"crm_backend/platform/db"
	"crm_backend/platform/logger"
	"crm_backend/platform/metrics"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var dbPool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		dbPool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer dbPool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, dbPool, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	appMetrics := metrics.New()

	// Shared validator instance for dependency injection
	val := validator.New()

	lease, closeLease := initSweepLease(cfg, log)
	if closeLease != nil {
		defer closeLease()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Geofence reads its default radius straight from the pool store so the
	// two modules can be built in order.
	geofenceModule := geofence.NewModule(dbPool, adapters.NewPoolDefaultRadius(poolrepo.New(dbPool)), val, log)

	poolModule := pool.NewModule(dbPool, pool.Deps{
		Locations: adapters.NewGeofenceLocations(geofenceModule.Service()),
		Lease:     lease,
		EventBus:  eventBus,
		Metrics:   appMetrics,
	}, val, cfg, log)

	leadsModule := leads.NewModule(dbPool, eventBus, val, cfg, log)
	mapsModule := maps.NewModule(cfg, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(dbPool),
		Metrics:  appMetrics,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			poolModule,
			geofenceModule,
			mapsModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Without Redis there is no asynq worker, so the API sweeps in-process.
	if cfg.GetRedisURL() == "" {
		loop := scheduler.NewSweepLoop(poolModule.Sweeper(), log, scheduler.SweepInterval(cfg.GetPoolSweepCron()))
		g.Go(func() error {
			loop.Run(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
}

// initSweepLease returns a nil lease when Redis is not configured; the sweep
// stays correct without it.
func initSweepLease(cfg *config.Config, log *logger.Logger) (poolservice.SweepLease, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; sweep lease disabled")
		return nil, nil
	}

	client, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis client for sweep lease", "error", err)
		return nil, nil
	}

	return scheduler.NewRedisLease(client, scheduler.DefaultSweepLeaseKey, cfg.GetPoolSweepLeaseTTL(), log), func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
