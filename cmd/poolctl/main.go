package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crm_backend/internal/adapters"
	"crm_backend/internal/cli"
	geofencerepo "crm_backend/internal/geofence/repository"
	geofenceservice "crm_backend/internal/geofence/service"
	poolrepo "crm_backend/internal/pool/repository"
	poolservice "crm_backend/internal/pool/service"
	"crm_backend/internal/scheduler"
	"crm_backend/platform/config"
	"crm_backend/platform/db"
	"crm_backend/platform/logger"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(Version, open)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// open wires the real backends. Logs go to stderr so command output stays clean.
func open(ctx context.Context) (*cli.Services, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.NewWithWriter(cfg.Env, os.Stderr)

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	closers := []func(){pool.Close}

	repo := poolrepo.New(pool)
	geofenceSvc := geofenceservice.New(geofencerepo.New(pool), adapters.NewPoolDefaultRadius(repo), log)

	var lease poolservice.SweepLease
	svc := &cli.Services{
		Config:    poolservice.NewConfigService(repo, log),
		Locations: geofenceSvc,
	}

	if cfg.GetRedisURL() != "" {
		redisClient, err := scheduler.NewRedisClient(cfg)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		lease = scheduler.NewRedisLease(redisClient, scheduler.DefaultSweepLeaseKey, cfg.GetPoolSweepLeaseTTL(), log)

		client, err := scheduler.NewClient(cfg)
		if err != nil {
			pool.Close()
			_ = redisClient.Close()
			return nil, nil, fmt.Errorf("create scheduler client: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		svc.Enqueuer = client
	}
	svc.Sweeper = poolservice.NewSweeper(repo, lease, nil, nil, log)

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return svc, cleanup, nil
}
