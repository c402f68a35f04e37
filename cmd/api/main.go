package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"doorsim/adapters/postgres"
	"doorsim/adapters/rng"
	"doorsim/app"
	"doorsim/internal/api"
	"doorsim/internal/config"
	"doorsim/internal/export"
	"doorsim/internal/logging"
	"doorsim/internal/runner"
	"doorsim/internal/statistics"
	"doorsim/ports"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using system environment variables")
	}

	logger := logging.NewDefaultLogger()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}

	var lifetime ports.LifetimeRepository
	if cfg.Database.Enabled {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(context.Background(), db); err != nil {
			logger.Error("failed to migrate database: %v", err)
			os.Exit(1)
		}
		lifetime = postgres.NewLifetimeRepository(db)
		logger.Info("lifetime stats persistence enabled")
	} else {
		logger.Info("no DATABASE_URL configured, lifetime stats persistence disabled")
	}

	yielder := ports.Yielder(runner.GoschedYielder)
	if cfg.Simulation.FastMode {
		yielder = runner.FastYielder
	}

	service := app.NewSimulationService(
		runner.New(rng.NewSeededAdapter(), yielder, logger),
		statistics.NewEngine(0.95),
		export.NewExporter(),
		lifetime,
		logger,
	)
	server := api.NewServer(service, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("API server listening on :%s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		service.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited: %v", err)
		os.Exit(1)
	}
}
