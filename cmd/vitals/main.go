// Command vitals serves the patient/provider portal API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lborres/vitals"
	fiberadapter "github.com/lborres/vitals/adapters/fiber"
	"github.com/lborres/vitals/adapters/memory"
	pgxadapter "github.com/lborres/vitals/adapters/pgx"
	"github.com/lborres/vitals/adapters/sqlite"
	"github.com/lborres/vitals/internal/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("storage ready", slog.String("store", cfg.Store()))

	app := newApp(cfg)

	if _, err := vitals.New(vitals.Config{
		Secret:   cfg.JWTSecret,
		Database: store,
		HTTP:     fiberadapter.New(app, log),
		CacheAdapter: vitals.NewInMemoryCache(vitals.CacheConfig{
			TTL:     cfg.CacheTTL,
			MaxSize: cfg.CacheSize,
		}),
	}); err != nil {
		return fmt.Errorf("could not create vitals instance: %w", err)
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", cfg.Addr))
		errs <- app.Listen(cfg.Addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func newApp(cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "vitals"})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time}|${status}|${latency}|${ip}|${method}|${path}|${error}\n",
		TimeFormat: "2006/01/02 15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))

	return app
}

// openStore returns the selected storage backend and a func releasing it.
func openStore(ctx context.Context, cfg config.Config) (vitals.StorageAdapter, func(), error) {
	switch cfg.Store() {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		adapter := pgxadapter.New(pool)
		if err := adapter.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return adapter, pool.Close, nil

	case config.StoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	default:
		return memory.New(), func() {}, nil
	}
}
