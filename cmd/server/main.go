package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/tablesort/internal/config"
	"github.com/JonMunkholm/tablesort/internal/logging"
	"github.com/JonMunkholm/tablesort/internal/store"
	"github.com/JonMunkholm/tablesort/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	profiles, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Sorting.ProfilesFile != "" {
		n, err := store.LoadYAML(ctx, profiles, cfg.Sorting.ProfilesFile)
		if err != nil {
			return err
		}
		slog.Info("profiles loaded", "file", cfg.Sorting.ProfilesFile, "count", n)
	}

	server, err := web.NewServer(cfg, profiles)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore connects the profile store: PostgreSQL when a database URL is
// configured, memory otherwise.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if !cfg.Database.Enabled() {
		slog.Info("no database configured, profiles are kept in memory")
		return store.NewMemoryStore(), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	pg := store.NewPGStore(pool, slog.Default())
	if err := pg.Init(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	slog.Info("connected to database", "database", poolConfig.ConnConfig.Database)
	return pg, pool.Close, nil
}
