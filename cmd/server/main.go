package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	pgxadapter "github.com/oesukam/r-incident-query-webapp/adapters/pgx"
	"github.com/oesukam/r-incident-query-webapp/config"
	"github.com/oesukam/r-incident-query-webapp/extract"
	"github.com/oesukam/r-incident-query-webapp/server"
	"github.com/oesukam/r-incident-query-webapp/threatintel"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Could not load .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	setupLogging(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := threatintel.NewClient(cfg.Upstream)

	store, cleanup, err := newExtractionStore(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to set up extraction store")
	}
	defer cleanup()

	srv := server.New(cfg, client, extract.NewService(client, store))

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down")
		if err := srv.Shutdown(); err != nil {
			logrus.WithError(err).Error("Shutdown failed")
		}
	}()

	logrus.WithField("addr", cfg.Server.Addr).Info("Starting incident query service")
	if err := srv.Listen(cfg.Server.Addr); err != nil {
		logrus.WithError(err).Fatal("Server stopped")
	}
}

// newExtractionStore picks Postgres when a database URL is configured, else
// the in-process TTL cache.
func newExtractionStore(ctx context.Context, cfg *config.Config) (extract.Store, func(), error) {
	if cfg.Database.URL == "" {
		store := extract.NewInMemoryStore(extract.StoreConfig{
			TTL:     cfg.Cache.ExtractionTTL,
			MaxSize: cfg.Cache.ExtractionMaxSize,
		})
		return store, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}

	store := pgxadapter.NewStore(pool, cfg.Cache.ExtractionTTL)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	logrus.Info("Using Postgres extraction store")
	return store, pool.Close, nil
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
