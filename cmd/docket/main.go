package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docket-dev/docket/db"
	"github.com/docket-dev/docket/internal/auth"
	"github.com/docket-dev/docket/internal/config"
	"github.com/docket-dev/docket/internal/logging"
	"github.com/docket-dev/docket/internal/realtime"
	"github.com/docket-dev/docket/internal/router"
	"github.com/docket-dev/docket/internal/services"
	"github.com/docket-dev/docket/internal/storage"
	"github.com/docket-dev/docket/internal/store"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	bootLogger := logging.New("info", "text")
	config.LoadDotEnv(bootLogger)

	cfg, err := config.Load()

	if err != nil {
		bootLogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg)

	if err != nil {
		return err
	}
	defer db.Close(database)

	if err := db.MigrateDatabase(database, cfg.DBDriver); err != nil {
		return err
	}

	logger.Info("database ready", "driver", cfg.DBDriver)

	objects, err := newObjectStorage(cfg)

	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)

	if err != nil {
		return err
	}

	var revoker auth.Revoker = auth.NoopRevoker{}

	if cfg.RedisURL != "" {
		rdb, err := auth.NewRedisClient(ctx, cfg.RedisURL)

		if err != nil {
			return err
		}
		defer rdb.Close()

		revoker = auth.NewRedisRevoker(rdb)
		logger.Info("token revocation enabled")
	}

	auth.InitProviders(cfg, logger)

	stores := store.New(database)
	hub := realtime.NewHub(cfg.AllowedOrigins, logger)

	engine := router.New(router.Deps{
		Config:  cfg,
		Logger:  logger,
		DB:      database,
		Stores:  stores,
		Tokens:  tokens,
		Revoker: revoker,
		Files:   services.NewFileService(stores.Files, objects, logger),
		Hub:     hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Env)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newObjectStorage(cfg *config.Config) (storage.ObjectStorage, error) {
	if cfg.StorageDriver == config.StorageCloudinary {
		return storage.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	}

	return storage.NewLocal(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
}
