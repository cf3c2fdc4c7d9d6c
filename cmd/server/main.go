package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/hab-telemetry/rockblock-receiver/internal/api"
	"github.com/hab-telemetry/rockblock-receiver/internal/cache"
	"github.com/hab-telemetry/rockblock-receiver/internal/config"
	"github.com/hab-telemetry/rockblock-receiver/internal/service"
	"github.com/hab-telemetry/rockblock-receiver/internal/storage"
	"github.com/hab-telemetry/rockblock-receiver/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.Server.Mode == "debug" {
		logger.SetLevel("debug")
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Storage.Bucket == "" {
		logger.Log.Fatal().Msg("STORAGE_BUCKET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize object storage
	store, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize object storage")
	}
	if s3, ok := store.(*storage.S3Client); ok {
		if err := s3.EnsureBucket(ctx); err != nil {
			logger.Log.Fatal().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("Failed to ensure bucket")
		}
	}

	// Optional latest-position cache
	var latest *cache.LatestCache
	if cfg.Cache.Enabled {
		latest, err = cache.NewLatestCache(cfg.Cache)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Latest-position cache unavailable, continuing without it")
			latest = nil
		} else {
			defer latest.Close()
		}
	}

	// Initialize services and HTTP server
	messageService := service.NewMessageService(store, latest)
	router := api.NewRouter(&api.Services{Messages: messageService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("backend", cfg.Storage.Backend).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server error")
	}

	logger.Log.Info().Msg("Server exiting")
}
