package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelhub/inventory-server/internal/config"
	"github.com/modelhub/inventory-server/internal/database"
	"github.com/modelhub/inventory-server/internal/inventory/handler"
	"github.com/modelhub/inventory-server/internal/inventory/service"
	"github.com/modelhub/inventory-server/internal/server"
	"github.com/modelhub/inventory-server/internal/storage"
	"github.com/modelhub/inventory-server/pkg/logger"
	"github.com/modelhub/inventory-server/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	connectAttempts = 5
	connectBackoff  = time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	// LOG_LEVEL is read again from config once .env is loaded
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	ctx := context.Background()

	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, connectAttempts, connectBackoff,
		func(attempt int, err error) {
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, connectAttempts, err)
		})
	if err != nil {
		logger.Fatalf("could not connect to MongoDB after %d attempts: %v", connectAttempts, err)
	}
	logger.Infof("connected to MongoDB (database=%s)", cfg.MongoDB.Database)

	svc := service.NewMongoService(client, client.Database(cfg.MongoDB.Database), cfg.MongoDB.TxTimeout)

	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	var images handler.ImageStore
	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewImageStore(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("image storage unavailable: %v", err)
		} else {
			images = store
			logger.Infof("image storage: %s/%s", cfg.MinIO.Endpoint, cfg.MinIO.Bucket)
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	r := server.NewRouter(server.Deps{
		Config:  cfg,
		Service: svc,
		Ready:   database.Pinger(client),
		Redis:   redisClient,
		Images:  images,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		logger.Infof("AI model inventory server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Errorf("server: %v", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := client.Disconnect(closeCtx); err != nil {
		logger.Errorf("mongo disconnect: %v", err)
	}
	logger.Info("server stopped")
}
