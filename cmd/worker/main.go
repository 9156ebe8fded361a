package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/gostream/internal/config"
	"github.com/hszk-dev/gostream/internal/domain/repository"
	"github.com/hszk-dev/gostream/internal/infrastructure/cache"
	"github.com/hszk-dev/gostream/internal/infrastructure/postgres"
	"github.com/hszk-dev/gostream/internal/infrastructure/queue"
	"github.com/hszk-dev/gostream/internal/infrastructure/storage"
	"github.com/hszk-dev/gostream/internal/pipeline"
	"github.com/hszk-dev/gostream/internal/transcoder"
	"github.com/hszk-dev/gostream/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Worker.TempDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	// Initialize infrastructure clients
	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MinIO: %w", err)
	}
	logger.Info("connected to MinIO")

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	// Initialize repositories, cache and transcoding backends
	videoRepo := postgres.NewVideoRepository(pgClient.Pool())
	watchHistoryRepo := postgres.NewWatchHistoryRepository(pgClient.Pool())
	videoCache := cache.NewRedisVideoCache(redisClient)
	rateGate := cache.NewRateGate(redisClient)

	prober := transcoder.NewFFprobeProber("ffprobe")
	ffmpeg := transcoder.NewFFmpegTranscoder(transcoder.DefaultFFmpegConfig())

	orchestrator := pipeline.NewOrchestrator(
		videoRepo, storageClient, queueClient, videoCache,
		prober, ffmpeg, ffmpeg,
		pipeline.Config{TempDir: cfg.Worker.TempDir, PresignTTL: cfg.Presign.TTLSeconds},
		logger,
	)

	exporter := usecase.NewSnapshotExporter(videoRepo, watchHistoryRepo, storageClient, rateGate, cfg.Pipeline.ExportInterval)

	pool := pipeline.NewWorkerPool(queueClient, orchestrator, exporter, pipeline.WorkerPoolConfig{
		Concurrency: cfg.Worker.Concurrency,
	})

	scheduler := pipeline.NewScheduler(logger)
	for _, entity := range exporter.ExportEntityNames() {
		name := entity
		err := scheduler.RegisterPeriodic(name, cfg.Pipeline.ExportInterval, func(ctx context.Context) error {
			return queueClient.Publish(ctx, repository.Job{
				Kind:       repository.KindExportSnapshot,
				EntityName: name,
			})
		})
		if err != nil {
			return fmt.Errorf("register export schedule for %s: %w", name, err)
		}
	}

	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("start worker pool: %w", err)
	}
	scheduler.Start()
	logger.Info("worker started", slog.Int("concurrency", cfg.Worker.Concurrency))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down worker", slog.String("signal", sig.String()))

	schedulerStopped := scheduler.Stop()
	<-schedulerStopped.Done()

	cancel()

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		logger.Info("worker stopped")
	case <-time.After(cfg.Worker.ShutdownTimeout):
		logger.Warn("worker shutdown timed out waiting for in-flight jobs")
	}

	return nil
}
