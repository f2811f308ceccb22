package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bakry/voice-comments/internal/attach"
	"github.com/bakry/voice-comments/internal/comments"
	"github.com/bakry/voice-comments/internal/config"
	"github.com/bakry/voice-comments/internal/datalayer"
	"github.com/bakry/voice-comments/internal/handler"
	"github.com/bakry/voice-comments/internal/plugin"
	"github.com/bakry/voice-comments/internal/reaction"
	"github.com/bakry/voice-comments/internal/repository"
	"github.com/bakry/voice-comments/internal/web"
)

const leaderboardLimit = 10

func runServerForever() error {
	if err := config.LoadEnv(); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("No .env file found, continuing without it")
		} else {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	serverConfig, err := config.NewServerConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}

	pool, err := datalayer.NewPostgresPoolFromEnv()
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}
	defer pool.Close()

	if err := datalayer.MigratePostgres(pool); err != nil {
		return fmt.Errorf("failed to migrate postgres: %w", err)
	}

	minioStorage, err := datalayer.NewMinioStorageFromEnv()
	if err != nil {
		return fmt.Errorf("failed to create minio storage: %w", err)
	}

	if err := minioStorage.EnsureBucket(context.Background()); err != nil {
		return fmt.Errorf("failed to ensure minio bucket: %w", err)
	}

	redisConfig, err := config.NewRedisConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load redis config: %w", err)
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", "error", err)
		}
	}()

	commentRepository := repository.NewPostgresCommentRepository(pool)
	attachments := attach.NewService(
		minioStorage,
		repository.NewPostgresAttachmentRepository(pool),
		repository.NewPostgresCommentMetaRepository(pool),
	)
	reactions := reaction.NewRedisStore(redisClient)

	pipeline := comments.NewPipeline(commentRepository)
	voicePlugin := plugin.New(attachments, reactions, commentRepository)
	voicePlugin.Register(pipeline)

	mux := http.NewServeMux()
	mux.Handle("POST /ajax", handler.NewAjax(
		attachments,
		reactions,
		voicePlugin,
		pipeline,
		serverConfig.MaxUploadBytes,
	))
	mux.Handle("GET /comments/{id}", handler.NewCommentPage(pipeline))
	mux.Handle("GET /leaderboard", handler.NewLeaderboardPage(voicePlugin, leaderboardLimit))
	mux.Handle("GET /assets/", web.Handler())
	mux.HandleFunc("GET /healthz", handler.Healthz)

	server := &http.Server{
		Addr:              serverConfig.Addr,
		Handler:           handler.LogRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", serverConfig.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	select {
	case err := <-errs:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func main() {
	if err := runServerForever(); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
