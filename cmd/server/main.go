package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"media-scribe/internal/config"
	"media-scribe/internal/httpapi"
	"media-scribe/internal/logger"
	"media-scribe/internal/server"
	"media-scribe/internal/service"
)

func main() {
	cfg := config.MustLoad()

	appLog := logger.New(logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		Output:     os.Stderr,
		AddSource:  cfg.Log.AddSource,
		JSONFormat: cfg.Log.JSON,
	})

	svc, err := service.New(cfg, service.Options{Logger: appLog})
	if err != nil {
		log.Fatalf("bootstrap service: %v", err)
	}
	defer svc.Close()

	handler := httpapi.NewRouter(svc, httpapi.Options{
		Logger:         appLog,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	})
	srv := server.New(server.Config{
		Addr:            cfg.HTTP.Addr,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, handler, appLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		appLog.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}
