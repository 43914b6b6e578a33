package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Config holds listener settings.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Server runs an http.Handler until its context is cancelled.
type Server struct {
	cfg     Config
	handler http.Handler
	logger  *slog.Logger
}

func New(cfg Config, handler http.Handler, logger *slog.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}
	return &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}
}

// Run listens on cfg.Addr and blocks until ctx is done and in-flight requests
// have drained or the shutdown timeout expires.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("graceful shutdown failed", slog.Any("error", err))
		}
	}()

	s.logger.Info("server listening", slog.String("addr", ln.Addr().String()))
	if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-shutdownDone
		return err
	}

	<-shutdownDone
	return nil
}
