package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deedcheck/internal/app"
	"deedcheck/internal/config"
	"deedcheck/internal/handler"
	"deedcheck/internal/logger"
	"deedcheck/internal/metrics"
	"deedcheck/internal/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log, app.Options{
		WithExtractor: true,
		Metrics:       metrics.New(nil),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	// Initialize handlers
	deedH := handler.NewDeedHandler(a.Service, a.Batch, log)
	// A nil *sqlx.DB must not reach the handler as a non-nil Pinger.
	var healthH *handler.HealthHandler
	if a.DB != nil {
		healthH = handler.NewHealthHandler(a.DB, a.Reference.Len())
	} else {
		healthH = handler.NewHealthHandler(nil, a.Reference.Len())
	}

	// Setup router
	r := router.Setup(log, cfg.Server.AllowedOrigins, deedH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
