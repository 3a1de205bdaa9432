package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"

	adapterlogger "backoffice-api/internal/adapters/logger"
	"backoffice-api/internal/app"
	"backoffice-api/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		adapterlogger.New("error").Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	logger := adapterlogger.New(cfg.LogLevel)
	if cfg.EphemeralSecret {
		logger.Warn(ctx, "JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}
	xray.Configure(xray.Config{LogLevel: "error"})

	core, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to open database", "error", err)
		os.Exit(1)
	}
	defer core.Close()
	if err := core.Seed(ctx); err != nil {
		logger.Error(ctx, "failed to seed catalog", "error", err)
		os.Exit(1)
	}

	e, err := core.Router(ctx, nil)
	if err != nil {
		logger.Error(ctx, "failed to build router", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info(ctx, "starting http server", "port", cfg.Port, "env", cfg.AppEnv)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "graceful shutdown failed", "error", err)
	}
	logger.Info(shutdownCtx, "http server stopped")
}
