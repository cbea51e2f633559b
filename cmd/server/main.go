package main

import (
	"centre-block/internal/config"
	"centre-block/internal/database"
	"centre-block/internal/logger"
	"centre-block/internal/routes"
	"centre-block/internal/services"
	"context"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	db, err := database.New(cfg.DatabaseURL, cfg)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userAgent := "centre-block/1.0; " + cfg.PublicURL
	deps := routes.Deps{
		Proxy:   services.NewDirectoryClient(cfg.UpstreamURL, userAgent, cfg.ProxyTimeout, logr.Named("proxy")),
		Publish: services.NewDirectoryClient(cfg.UpstreamURL, userAgent, cfg.UpstreamTimeout, logr.Named("publish")),
		Blocks:  services.NewBlockService(db),
	}

	r := routes.NewRouter(deps, cfg, logr)

	// Writes must outlive the slowest upstream call a render can make.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ProxyTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started",
			zap.String("port", cfg.Port),
			zap.String("upstream", cfg.UpstreamURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Fatal("server forced to shutdown", zap.Error(err))
	}

	_ = db.Close()
	logr.Info("server exited gracefully")
}
