package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lykerclassy/lipana-mpesa-integration/internal/config"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/logger"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/server"
)

func main() {
	log, cleanup := logger.NewLogger()
	defer cleanup()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Error("failed to load configuration", logger.ErrorField("error", err))
		os.Exit(1)
	}

	srv, err := server.NewServer(cfg, log)
	if err != nil {
		log.Error("failed to create server", logger.ErrorField("error", err))
		os.Exit(1)
	}

	go func() {
		log.Info("starting server", logger.StringField("port", cfg.Port))
		if err := srv.Run("0.0.0.0:" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", logger.ErrorField("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", logger.ErrorField("error", err))
	}

	log.Info("server exited")
}
