package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sharedcanvas-server/api"
	"sharedcanvas-server/config"
	"sharedcanvas-server/discovery"
	"sharedcanvas-server/hub"
	"sharedcanvas-server/protocol"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)

	registry := hub.New(hub.WithEvictAfter(cfg.RoomEvictAfter))
	defer registry.Close()
	handler := protocol.NewHandler(registry)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.NewRouter(registry, handler, cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if cfg.MDNSEnabled {
		adv, err := discovery.Advertise(cfg.MDNSInstance, cfg.PortNumber())
		if err != nil {
			slog.Warn("mdns disabled", "error", err)
		} else {
			defer adv.Shutdown()
		}
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "origins", cfg.AllowedOrigins, "evictAfter", cfg.RoomEvictAfter)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
