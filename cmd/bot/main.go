package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/filegate/filegate/internal/app"
	"github.com/filegate/filegate/internal/config"
	"github.com/filegate/filegate/internal/logger"
	"github.com/filegate/filegate/internal/server"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := a.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Liveness endpoint
	go func() {
		slog.Info("health server starting", "port", cfg.Port)
		err := http.ListenAndServe(":"+cfg.Port, server.Health())
		if err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	if cfg.KeepAliveURL != "" {
		go server.KeepAlive(ctx, cfg.KeepAliveURL, cfg.KeepAliveInterval)
	}

	slog.Info("bot starting", "env", cfg.AppEnv, "username", a.Telegram.Me().Username)

	// One logical worker drains the update stream; scheduled deletions run
	// as detached timers owned by the delivery service.
	for update := range a.Telegram.Updates(ctx) {
		a.Router.Handle(ctx, update)
	}

	slog.Info("bot stopped")
}
