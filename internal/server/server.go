// Package server exposes the liveness endpoint and the keep-alive pinger
// that stops free-tier hosts from idling the process out.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Health returns the liveness handler: GET /health -> 200 "running".
func Health() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("running"))
	})
	return mux
}

// KeepAlive pings url every interval until ctx is cancelled. Failures are
// logged and never fatal.
func KeepAlive(ctx context.Context, url string, interval time.Duration) {
	client := &http.Client{Timeout: 30 * time.Second}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ping(ctx, client, url)
		}
	}
}

func ping(ctx context.Context, client *http.Client, url string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Warn("keep-alive request build failed", "url", url, "error", err)
		return
	}

	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("keep-alive ping failed", "url", url, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		slog.Info("keep-alive ping sent")
	} else {
		slog.Warn("keep-alive ping rejected", "url", url, "status", resp.StatusCode)
	}
}
