// Package handler classifies inbound updates and routes them to command,
// callback, or open-conversation handling.
package handler

import (
	"context"
	"log/slog"
	"slices"

	"github.com/filegate/filegate/internal/service"
	"github.com/filegate/filegate/internal/session"
	"github.com/filegate/filegate/internal/transport"
)

type Router struct {
	tr         transport.Transport
	adminIDs   []int64
	sessions   *session.Tracker
	categories *service.CategoryService
	channels   *service.ChannelService
	timers     *service.TimerService
	access     *service.AccessService
	delivery   *service.DeliveryService
}

func NewRouter(
	tr transport.Transport,
	adminIDs []int64,
	sessions *session.Tracker,
	categories *service.CategoryService,
	channels *service.ChannelService,
	timers *service.TimerService,
	access *service.AccessService,
	delivery *service.DeliveryService,
) *Router {
	return &Router{
		tr:         tr,
		adminIDs:   adminIDs,
		sessions:   sessions,
		categories: categories,
		channels:   channels,
		timers:     timers,
		access:     access,
		delivery:   delivery,
	}
}

func (r *Router) isAdmin(userID int64) bool {
	return slices.Contains(r.adminIDs, userID)
}

// Handle processes one update. Every error is converted to a user-facing
// reply or a log line; nothing escapes to kill the process.
func (r *Router) Handle(ctx context.Context, up transport.Update) {
	defer func() {
		rec := recover()
		if rec != nil {
			slog.Error("handler panic", "user", up.UserID, "panic", rec)
		}
	}()

	switch {
	case up.Callback != nil:
		r.handleCallback(ctx, up)
	case up.Command != "":
		r.handleCommand(ctx, up)
	default:
		r.handleConversation(ctx, up)
	}
}

// reply sends a plain text response, logging send failures.
func (r *Router) reply(ctx context.Context, chatID int64, text string) {
	_, err := r.tr.SendText(ctx, chatID, text, nil)
	if err != nil {
		slog.Error("failed to send reply", "chat", chatID, "error", err)
	}
}
