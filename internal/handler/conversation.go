package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/filegate/filegate/internal/model"
	"github.com/filegate/filegate/internal/repository"
	"github.com/filegate/filegate/internal/service"
	"github.com/filegate/filegate/internal/session"
	"github.com/filegate/filegate/internal/transport"
)

// handleConversation routes a non-command message into the sender's open
// conversation, if any. Messages with no open conversation are ignored.
func (r *Router) handleConversation(ctx context.Context, up transport.Update) {
	if r.sessions.HasUpload(up.UserID) && (up.File != nil || up.HasMedia) {
		r.uploadInput(ctx, up)
		return
	}

	text := strings.TrimSpace(up.Text)
	if text == "" {
		return
	}

	if _, ok := r.sessions.TimerCategory(up.UserID); ok {
		r.timerInput(ctx, up, text)
		return
	}

	r.channelInput(ctx, up, text)
}

// uploadInput accepts one file into the open upload. Unsupported kinds are
// rejected without touching the session.
func (r *Router) uploadInput(ctx context.Context, up transport.Update) {
	if up.File == nil || !model.ValidKind(up.File.Kind) {
		r.reply(ctx, up.ChatID, "❌ Unsupported file type.")
		return
	}

	draft := model.File{
		FileID:   up.File.FileID,
		FileName: up.File.FileName,
		FileSize: up.File.FileSize,
		FileKind: up.File.Kind,
		Caption:  up.File.Caption,
	}

	count, ok := r.sessions.AppendFile(up.UserID, draft)
	if !ok {
		return
	}
	r.reply(ctx, up.ChatID, fmt.Sprintf("✅ File received! (total: %d)", count))
}

// timerInput applies one numeric turn to the open timer entry: -1 clears
// the override, 0 disables, positive values set seconds. Anything else
// keeps the conversation waiting.
func (r *Router) timerInput(ctx context.Context, up transport.Update, text string) {
	categoryID, _ := r.sessions.TimerCategory(up.UserID)

	seconds, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		r.reply(ctx, up.ChatID, "❌ Please send a number.")
		return
	}

	err = r.timers.SetOverride(categoryID, seconds)
	if err == service.ErrInvalidTimer {
		r.reply(ctx, up.ChatID, "❌ Please send -1, 0, or a positive number of seconds.")
		return
	}
	if err != nil {
		slog.Error("failed to set category timer", "category", categoryID, "error", err)
		r.sessions.FinishTimer(up.UserID)
		r.reply(ctx, up.ChatID, "❌ Failed to set the timer.")
		return
	}

	r.sessions.FinishTimer(up.UserID)
	switch {
	case seconds == service.ClearOverride:
		r.reply(ctx, up.ChatID, "✅ Custom timer removed, the default timer applies.")
	case seconds == 0:
		r.reply(ctx, up.ChatID, "✅ Timer disabled.")
	default:
		r.reply(ctx, up.ChatID, fmt.Sprintf("✅ Custom timer set to %d seconds.", seconds))
	}

	r.categoryMenu(ctx, up.ChatID, categoryID)
}

// channelInput applies one text turn to the open channel registration.
func (r *Router) channelInput(ctx context.Context, up transport.Update, text string) {
	state, done, open := r.sessions.ChannelInput(up.UserID, text)
	if !open {
		return
	}

	if !done {
		if state.Stage == session.StageName {
			r.reply(ctx, up.ChatID, "✅ Got the id! Now send the channel name:")
		} else {
			r.reply(ctx, up.ChatID, "✅ Got the name! Now send the invite link:")
		}
		return
	}

	err := r.channels.Add(state.ChannelID, state.Name, state.Link)
	if err == repository.ErrDuplicateChannel {
		r.reply(ctx, up.ChatID, "❌ That channel is already registered.")
		return
	}
	if err != nil {
		slog.Error("failed to add channel", "channel", state.ChannelID, "error", err)
		r.reply(ctx, up.ChatID, "❌ Failed to add the channel.")
		return
	}
	r.reply(ctx, up.ChatID, "✅ Channel added!")
}
