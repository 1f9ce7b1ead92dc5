package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/filegate/filegate/internal/repository"
	"github.com/filegate/filegate/internal/transport"
)

func (r *Router) handleCallback(ctx context.Context, up transport.Update) {
	cb := up.Callback

	err := r.tr.AnswerCallback(ctx, cb.ID)
	if err != nil {
		slog.Warn("failed to answer callback", "error", err)
	}

	// Membership re-check is the one public button.
	if strings.HasPrefix(cb.Data, "check_") {
		r.recheckMembership(ctx, up, strings.TrimPrefix(cb.Data, "check_"))
		return
	}

	if !r.isAdmin(up.UserID) {
		r.edit(ctx, up, "❌ Access denied.", nil)
		return
	}

	switch {
	case strings.HasPrefix(cb.Data, "view_"):
		r.deliverCategory(ctx, up.ChatID, strings.TrimPrefix(cb.Data, "view_"))

	case strings.HasPrefix(cb.Data, "add_"):
		categoryID := strings.TrimPrefix(cb.Data, "add_")
		r.sessions.StartUpload(up.UserID, categoryID)
		r.edit(ctx, up, "📤 Send me the files.\nTo finish: /finish_upload\nTo cancel: /cancel", nil)

	case strings.HasPrefix(cb.Data, "timer_"):
		categoryID := strings.TrimPrefix(cb.Data, "timer_")
		r.sessions.StartTimer(up.UserID, categoryID)
		r.edit(ctx, up, "⏱ Send the timer value in seconds:\n• 0 to disable\n• -1 to use the default timer\n• a positive number of seconds", nil)

	case strings.HasPrefix(cb.Data, "delcat_"):
		r.deleteCategory(ctx, up, strings.TrimPrefix(cb.Data, "delcat_"))
	}
}

// recheckMembership re-runs the gate after the user claims to have joined.
// The original prompt message is edited in place either way.
func (r *Router) recheckMembership(ctx context.Context, up transport.Update, categoryID string) {
	channels, err := r.channels.All()
	if err != nil {
		slog.Error("failed to load channels", "error", err)
		r.edit(ctx, up, "❌ Something went wrong. Try again later.", nil)
		return
	}

	granted, missing := r.access.Check(ctx, up.UserID, channels)
	if !granted {
		r.edit(ctx, up, "⚠️ You still haven't joined these channels:", membershipKeyboard(missing, categoryID))
		return
	}

	r.edit(ctx, up, "✅ Membership confirmed! Preparing your files...", nil)
	r.deliverCategory(ctx, up.ChatID, categoryID)
}

func (r *Router) deleteCategory(ctx context.Context, up transport.Update, categoryID string) {
	cat, err := r.categories.ByID(categoryID)
	if err == repository.ErrCategoryNotFound {
		r.edit(ctx, up, "❌ Category not found.", nil)
		return
	}
	if err != nil {
		slog.Error("failed to load category", "category", categoryID, "error", err)
		r.edit(ctx, up, "❌ Failed to delete the category.", nil)
		return
	}

	err = r.categories.Delete(categoryID)
	if err != nil {
		slog.Error("failed to delete category", "category", categoryID, "error", err)
		r.edit(ctx, up, "❌ Failed to delete the category.", nil)
		return
	}

	r.edit(ctx, up, fmt.Sprintf("✅ Category '%s' deleted.", cat.Name), nil)
}

// edit rewrites the message the callback button was attached to.
func (r *Router) edit(ctx context.Context, up transport.Update, text string, kb transport.Keyboard) {
	err := r.tr.EditMessageText(ctx, up.ChatID, up.Callback.MessageID, text, kb)
	if err != nil {
		slog.Error("failed to edit message", "chat", up.ChatID, "error", err)
	}
}
