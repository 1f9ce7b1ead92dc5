package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/filegate/filegate/internal/model"
	"github.com/filegate/filegate/internal/repository"
	"github.com/filegate/filegate/internal/transport"
)

// categoryAccess is the entry point for a category deep link. Admins get
// the management menu; everyone else passes the membership gate first.
func (r *Router) categoryAccess(ctx context.Context, up transport.Update, categoryID string) {
	if r.isAdmin(up.UserID) {
		r.categoryMenu(ctx, up.ChatID, categoryID)
		return
	}

	channels, err := r.channels.All()
	if err != nil {
		slog.Error("failed to load channels", "error", err)
		r.reply(ctx, up.ChatID, "❌ Something went wrong. Try again later.")
		return
	}

	granted, missing := r.access.Check(ctx, up.UserID, channels)
	if granted {
		r.deliverCategory(ctx, up.ChatID, categoryID)
		return
	}

	_, err = r.tr.SendText(ctx, up.ChatID,
		"⚠️ Join the channels below to get access:",
		membershipKeyboard(missing, categoryID))
	if err != nil {
		slog.Error("failed to send membership prompt", "chat", up.ChatID, "error", err)
	}
}

// membershipKeyboard lists one URL button per missing channel plus the
// re-check button.
func membershipKeyboard(missing []model.Channel, categoryID string) transport.Keyboard {
	var kb transport.Keyboard
	for _, ch := range missing {
		kb = append(kb, []transport.Button{{Text: "📢 " + ch.DisplayName, URL: ch.InviteLink}})
	}
	kb = append(kb, []transport.Button{{Text: "✅ I joined", Data: "check_" + categoryID}})
	return kb
}

// deliverCategory releases a category's files with the effective timer.
func (r *Router) deliverCategory(ctx context.Context, chatID int64, categoryID string) {
	cat, err := r.categories.ByID(categoryID)
	if err == repository.ErrCategoryNotFound {
		r.reply(ctx, chatID, "❌ Nothing to show here.")
		return
	}
	if err != nil {
		slog.Error("failed to load category", "category", categoryID, "error", err)
		r.reply(ctx, chatID, "❌ Failed to load the files.")
		return
	}
	if len(cat.Files) == 0 {
		r.reply(ctx, chatID, "❌ Nothing to show here.")
		return
	}

	timerSeconds, err := r.timers.Effective(categoryID)
	if err != nil {
		slog.Error("failed to resolve timer", "category", categoryID, "error", err)
		timerSeconds = 0
	}

	r.delivery.Deliver(ctx, chatID, cat, timerSeconds)
}

// categoryMenu shows the admin management view for a category.
func (r *Router) categoryMenu(ctx context.Context, chatID int64, categoryID string) {
	cat, err := r.categories.ByID(categoryID)
	if err == repository.ErrCategoryNotFound {
		r.reply(ctx, chatID, "❌ Category not found.")
		return
	}
	if err != nil {
		slog.Error("failed to load category", "category", categoryID, "error", err)
		r.reply(ctx, chatID, "❌ Failed to show the menu.")
		return
	}

	text := fmt.Sprintf(
		"📂 Category: %s\n📦 Files: %d\n⏱ Timer: %s\n\nPick an action:",
		cat.Name, len(cat.Files), r.timerStatus(categoryID),
	)

	kb := transport.Keyboard{
		{{Text: "📁 View files", Data: "view_" + categoryID}},
		{{Text: "➕ Add files", Data: "add_" + categoryID}},
		{{Text: "⏱ Set timer", Data: "timer_" + categoryID}},
		{{Text: "🗑 Delete category", Data: "delcat_" + categoryID}},
	}

	_, err = r.tr.SendText(ctx, chatID, text, kb)
	if err != nil {
		slog.Error("failed to send category menu", "chat", chatID, "error", err)
	}
}

// timerStatus renders the override/default standing for the menu.
func (r *Router) timerStatus(categoryID string) string {
	override, err := r.timers.Override(categoryID)
	if err != nil {
		return "unknown"
	}
	if override == nil {
		seconds, err := r.timers.Default()
		if err != nil || seconds == 0 {
			return "default (disabled)"
		}
		return fmt.Sprintf("default (%d seconds)", seconds)
	}
	if *override == 0 {
		return "disabled"
	}
	return fmt.Sprintf("custom (%d seconds)", *override)
}
