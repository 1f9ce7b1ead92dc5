package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/filegate/filegate/internal/repository"
	"github.com/filegate/filegate/internal/transport"
)

const adminHelp = `👋 Hello admin!

Commands:
/new_category - create a category
/upload - start a file upload
/finish_upload - finish the upload
/categories - list categories
/timer - set the default timer
/add_channel - add a required channel
/remove_channel - remove a channel
/channels - list channels`

func (r *Router) handleCommand(ctx context.Context, up transport.Update) {
	// /start is the only public command; a cat_ argument routes straight
	// into the access flow.
	if up.Command == "start" {
		if strings.HasPrefix(up.Args, "cat_") {
			r.categoryAccess(ctx, up, strings.TrimPrefix(up.Args, "cat_"))
			return
		}
		if r.isAdmin(up.UserID) {
			r.reply(ctx, up.ChatID, adminHelp)
		} else {
			r.reply(ctx, up.ChatID, "👋 Hello! Use a category link to receive files.")
		}
		return
	}

	if !r.isAdmin(up.UserID) {
		r.reply(ctx, up.ChatID, "❌ Access denied.")
		return
	}

	switch up.Command {
	case "new_category":
		r.newCategory(ctx, up)
	case "upload":
		r.startUpload(ctx, up)
	case "finish_upload":
		r.finishUpload(ctx, up)
	case "cancel":
		r.cancel(ctx, up)
	case "categories":
		r.listCategories(ctx, up)
	case "timer":
		r.setDefaultTimer(ctx, up)
	case "add_channel":
		r.addChannel(ctx, up)
	case "remove_channel":
		r.removeChannel(ctx, up)
	case "channels":
		r.listChannels(ctx, up)
	}
}

func (r *Router) newCategory(ctx context.Context, up transport.Update) {
	name := strings.TrimSpace(up.Args)
	if name == "" {
		r.reply(ctx, up.ChatID, "Please provide a category name.\nExample: /new_category my files")
		return
	}

	cat, err := r.categories.Create(name, up.UserID)
	if err == repository.ErrDuplicateCategory {
		r.reply(ctx, up.ChatID, "❌ A category with that name already exists.")
		return
	}
	if err != nil {
		slog.Error("failed to create category", "name", name, "error", err)
		r.reply(ctx, up.ChatID, "❌ Failed to create the category.")
		return
	}

	r.reply(ctx, up.ChatID, fmt.Sprintf(
		"✅ Category '%s' created!\n\n🔗 Category link:\n%s\n\nTo upload files:\n/upload %s",
		cat.Name, r.categories.Link(cat.ID), cat.ID,
	))
}

func (r *Router) startUpload(ctx context.Context, up transport.Update) {
	categoryID := strings.TrimSpace(up.Args)
	if categoryID == "" {
		r.reply(ctx, up.ChatID, "Please provide a category id.\nExample: /upload CAT_ID")
		return
	}

	_, err := r.categories.ByID(categoryID)
	if err == repository.ErrCategoryNotFound {
		r.reply(ctx, up.ChatID, "❌ Category not found.")
		return
	}
	if err != nil {
		slog.Error("failed to load category", "category", categoryID, "error", err)
		r.reply(ctx, up.ChatID, "❌ Failed to load the category.")
		return
	}

	r.sessions.StartUpload(up.UserID, categoryID)
	r.reply(ctx, up.ChatID, "📤 Upload mode is on! Send me the files.\nTo finish: /finish_upload\nTo cancel: /cancel")
}

func (r *Router) finishUpload(ctx context.Context, up transport.Update) {
	state, ok := r.sessions.FinishUpload(up.UserID)
	if !ok {
		r.reply(ctx, up.ChatID, "❌ No upload in progress.")
		return
	}
	if len(state.Files) == 0 {
		r.reply(ctx, up.ChatID, "❌ No files received.")
		return
	}

	count, err := r.categories.AddFiles(state.CategoryID, state.Files)
	if err != nil {
		slog.Error("failed to store upload", "category", state.CategoryID, "error", err)
		r.reply(ctx, up.ChatID, "❌ Failed to store the files.")
		return
	}

	r.reply(ctx, up.ChatID, fmt.Sprintf(
		"✅ %d file(s) stored!\n\n🔗 Category link:\n%s",
		count, r.categories.Link(state.CategoryID),
	))
}

func (r *Router) cancel(ctx context.Context, up transport.Update) {
	r.sessions.Cancel(up.UserID)
	r.reply(ctx, up.ChatID, "❌ Operation cancelled.")
}

func (r *Router) listCategories(ctx context.Context, up transport.Update) {
	cats, err := r.categories.All()
	if err != nil {
		slog.Error("failed to list categories", "error", err)
		r.reply(ctx, up.ChatID, "❌ Failed to list categories.")
		return
	}
	if len(cats) == 0 {
		r.reply(ctx, up.ChatID, "📂 No categories yet.")
		return
	}

	var b strings.Builder
	b.WriteString("📁 Categories:\n\n")
	for _, cat := range cats {
		fmt.Fprintf(&b, "• %s [ID: %s]\n  Link: %s\n\n", cat.Name, cat.ID, r.categories.Link(cat.ID))
	}
	r.reply(ctx, up.ChatID, b.String())
}

func (r *Router) setDefaultTimer(ctx context.Context, up transport.Update) {
	seconds, err := strconv.ParseInt(strings.TrimSpace(up.Args), 10, 64)
	if err != nil || seconds < 0 {
		r.reply(ctx, up.ChatID, "❌ Invalid value. Provide the number of seconds.\nExample: /timer 60")
		return
	}

	err = r.timers.SetDefault(seconds)
	if err != nil {
		slog.Error("failed to set default timer", "seconds", seconds, "error", err)
		r.reply(ctx, up.ChatID, "❌ Failed to set the timer.")
		return
	}

	if seconds > 0 {
		r.reply(ctx, up.ChatID, fmt.Sprintf("✅ Default timer set to %d seconds.", seconds))
	} else {
		r.reply(ctx, up.ChatID, "✅ Default timer disabled.")
	}
}

func (r *Router) addChannel(ctx context.Context, up transport.Update) {
	r.sessions.StartChannel(up.UserID)
	r.reply(ctx, up.ChatID, "Send the channel details in order:\n\n1. Channel id (example: -1001234567890)\n2. Channel name\n3. Invite link")
}

func (r *Router) removeChannel(ctx context.Context, up transport.Update) {
	channelID := strings.TrimSpace(up.Args)
	if channelID == "" {
		r.reply(ctx, up.ChatID, "Please provide a channel id.\nExample: /remove_channel -1001234567890")
		return
	}

	err := r.channels.Remove(channelID)
	if err == repository.ErrChannelNotFound {
		r.reply(ctx, up.ChatID, "❌ Channel not found.")
		return
	}
	if err != nil {
		slog.Error("failed to remove channel", "channel", channelID, "error", err)
		r.reply(ctx, up.ChatID, "❌ Failed to remove the channel.")
		return
	}
	r.reply(ctx, up.ChatID, "✅ Channel removed.")
}

func (r *Router) listChannels(ctx context.Context, up transport.Update) {
	channels, err := r.channels.All()
	if err != nil {
		slog.Error("failed to list channels", "error", err)
		r.reply(ctx, up.ChatID, "❌ Failed to list channels.")
		return
	}
	if len(channels) == 0 {
		r.reply(ctx, up.ChatID, "📢 No channels registered.")
		return
	}

	var b strings.Builder
	b.WriteString("📢 Required channels:\n\n")
	for i, ch := range channels {
		fmt.Fprintf(&b, "%d. %s\n   ID: %s\n   Link: %s\n\n", i+1, ch.DisplayName, ch.ChannelID, ch.InviteLink)
	}
	r.reply(ctx, up.ChatID, b.String())
}
