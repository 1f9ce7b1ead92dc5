package handler

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/filegate/filegate/internal/db"
	"github.com/filegate/filegate/internal/model"
	"github.com/filegate/filegate/internal/repository"
	"github.com/filegate/filegate/internal/service"
	"github.com/filegate/filegate/internal/session"
	"github.com/filegate/filegate/internal/transport"
)

const (
	adminID    = int64(1)
	visitorID  = int64(2)
	adminChat  = int64(10)
	publicChat = int64(20)
)

// fakeTransport records all outbound traffic and serves canned membership
// statuses.
type fakeTransport struct {
	mu       sync.Mutex
	nextID   int
	texts    []string
	edits    []string
	media    []string // sent file ids
	statuses map[string]transport.MemberStatus
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{statuses: make(map[string]transport.MemberStatus)}
}

func (f *fakeTransport) SendText(ctx context.Context, chatID int64, text string, kb transport.Keyboard) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.texts = append(f.texts, text)
	return f.nextID, nil
}

func (f *fakeTransport) sendMedia(fileID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.media = append(f.media, fileID)
	return f.nextID, nil
}

func (f *fakeTransport) SendDocument(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	return f.sendMedia(fileID)
}

func (f *fakeTransport) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	return f.sendMedia(fileID)
}

func (f *fakeTransport) SendVideo(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	return f.sendMedia(fileID)
}

func (f *fakeTransport) SendAudio(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	return f.sendMedia(fileID)
}

func (f *fakeTransport) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return nil
}

func (f *fakeTransport) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, kb transport.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeTransport) ChatMemberStatus(ctx context.Context, channelID string, userID int64) (transport.MemberStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[channelID], nil
}

func (f *fakeTransport) AnswerCallback(ctx context.Context, callbackID string) error {
	return nil
}

func (f *fakeTransport) Me() transport.Identity {
	return transport.Identity{ID: 99, Username: "filegate_bot"}
}

func (f *fakeTransport) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		t.Fatalf("no texts sent")
	}
	return f.texts[len(f.texts)-1]
}

type fixture struct {
	tr         *fakeTransport
	router     *Router
	sessions   *session.Tracker
	categories repository.CategoryRepository
	channels   repository.ChannelRepository
	timers     *service.TimerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	_, err = conn.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	err = db.RunMigrations(conn.DB, "sqlite")
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	tr := newFakeTransport()
	categoryRepo := repository.NewCategoryRepository(conn)
	channelRepo := repository.NewChannelRepository(conn)
	settingsRepo := repository.NewSettingsRepository(conn)
	sessions := session.NewTracker()
	timers := service.NewTimerService(categoryRepo, settingsRepo)

	router := NewRouter(
		tr,
		[]int64{adminID},
		sessions,
		service.NewCategoryService(categoryRepo, tr.Me().Username),
		service.NewChannelService(channelRepo),
		timers,
		service.NewAccessService(tr),
		service.NewDeliveryService(tr),
	)

	return &fixture{
		tr:         tr,
		router:     router,
		sessions:   sessions,
		categories: categoryRepo,
		channels:   channelRepo,
		timers:     timers,
	}
}

func command(userID, chatID int64, cmd, args string) transport.Update {
	return transport.Update{UserID: userID, ChatID: chatID, Text: "/" + cmd, Command: cmd, Args: args}
}

func text(userID, chatID int64, s string) transport.Update {
	return transport.Update{UserID: userID, ChatID: chatID, Text: s}
}

func fileMsg(userID, chatID int64, fileID, kind string) transport.Update {
	return transport.Update{
		UserID:   userID,
		ChatID:   chatID,
		HasMedia: true,
		File:     &transport.IncomingFile{FileID: fileID, FileName: fileID, FileSize: 10, Kind: kind},
	}
}

func callback(userID, chatID int64, data string) transport.Update {
	return transport.Update{
		UserID:   userID,
		ChatID:   chatID,
		Callback: &transport.Callback{ID: "cb", Data: data, MessageID: 5},
	}
}

func (fx *fixture) mustCreateCategory(t *testing.T, name string) *model.Category {
	t.Helper()
	cat, err := fx.categories.Create(name, adminID)
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return cat
}

func TestAdminCommandsDeniedForVisitors(t *testing.T) {
	fx := newFixture(t)

	fx.router.Handle(context.Background(), command(visitorID, publicChat, "new_category", "docs"))
	if got := fx.tr.lastText(t); !strings.Contains(got, "Access denied") {
		t.Fatalf("expected denial, got %q", got)
	}

	cats, err := fx.categories.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(cats) != 0 {
		t.Fatalf("visitor created a category")
	}
}

func TestUploadFlowEndToEnd(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	cat := fx.mustCreateCategory(t, "docs")

	fx.router.Handle(ctx, command(adminID, adminChat, "upload", cat.ID))
	if !fx.sessions.HasUpload(adminID) {
		t.Fatalf("upload session not opened")
	}

	fx.router.Handle(ctx, fileMsg(adminID, adminChat, "f1", model.FileKindDocument))
	fx.router.Handle(ctx, fileMsg(adminID, adminChat, "f2", model.FileKindPhoto))

	// Unsupported media must not touch the session, whether the transport
	// dropped the attachment or handed over an unknown kind.
	fx.router.Handle(ctx, transport.Update{UserID: adminID, ChatID: adminChat, HasMedia: true})
	if got := fx.tr.lastText(t); !strings.Contains(got, "Unsupported") {
		t.Fatalf("expected unsupported-type reply, got %q", got)
	}
	fx.router.Handle(ctx, fileMsg(adminID, adminChat, "f3", "sticker"))
	if got := fx.tr.lastText(t); !strings.Contains(got, "Unsupported") {
		t.Fatalf("expected unsupported-kind reply, got %q", got)
	}

	fx.router.Handle(ctx, command(adminID, adminChat, "finish_upload", ""))

	loaded, err := fx.categories.ByID(cat.ID)
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if len(loaded.Files) != 2 {
		t.Fatalf("expected 2 stored files, got %d", len(loaded.Files))
	}
	if loaded.Files[0].FileID != "f1" || loaded.Files[1].FileID != "f2" {
		t.Fatalf("files out of order: %#v", loaded.Files)
	}
	if fx.sessions.HasSession(adminID) {
		t.Fatalf("session should be idle after finish")
	}

	fx.router.Handle(ctx, command(adminID, adminChat, "finish_upload", ""))
	if got := fx.tr.lastText(t); !strings.Contains(got, "No upload in progress") {
		t.Fatalf("expected state error reply, got %q", got)
	}
}

func TestCancelDiscardsUpload(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	cat := fx.mustCreateCategory(t, "docs")

	fx.router.Handle(ctx, command(adminID, adminChat, "upload", cat.ID))
	fx.router.Handle(ctx, fileMsg(adminID, adminChat, "f1", model.FileKindDocument))
	fx.router.Handle(ctx, command(adminID, adminChat, "cancel", ""))

	if fx.sessions.HasSession(adminID) {
		t.Fatalf("cancel should close the session")
	}
	loaded, err := fx.categories.ByID(cat.ID)
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if len(loaded.Files) != 0 {
		t.Fatalf("cancel must not persist files, got %d", len(loaded.Files))
	}
}

func TestChannelRegistrationEndToEnd(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.router.Handle(ctx, command(adminID, adminChat, "add_channel", ""))
	fx.router.Handle(ctx, text(adminID, adminChat, "-100111"))
	fx.router.Handle(ctx, text(adminID, adminChat, "News"))
	fx.router.Handle(ctx, text(adminID, adminChat, "https://t.me/joinchat/x"))

	channels, err := fx.channels.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(channels))
	}
	ch := channels[0]
	if ch.ChannelID != "-100111" || ch.DisplayName != "News" || ch.InviteLink != "https://t.me/joinchat/x" {
		t.Fatalf("unexpected channel: %#v", ch)
	}
	if fx.sessions.HasSession(adminID) {
		t.Fatalf("registration session should be closed")
	}

	// Registering the same channel again reports the duplicate and still
	// clears the session.
	fx.router.Handle(ctx, command(adminID, adminChat, "add_channel", ""))
	fx.router.Handle(ctx, text(adminID, adminChat, "-100111"))
	fx.router.Handle(ctx, text(adminID, adminChat, "Other"))
	fx.router.Handle(ctx, text(adminID, adminChat, "https://t.me/other"))
	if got := fx.tr.lastText(t); !strings.Contains(got, "already registered") {
		t.Fatalf("expected duplicate reply, got %q", got)
	}
	if fx.sessions.HasSession(adminID) {
		t.Fatalf("duplicate outcome should still close the session")
	}
}

func TestStartDeepLinkDeliversWhenUngated(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	cat := fx.mustCreateCategory(t, "docs")
	_, err := fx.categories.AddFiles(cat.ID, []model.File{
		{FileID: "f1", FileName: "a.pdf", FileKind: model.FileKindDocument},
	})
	if err != nil {
		t.Fatalf("AddFiles failed: %v", err)
	}

	fx.router.Handle(ctx, command(visitorID, publicChat, "start", "cat_"+cat.ID))

	if len(fx.tr.media) != 1 || fx.tr.media[0] != "f1" {
		t.Fatalf("expected file delivered, got %v", fx.tr.media)
	}
}

func TestStartDeepLinkGatedUntilRecheckConfirms(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	cat := fx.mustCreateCategory(t, "docs")
	_, err := fx.categories.AddFiles(cat.ID, []model.File{
		{FileID: "f1", FileName: "a.pdf", FileKind: model.FileKindDocument},
	})
	if err != nil {
		t.Fatalf("AddFiles failed: %v", err)
	}
	err = fx.channels.Add("-100111", "News", "https://t.me/joinchat/x")
	if err != nil {
		t.Fatalf("Add channel failed: %v", err)
	}
	fx.tr.statuses["-100111"] = transport.StatusMember

	// Member from the first attempt: delivery goes straight through.
	fx.router.Handle(ctx, command(visitorID, publicChat, "start", "cat_"+cat.ID))
	if len(fx.tr.media) != 1 {
		t.Fatalf("expected delivery for satisfied member, got %v", fx.tr.media)
	}

	// The re-check button takes the same path and edits the prompt.
	fx.router.Handle(ctx, callback(visitorID, publicChat, "check_"+cat.ID))
	if len(fx.tr.media) != 2 {
		t.Fatalf("expected re-check delivery, got %v", fx.tr.media)
	}
	if len(fx.tr.edits) == 0 || !strings.Contains(fx.tr.edits[len(fx.tr.edits)-1], "confirmed") {
		t.Fatalf("expected confirmation edit, got %v", fx.tr.edits)
	}
}

func TestAdminDeepLinkShowsMenuNotFiles(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	cat := fx.mustCreateCategory(t, "docs")

	fx.router.Handle(ctx, command(adminID, adminChat, "start", "cat_"+cat.ID))
	if got := fx.tr.lastText(t); !strings.Contains(got, "Category: docs") {
		t.Fatalf("expected category menu, got %q", got)
	}
	if len(fx.tr.media) != 0 {
		t.Fatalf("menu must not deliver files")
	}
}

func TestTimerEntryViaCallback(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	cat := fx.mustCreateCategory(t, "docs")

	fx.router.Handle(ctx, callback(adminID, adminChat, "timer_"+cat.ID))
	if _, ok := fx.sessions.TimerCategory(adminID); !ok {
		t.Fatalf("timer entry not opened")
	}

	// Non-numeric input keeps the conversation waiting.
	fx.router.Handle(ctx, text(adminID, adminChat, "soon"))
	if got := fx.tr.lastText(t); !strings.Contains(got, "number") {
		t.Fatalf("expected numeric-input nudge, got %q", got)
	}
	if _, ok := fx.sessions.TimerCategory(adminID); !ok {
		t.Fatalf("invalid input must keep the timer entry open")
	}

	fx.router.Handle(ctx, text(adminID, adminChat, "60"))
	if fx.sessions.HasSession(adminID) {
		t.Fatalf("timer entry should close on numeric input")
	}

	seconds, err := fx.timers.Effective(cat.ID)
	if err != nil || seconds != 60 {
		t.Fatalf("Effective = %d, %v; want 60", seconds, err)
	}

	// -1 clears the override back to the default.
	fx.router.Handle(ctx, callback(adminID, adminChat, "timer_"+cat.ID))
	fx.router.Handle(ctx, text(adminID, adminChat, "-1"))
	seconds, err = fx.timers.Effective(cat.ID)
	if err != nil || seconds != 0 {
		t.Fatalf("Effective after clear = %d, %v; want 0", seconds, err)
	}
}

func TestDeleteCategoryCallback(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	cat := fx.mustCreateCategory(t, "docs")

	fx.router.Handle(ctx, callback(adminID, adminChat, "delcat_"+cat.ID))

	_, err := fx.categories.ByID(cat.ID)
	if err != repository.ErrCategoryNotFound {
		t.Fatalf("category should be gone, got %v", err)
	}
	if len(fx.tr.edits) == 0 || !strings.Contains(fx.tr.edits[len(fx.tr.edits)-1], "deleted") {
		t.Fatalf("expected deletion edit, got %v", fx.tr.edits)
	}
}
