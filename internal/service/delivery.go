package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/filegate/filegate/internal/model"
	"github.com/filegate/filegate/internal/transport"
)

// Sender is the transport slice delivery depends on.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, kb transport.Keyboard) (int, error)
	SendDocument(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	SendVideo(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	SendAudio(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

type pendingKey struct {
	chatID    int64
	messageID int
}

// DeliveryService sends a category's files and schedules their deletion
// when a timer is active. Scheduled deletions are detached one-shot tasks
// tracked in a registry so they fire at most once, are removed whatever the
// delete outcome, and can be stopped on shutdown. They are not persisted:
// a restart forfeits them.
type DeliveryService struct {
	sender Sender

	mu      sync.Mutex
	pending map[pendingKey]*time.Timer

	// test seams; real values are set by NewDeliveryService
	unit  time.Duration
	pause func(time.Duration)
}

func NewDeliveryService(sender Sender) *DeliveryService {
	return &DeliveryService{
		sender:  sender,
		pending: make(map[pendingKey]*time.Timer),
		unit:    time.Second,
		pause:   time.Sleep,
	}
}

// Deliver announces the batch, sends every file in stored order, and, when
// timerSeconds > 0, schedules each sent message plus a final warning for
// deletion. A failed send is logged and skipped after a short backoff;
// partial delivery is accepted, never an error for the whole batch.
func (s *DeliveryService) Deliver(ctx context.Context, chatID int64, cat *model.Category, timerSeconds int64) {
	_, err := s.sender.SendText(ctx, chatID, fmt.Sprintf("📤 Sending files for '%s'...", cat.Name), nil)
	if err != nil {
		slog.Error("failed to announce delivery", "chat", chatID, "category", cat.ID, "error", err)
	}

	for _, f := range cat.Files {
		messageID, err := s.sendFile(ctx, chatID, f)
		if err != nil {
			slog.Error("failed to send file", "chat", chatID, "file", f.FileID, "kind", f.FileKind, "error", err)
			s.pause(2 * time.Second)
			continue
		}
		if timerSeconds > 0 {
			s.schedule(chatID, messageID, timerSeconds)
		}
		s.pause(500 * time.Millisecond)
	}

	if timerSeconds > 0 {
		s.sendWarning(ctx, chatID, timerSeconds)
	}
}

func (s *DeliveryService) sendFile(ctx context.Context, chatID int64, f model.File) (int, error) {
	caption := truncateCaption(f.Caption)

	switch f.FileKind {
	case model.FileKindDocument:
		return s.sender.SendDocument(ctx, chatID, f.FileID, caption)
	case model.FileKindPhoto:
		return s.sender.SendPhoto(ctx, chatID, f.FileID, caption)
	case model.FileKindVideo:
		return s.sender.SendVideo(ctx, chatID, f.FileID, caption)
	case model.FileKindAudio:
		return s.sender.SendAudio(ctx, chatID, f.FileID, caption)
	}
	return 0, fmt.Errorf("unsupported file kind %q", f.FileKind)
}

// truncateCaption clamps a caption to the transport limit. The limit counts
// characters, not bytes; cutting the byte slice would split a multibyte rune
// and produce invalid UTF-8 the transport rejects.
func truncateCaption(caption string) string {
	if utf8.RuneCountInString(caption) <= model.MaxCaptionLength {
		return caption
	}
	return string([]rune(caption)[:model.MaxCaptionLength])
}

// sendWarning tells the recipient the batch self-destructs. The warning
// itself is deleted under the same policy.
func (s *DeliveryService) sendWarning(ctx context.Context, chatID int64, timerSeconds int64) {
	text := fmt.Sprintf(
		"⚠️ These files will be deleted automatically in %d seconds.\nForward them to your saved messages to keep them.",
		timerSeconds,
	)
	messageID, err := s.sender.SendText(ctx, chatID, text, nil)
	if err != nil {
		slog.Error("failed to send deletion warning", "chat", chatID, "error", err)
		return
	}
	s.schedule(chatID, messageID, timerSeconds)
}

// schedule registers a one-shot deletion. Scheduling the same message twice
// is a no-op, so a message is never deleted twice.
func (s *DeliveryService) schedule(chatID int64, messageID int, seconds int64) {
	key := pendingKey{chatID: chatID, messageID: messageID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pending[key]; exists {
		return
	}
	s.pending[key] = time.AfterFunc(time.Duration(seconds)*s.unit, func() {
		s.fire(key)
	})
}

// fire removes the registry entry and deletes the message. Removal happens
// whatever the delete outcome; a failed delete (message already gone,
// transport down) is logged and never retried.
func (s *DeliveryService) fire(key pendingKey) {
	s.mu.Lock()
	_, ok := s.pending[key]
	delete(s.pending, key)
	s.mu.Unlock()
	if !ok {
		return
	}

	err := s.sender.DeleteMessage(context.Background(), key.chatID, key.messageID)
	if err != nil && err != transport.ErrMessageNotFound {
		slog.Warn("scheduled delete failed", "chat", key.chatID, "message", key.messageID, "error", err)
	}
}

// PendingCount returns the number of deletions not yet fired.
func (s *DeliveryService) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Shutdown stops every outstanding deletion timer. The entries are
// forfeited; messages they covered stay visible.
func (s *DeliveryService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.pending {
		timer.Stop()
		delete(s.pending, key)
	}
}
