// Package transport abstracts the bot messaging backend so the gating,
// session, and delivery logic can be exercised without the network.
package transport

import (
	"context"
	"errors"
)

// ErrMessageNotFound reports a delete/edit against a message that no longer
// exists. Callers treat it as a terminal, non-retryable outcome.
var ErrMessageNotFound = errors.New("message not found")

// MemberStatus is the membership standing of a user in a channel.
type MemberStatus string

const (
	StatusCreator       MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

// Satisfies reports whether the status counts as channel membership.
func (s MemberStatus) Satisfies() bool {
	return s == StatusCreator || s == StatusAdministrator || s == StatusMember
}

// Button is a single inline keyboard button: either a URL button or a
// callback button carrying Data.
type Button struct {
	Text string
	URL  string
	Data string
}

// Keyboard is an inline keyboard, one slice per row.
type Keyboard [][]Button

// Identity describes the bot account itself.
type Identity struct {
	ID       int64
	Username string
}

// IncomingFile is a media attachment of a supported kind.
type IncomingFile struct {
	FileID   string
	FileName string
	FileSize int64
	Kind     string // model.FileKind*
	Caption  string
}

// Callback is an inline button click.
type Callback struct {
	ID        string
	Data      string
	MessageID int
}

// Update is one normalized inbound event.
type Update struct {
	UserID    int64
	ChatID    int64
	MessageID int

	// Message content. Command is set (without the slash) when the text is
	// a bot command; File is set for supported attachments; HasMedia is set
	// for any non-text content, supported or not.
	Text     string
	Command  string
	Args     string
	File     *IncomingFile
	HasMedia bool

	Callback *Callback
}

// Transport is the full message capability consumed by the bot.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string, kb Keyboard) (int, error)
	SendDocument(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	SendVideo(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	SendAudio(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, kb Keyboard) error
	ChatMemberStatus(ctx context.Context, channelID string, userID int64) (MemberStatus, error)
	AnswerCallback(ctx context.Context, callbackID string) error
	Me() Identity
}
