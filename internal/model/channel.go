package model

import (
	"time"
)

// Channel is a required membership channel. Every registered channel is a
// hard requirement for ungated category access.
type Channel struct {
	ChannelID   string    `db:"channel_id"` // e.g. "-1001234567890" or "@name"
	DisplayName string    `db:"display_name"`
	InviteLink  string    `db:"invite_link"`
	CreatedAt   time.Time `db:"created_at"`
}
