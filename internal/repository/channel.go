package repository

import (
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/filegate/filegate/internal/model"
)

var (
	ErrChannelNotFound  = errors.New("channel not found")
	ErrDuplicateChannel = errors.New("channel already exists")
)

type ChannelRepository interface {
	Add(channelID, displayName, inviteLink string) error
	All() ([]model.Channel, error)
	Remove(channelID string) error
}

type channelRepository struct {
	db *sqlx.DB
}

func NewChannelRepository(db *sqlx.DB) *channelRepository {
	return &channelRepository{db: db}
}

// Add registers a required channel. Registering an already known channel_id
// leaves the store untouched and reports ErrDuplicateChannel.
func (r *channelRepository) Add(channelID, displayName, inviteLink string) error {
	query := `INSERT INTO channels (channel_id, display_name, invite_link, created_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (channel_id) DO NOTHING`

	res, err := r.db.Exec(query, channelID, displayName, inviteLink, time.Now().UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicateChannel
	}
	return nil
}

func (r *channelRepository) All() ([]model.Channel, error) {
	var channels []model.Channel
	query := `SELECT channel_id, display_name, invite_link, created_at FROM channels ORDER BY created_at`

	err := r.db.Select(&channels, query)
	if err != nil {
		return nil, err
	}

	return channels, nil
}

func (r *channelRepository) Remove(channelID string) error {
	res, err := r.db.Exec(`DELETE FROM channels WHERE channel_id = $1`, channelID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrChannelNotFound
	}
	return nil
}
