package service

import (
	"fmt"

	"github.com/filegate/filegate/internal/model"
	"github.com/filegate/filegate/internal/repository"
)

// ChannelService manages the set of required membership channels.
type ChannelService struct {
	channels repository.ChannelRepository
}

func NewChannelService(channels repository.ChannelRepository) *ChannelService {
	return &ChannelService{channels: channels}
}

func (s *ChannelService) Add(channelID, displayName, inviteLink string) error {
	err := s.channels.Add(channelID, displayName, inviteLink)
	if err == repository.ErrDuplicateChannel {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to add channel: %w", err)
	}
	return nil
}

func (s *ChannelService) All() ([]model.Channel, error) {
	return s.channels.All()
}

func (s *ChannelService) Remove(channelID string) error {
	return s.channels.Remove(channelID)
}
