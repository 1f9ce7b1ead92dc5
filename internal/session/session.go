// Package session tracks per-user multi-turn admin conversations: file
// uploads, channel registration, and timer entry. State is in-memory only
// and dies with the process.
package session

import (
	"github.com/filegate/filegate/internal/model"
)

// UploadState accumulates files for a category until finish or cancel.
type UploadState struct {
	CategoryID string
	Files      []model.File
}

// ChannelStage is the next piece of channel information being awaited.
type ChannelStage int

const (
	StageChannelID ChannelStage = iota
	StageName
	StageLink
)

// ChannelState is filled incrementally across three text turns.
type ChannelState struct {
	Stage     ChannelStage
	ChannelID string
	Name      string
	Link      string
}

// advanceChannel applies one text turn to a channel-registration state.
// It returns the next state and whether the registration is complete.
func advanceChannel(s ChannelState, input string) (ChannelState, bool) {
	switch s.Stage {
	case StageChannelID:
		s.ChannelID = input
		s.Stage = StageName
		return s, false
	case StageName:
		s.Name = input
		s.Stage = StageLink
		return s, false
	default:
		s.Link = input
		return s, true
	}
}

// TimerState binds a timer-entry conversation to its target category.
type TimerState struct {
	CategoryID string
}
