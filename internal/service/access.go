package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/filegate/filegate/internal/model"
	"github.com/filegate/filegate/internal/transport"
)

// MemberLookup is the single transport capability the gate needs.
type MemberLookup interface {
	ChatMemberStatus(ctx context.Context, channelID string, userID int64) (transport.MemberStatus, error)
}

// retryPolicy bounds the membership lookup per channel. Lookups against a
// channel the bot was just added to are flaky for a few seconds, so a
// failed attempt (error or non-member status) is retried after a pause.
type retryPolicy struct {
	Attempts int
	Interval time.Duration
}

// AccessService decides whether a user satisfies every registered channel
// requirement. Checks are side-effect-free and safe to re-invoke after the
// user claims to have joined.
type AccessService struct {
	lookup MemberLookup
	policy retryPolicy
	sleep  func(time.Duration)
}

func NewAccessService(lookup MemberLookup) *AccessService {
	return &AccessService{
		lookup: lookup,
		policy: retryPolicy{Attempts: 3, Interval: 2 * time.Second},
		sleep:  time.Sleep,
	}
}

// Check returns whether the user is a member of every channel, and the
// channels still unsatisfied. No registered channels grants immediately.
func (s *AccessService) Check(ctx context.Context, userID int64, channels []model.Channel) (bool, []model.Channel) {
	var missing []model.Channel
	for _, ch := range channels {
		if !s.isMember(ctx, ch.ChannelID, userID) {
			missing = append(missing, ch)
		}
	}
	return len(missing) == 0, missing
}

// isMember polls the channel up to Attempts times, stopping the moment any
// attempt confirms membership. Lookup errors count as failed attempts, not
// failures of the whole check.
func (s *AccessService) isMember(ctx context.Context, channelID string, userID int64) bool {
	for attempt := 1; attempt <= s.policy.Attempts; attempt++ {
		status, err := s.lookup.ChatMemberStatus(ctx, channelID, userID)
		if err != nil {
			slog.Warn("membership lookup failed", "channel", channelID, "user", userID, "attempt", attempt, "error", err)
		} else if status.Satisfies() {
			return true
		}
		if attempt < s.policy.Attempts {
			s.sleep(s.policy.Interval)
		}
	}
	return false
}
