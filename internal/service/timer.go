package service

import (
	"errors"
	"fmt"

	"github.com/filegate/filegate/internal/repository"
)

var ErrInvalidTimer = errors.New("timer must be zero or a positive number of seconds")

// ClearOverride is the sentinel a timer-entry conversation uses to drop a
// per-category override and fall back to the global default.
const ClearOverride = -1

// TimerService resolves the effective auto-deletion delay for a category.
type TimerService struct {
	categories repository.CategoryRepository
	settings   repository.SettingsRepository
}

func NewTimerService(categories repository.CategoryRepository, settings repository.SettingsRepository) *TimerService {
	return &TimerService{
		categories: categories,
		settings:   settings,
	}
}

// Effective returns the delay actually applied to the category: the
// per-category override when one is set (zero included, meaning disabled),
// otherwise the global default. Always reads current store state.
func (s *TimerService) Effective(categoryID string) (int64, error) {
	override, err := s.categories.Timer(categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to read category timer: %w", err)
	}
	if override != nil {
		return *override, nil
	}

	seconds, err := s.settings.DefaultTimer()
	if err != nil {
		return 0, fmt.Errorf("failed to read default timer: %w", err)
	}
	return seconds, nil
}

// Default returns the global default delay.
func (s *TimerService) Default() (int64, error) {
	return s.settings.DefaultTimer()
}

// SetDefault updates the global default delay. Zero disables deletion.
func (s *TimerService) SetDefault(seconds int64) error {
	if seconds < 0 {
		return ErrInvalidTimer
	}
	err := s.settings.SetDefaultTimer(seconds)
	if err != nil {
		return fmt.Errorf("failed to set default timer: %w", err)
	}
	return nil
}

// SetOverride updates the per-category delay: ClearOverride drops the
// override, zero disables deletion for the category, positive values set
// the delay in seconds.
func (s *TimerService) SetOverride(categoryID string, seconds int64) error {
	if seconds < ClearOverride {
		return ErrInvalidTimer
	}
	var override *int64
	if seconds != ClearOverride {
		override = &seconds
	}
	err := s.categories.SetTimer(categoryID, override)
	if err != nil {
		return fmt.Errorf("failed to set category timer: %w", err)
	}
	return nil
}

// Override returns the category's raw override, nil when unset.
func (s *TimerService) Override(categoryID string) (*int64, error) {
	return s.categories.Timer(categoryID)
}
