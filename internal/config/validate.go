package config

import (
	"fmt"

	pulseerrors "github.com/qntmpulse/pulse/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - sync debounce delay and load timeout must be positive
//   - stale decision age and undo window must be positive
//   - low participation ratio must be within (0, 1]
//   - expected voters must not be negative
//   - dismissal store must be "memory" or "redis"; "redis" requires a URL
//   - provider timeout must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", pulseerrors.ErrConfigInvalid)
	}
	if err := validateSync(&cfg.Sync); err != nil {
		return err
	}
	if err := validateNudges(&cfg.Nudges); err != nil {
		return err
	}
	if cfg.Providers.Timeout <= 0 {
		return fmt.Errorf("%w: providers.timeout must be positive, got %s",
			pulseerrors.ErrConfigInvalid, cfg.Providers.Timeout)
	}
	return nil
}

func validateSync(cfg *SyncConfig) error {
	if cfg.DebounceDelay <= 0 {
		return fmt.Errorf("%w: sync.debounce_delay must be positive, got %s",
			pulseerrors.ErrConfigInvalid, cfg.DebounceDelay)
	}
	if cfg.LoadTimeout <= 0 {
		return fmt.Errorf("%w: sync.load_timeout must be positive, got %s",
			pulseerrors.ErrConfigInvalid, cfg.LoadTimeout)
	}
	return nil
}

func validateNudges(cfg *NudgesConfig) error {
	if cfg.StaleDecisionAge <= 0 {
		return fmt.Errorf("%w: nudges.stale_decision_age must be positive, got %s",
			pulseerrors.ErrConfigInvalid, cfg.StaleDecisionAge)
	}
	if cfg.LowParticipationRatio <= 0 || cfg.LowParticipationRatio > 1 {
		return fmt.Errorf("%w: nudges.low_participation_ratio must be within (0, 1], got %g",
			pulseerrors.ErrConfigInvalid, cfg.LowParticipationRatio)
	}
	if cfg.ExpectedVoters < 0 {
		return fmt.Errorf("%w: nudges.expected_voters must not be negative, got %d",
			pulseerrors.ErrConfigInvalid, cfg.ExpectedVoters)
	}
	if cfg.UndoWindow <= 0 {
		return fmt.Errorf("%w: nudges.undo_window must be positive, got %s",
			pulseerrors.ErrConfigInvalid, cfg.UndoWindow)
	}
	switch cfg.DismissalStore {
	case DismissalStoreMemory:
	case DismissalStoreRedis:
		if cfg.RedisURL == "" {
			return fmt.Errorf("%w: nudges.redis_url required when dismissal_store is %q",
				pulseerrors.ErrConfigInvalid, DismissalStoreRedis)
		}
	default:
		return fmt.Errorf("%w: nudges.dismissal_store must be %q or %q, got %q",
			pulseerrors.ErrConfigInvalid, DismissalStoreMemory, DismissalStoreRedis, cfg.DismissalStore)
	}
	return nil
}
