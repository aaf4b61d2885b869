// Package config provides configuration management for pulse with layered
// precedence.
//
// Configuration sources are loaded in the following order (highest precedence
// first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (PULSE_* prefix)
//  3. Project config (.pulse/config.yaml)
//  4. Global config (~/.pulse/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import (
	"time"

	"github.com/qntmpulse/pulse/internal/constants"
)

// Config is the root configuration structure for pulse.
type Config struct {
	// Workspace contains the workspace selection.
	Workspace WorkspaceConfig `yaml:"workspace" json:"workspace" mapstructure:"workspace"`

	// Sync contains change-feed and snapshot reload settings.
	Sync SyncConfig `yaml:"sync" json:"sync" mapstructure:"sync"`

	// Nudges contains nudge generation and dismissal settings.
	Nudges NudgesConfig `yaml:"nudges" json:"nudges" mapstructure:"nudges"`

	// Providers contains settings for external collaborators (metrics,
	// AI prioritization, framing).
	Providers ProvidersConfig `yaml:"providers" json:"providers" mapstructure:"providers"`

	// Logging contains log output settings.
	Logging LoggingConfig `yaml:"logging" json:"logging" mapstructure:"logging"`
}

// WorkspaceConfig selects the workspace a session attaches to.
type WorkspaceConfig struct {
	// ID is the workspace identifier. Required for session commands; may be
	// supplied per-invocation via flag instead.
	ID string `yaml:"id" json:"id" mapstructure:"id"`
}

// SyncConfig controls the change-feed coordinator and collection loads.
type SyncConfig struct {
	// DebounceDelay is the quiet period the coordinator waits after the last
	// feed signal before recomputing derived state.
	// Default: 500ms
	DebounceDelay time.Duration `yaml:"debounce_delay" json:"debounce_delay" mapstructure:"debounce_delay"`

	// LoadTimeout bounds each full-collection load from the store.
	// Default: 30s
	LoadTimeout time.Duration `yaml:"load_timeout" json:"load_timeout" mapstructure:"load_timeout"`
}

// NudgesConfig controls nudge generation thresholds and dismissal durability.
type NudgesConfig struct {
	// StaleDecisionAge is how long an open decision may sit without activity
	// before a stale-decision nudge fires.
	// Default: 168h (7 days)
	StaleDecisionAge time.Duration `yaml:"stale_decision_age" json:"stale_decision_age" mapstructure:"stale_decision_age"`

	// LowParticipationRatio is the voter-turnout fraction below which a
	// low-participation nudge fires for a decision in voting.
	// Default: 0.5
	LowParticipationRatio float64 `yaml:"low_participation_ratio" json:"low_participation_ratio" mapstructure:"low_participation_ratio"`

	// ExpectedVoters is the number of workspace members expected to vote.
	// Zero disables the ratio check; zero-vote decisions still nudge.
	// Default: 0
	ExpectedVoters int `yaml:"expected_voters" json:"expected_voters" mapstructure:"expected_voters"`

	// UndoWindow is how long a dismissal can be undone.
	// Default: 5s
	UndoWindow time.Duration `yaml:"undo_window" json:"undo_window" mapstructure:"undo_window"`

	// DismissalStore selects the durable dismissal backend: "memory" or
	// "redis".
	// Default: "memory"
	DismissalStore string `yaml:"dismissal_store" json:"dismissal_store" mapstructure:"dismissal_store"`

	// RedisURL is the redis connection URL when DismissalStore is "redis".
	// Example: redis://localhost:6379/0
	RedisURL string `yaml:"redis_url" json:"redis_url" mapstructure:"redis_url"`
}

// ProvidersConfig bounds calls to external collaborators.
type ProvidersConfig struct {
	// Timeout is the per-call deadline for metrics, framing, and
	// prioritization providers.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level" json:"level" mapstructure:"level"`

	// MaxSizeMB is the log file size before rotation.
	// Default: 10
	MaxSizeMB int `yaml:"max_size_mb" json:"max_size_mb" mapstructure:"max_size_mb"`

	// MaxBackups is the number of rotated log files to keep.
	// Default: 3
	MaxBackups int `yaml:"max_backups" json:"max_backups" mapstructure:"max_backups"`
}

// DismissalStore backends.
const (
	// DismissalStoreMemory keeps dismissals in process memory only.
	DismissalStoreMemory = "memory"

	// DismissalStoreRedis persists dismissals to redis.
	DismissalStoreRedis = "redis"
)

// DefaultConfig returns a Config populated with built-in defaults. The same
// values back the viper defaults in load.go.
func DefaultConfig() *Config {
	return &Config{
		Sync: SyncConfig{
			DebounceDelay: constants.DefaultDebounceDelay,
			LoadTimeout:   constants.DefaultLoadTimeout,
		},
		Nudges: NudgesConfig{
			StaleDecisionAge:      constants.DefaultStaleDecisionAge,
			LowParticipationRatio: constants.DefaultLowParticipationRatio,
			UndoWindow:            constants.DefaultUndoWindow,
			DismissalStore:        DismissalStoreMemory,
		},
		Providers: ProvidersConfig{
			Timeout: constants.DefaultProviderTimeout,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}
