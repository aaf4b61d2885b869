// Package constants provides centralized constant values used throughout pulse.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// File names and directories used by pulse for configuration and logs.
const (
	// PulseHome is the hidden directory name where pulse stores its data.
	// Created in the user's home directory (global) or the project root (local).
	PulseHome = ".pulse"

	// ConfigFileName is the name of the YAML configuration file.
	ConfigFileName = "config.yaml"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// LogFileName is the name of the rotating log file.
	LogFileName = "pulse.log"

	// EnvPrefix is the prefix for environment variable configuration overrides.
	EnvPrefix = "PULSE"
)

// Change-feed table names for the three synchronized entity families.
const (
	// TableDecisions is the feed table carrying decision row changes.
	TableDecisions = "decisions"

	// TableTasks is the feed table carrying task row changes.
	TableTasks = "tasks"

	// TableVotes is the feed table carrying vote row changes.
	// Votes reference decisions rather than workspaces, so this
	// subscription is not workspace-filtered.
	TableVotes = "votes"
)

// Coalescing and visibility policy defaults.
//
// These values were tuned empirically rather than derived from a stated
// requirement, so they are exposed through config rather than hard-wired
// at call sites.
const (
	// DefaultDebounceDelay is how long the coordinator waits after a change
	// event before recomputing derived state, so a burst of related events
	// settles into a single recompute.
	DefaultDebounceDelay = 500 * time.Millisecond

	// DefaultUndoWindow is how long the single-slot dismissal undo stays valid.
	DefaultUndoWindow = 5 * time.Second

	// DefaultStaleDecisionAge is how long a decision may sit without activity
	// before it is considered stale and worth a nudge.
	DefaultStaleDecisionAge = 7 * 24 * time.Hour

	// DefaultLowParticipationRatio is the vote-to-member ratio below which a
	// voting decision triggers a participation nudge.
	DefaultLowParticipationRatio = 0.5

	// DefaultProviderTimeout bounds calls to external nudge/metrics/priority
	// providers. The core must never block indefinitely on a collaborator.
	DefaultProviderTimeout = 10 * time.Second

	// DefaultLoadTimeout bounds a single full-collection reload.
	DefaultLoadTimeout = 30 * time.Second
)

// Scoring bounds for the evaluation engine.
const (
	// MinScore is the lowest valid score a user can assign an option
	// against a criterion.
	MinScore = 1

	// MaxScore is the highest valid score.
	MaxScore = 5

	// MinWeight is the lowest valid criterion weight.
	MinWeight = 1

	// MaxWeight is the highest valid criterion weight.
	MaxWeight = 5
)

// MidpointAIScore is the score assumed for tasks that have no AI priority
// score when sorting by ai_score, so unscored tasks neither dominate nor
// are buried.
const MidpointAIScore = 50.0
