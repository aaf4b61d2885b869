// Package errors provides centralized error handling for pulse.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrEmptyDecisionText indicates an attempt to leave the define phase
	// without a decision question.
	ErrEmptyDecisionText = errors.New("decision text cannot be empty")

	// ErrTooFewOptions indicates an attempt to leave the options phase with
	// fewer than two options.
	ErrTooFewOptions = errors.New("at least two options required")

	// ErrTooFewCriteria indicates an attempt to leave the criteria phase with
	// fewer than two criteria.
	ErrTooFewCriteria = errors.New("at least two criteria required")

	// ErrPhaseTerminal indicates an attempt to advance past the decide phase.
	ErrPhaseTerminal = errors.New("decision is already in its final phase")

	// ErrPhaseNotVisited indicates backward navigation to a phase beyond the
	// current one.
	ErrPhaseNotVisited = errors.New("cannot navigate forward to an unvisited phase")

	// ErrInvalidPhase indicates an unknown decision phase value.
	ErrInvalidPhase = errors.New("invalid decision phase")

	// ErrWrongPhase indicates an operation attempted outside its allowed phase.
	ErrWrongPhase = errors.New("operation not allowed in current phase")

	// ErrOptionNotFound indicates the referenced option does not exist in the draft.
	ErrOptionNotFound = errors.New("option not found")

	// ErrCriterionNotFound indicates the referenced criterion does not exist in the draft.
	ErrCriterionNotFound = errors.New("criterion not found")

	// ErrScoreOutOfRange indicates a score outside the 1-5 range.
	ErrScoreOutOfRange = errors.New("score out of range")

	// ErrWeightOutOfRange indicates a criterion weight outside the 1-5 range.
	ErrWeightOutOfRange = errors.New("weight out of range")

	// ErrNoFinalChoice indicates a commit was attempted before selecting a
	// final choice.
	ErrNoFinalChoice = errors.New("no final choice selected")

	// ErrCoordinatorClosed indicates an operation on a coordinator after Close.
	ErrCoordinatorClosed = errors.New("coordinator is closed")

	// ErrCoordinatorStarted indicates Start was called twice on one coordinator.
	ErrCoordinatorStarted = errors.New("coordinator already started")

	// ErrSessionClosed indicates an operation on a workspace session after Close.
	ErrSessionClosed = errors.New("session is closed")

	// ErrUndoExpired indicates the undo window has elapsed or nothing was dismissed.
	ErrUndoExpired = errors.New("nothing to undo")

	// ErrNudgeNotFound indicates the referenced nudge is not in the active set.
	ErrNudgeNotFound = errors.New("nudge not found")

	// ErrUnknownAction indicates a nudge action outside the closed action set.
	ErrUnknownAction = errors.New("unknown nudge action")

	// ErrDismissalStoreUnavailable indicates the durable dismissal store could
	// not be reached. Callers treat the dismissed set as empty in this case.
	ErrDismissalStoreUnavailable = errors.New("dismissal store unavailable")

	// ErrConfigNotFound indicates the configuration file was not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates a configuration value failed validation.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrWorkspaceRequired indicates no workspace id was provided.
	ErrWorkspaceRequired = errors.New("workspace id required")

	// ErrProviderTimeout indicates an external provider exceeded its deadline.
	ErrProviderTimeout = errors.New("provider timed out")
)
