package progress

import (
	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
)

var (
	// ErrTimerNotFound indicates StopTimer was called for a label without a running timer.
	ErrTimerNotFound = errors.NotFoundError("no start time recorded for that label").Build()

	// ErrAlreadyConfirmed indicates the current day was already confirmed.
	ErrAlreadyConfirmed = errors.AlreadyExistsError("day already confirmed").Build()

	// ErrPersistenceFailure indicates the journal or state file could not be written.
	// The in-memory mutation has been rolled back.
	ErrPersistenceFailure = errors.PersistenceError("failed to persist progress").Build()

	// ErrLoadFailed indicates existing files could not be read or decoded.
	ErrLoadFailed = errors.PersistenceError("failed to load progress").Fatal().Build()

	// ErrEmptyOutcome indicates RecordOutcome was called without an outcome.
	ErrEmptyOutcome = errors.ValidationError("outcome cannot be empty").Build()
)
