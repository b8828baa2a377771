package progresslog

import (
	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
)

var (
	// ErrOpenFailed indicates the log storage could not be opened.
	ErrOpenFailed = errors.PersistenceError("could not open progress log").Fatal().Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.PersistenceError("failed to initialize progress log schema").Fatal().Build()

	// ErrAppendFailed indicates appending an entry failed.
	ErrAppendFailed = errors.PersistenceError("failed to append progress log entry").Build()

	// ErrQueryFailed indicates reading entries failed.
	ErrQueryFailed = errors.PersistenceError("failed to query progress log").Build()
)
