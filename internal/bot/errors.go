package bot

import (
	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
)

var (
	// ErrUnauthorized is returned by Authorize for any caller other than the configured user.
	// Handle swallows it: unauthorized updates get no reply.
	ErrUnauthorized = errors.AuthError("caller is not the configured user").Build()

	// ErrUnknownAction indicates an inline button payload outside the closed action set.
	ErrUnknownAction = errors.ValidationError("unknown callback action").Build()

	// ErrUnknownTrigger indicates Fire was called with an unregistered trigger name.
	ErrUnknownTrigger = errors.ValidationError("unknown trigger").Build()
)
