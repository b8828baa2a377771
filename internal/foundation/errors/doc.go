// Package errors provides the classified error primitives used across disciplinebot.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, auth, not_found, persistence, transport, ...)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry hint carried with the error (the bot itself never retries)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter for exit codes and error presentation
//
// Example usage:
//
//	var ErrTimerNotFound = errors.NotFoundError("no start time recorded for task").Build()
//
//	return errors.WrapError(err, errors.CategoryPersistence, "write journal").
//		WithContext("path", path).
//		Build()
package errors
