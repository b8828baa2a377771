package errors

import (
	"errors"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "config.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "config.yaml" {
			t.Errorf("expected context file=config.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		if !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if err.CanRetry() {
			t.Error("expected config error to not be retryable")
		}
		if !err.IsFatal() {
			t.Error("expected config error to be fatal")
		}
	})
}

func TestSentinelMatching(t *testing.T) {
	sentinel := NotFoundError("no start time recorded for task").Build()

	t.Run("copy with context still matches", func(t *testing.T) {
		err := sentinel.WithContext("label", "gym")
		if !errors.Is(err, sentinel) {
			t.Fatal("expected copy to match sentinel")
		}
		if _, ok := sentinel.Context().Get("label"); ok {
			t.Fatal("sentinel context must not be mutated")
		}
	})

	t.Run("wrapped by fmt still matches", func(t *testing.T) {
		err := errorsJoinLike(sentinel.Wrap(errors.New("boom")))
		if !errors.Is(err, sentinel) {
			t.Fatal("expected wrapped error to match sentinel")
		}
		if GetCategory(err) != CategoryNotFound {
			t.Errorf("expected not_found category, got %s", GetCategory(err))
		}
	})

	t.Run("different message does not match", func(t *testing.T) {
		other := NotFoundError("plan day not found").Build()
		if errors.Is(other, sentinel) {
			t.Fatal("expected different sentinels to differ")
		}
	})
}

func errorsJoinLike(err error) error {
	return &wrapper{err: err}
}

type wrapper struct{ err error }

func (w *wrapper) Error() string { return "outer: " + w.err.Error() }
func (w *wrapper) Unwrap() error { return w.err }

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("disk full")
	err := WrapError(originalErr, CategoryPersistence, "write journal").
		Warning().
		Retryable().
		WithContext("path", "journal.json").
		Build()

	if !errors.Is(err, originalErr) {
		t.Error("expected cause to be reachable via errors.Is")
	}
	if err.Severity() != SeverityWarning {
		t.Errorf("expected warning severity, got %s", err.Severity())
	}
	if !err.CanRetry() {
		t.Error("expected retryable error")
	}
	if got := err.Error(); got != "[persistence:warning] write journal: disk full" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestGetSeverityFallback(t *testing.T) {
	if got := GetSeverity(errors.New("plain")); got != SeverityError {
		t.Errorf("expected error severity for plain error, got %s", got)
	}
	if got := GetCategory(errors.New("plain")); got != CategoryInternal {
		t.Errorf("expected internal category for plain error, got %s", got)
	}
}
