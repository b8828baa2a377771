package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("x"), 1},
		{"config", ConfigError("bad").Build(), 7},
		{"validation", ValidationError("bad").Build(), 2},
		{"transport", TransportError("down").Build(), 8},
		{"persistence", PersistenceError("write").Build(), 11},
		{"plan", PlanError("parse").Build(), 11},
		{"daemon", DaemonError("stop").Build(), 12},
		{"internal", InternalError("oops").Build(), 10},
		{"not found", NotFoundError("x").Build(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	adapter := NewCLIErrorAdapter(false, logger)
	adapter.out = &out
	exitCode := -1
	adapter.exit = func(code int) { exitCode = code }

	adapter.HandleError(PersistenceError("write state").WithCause(errors.New("disk full")).Build())

	if exitCode != 11 {
		t.Errorf("expected exit code 11, got %d", exitCode)
	}
	if !strings.Contains(out.String(), "write state (use -v for details)") {
		t.Errorf("unexpected output %q", out.String())
	}
	if logs.Len() != 0 {
		t.Errorf("non-fatal error should not be logged in quiet mode, got %q", logs.String())
	}
}

func TestCLIErrorAdapter_FormatConfigVerbose(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)
	msg := adapter.FormatError(ConfigError("telegram token is required").Build())
	if msg != "[config:fatal] telegram token is required" {
		t.Errorf("unexpected config message %q", msg)
	}
}
