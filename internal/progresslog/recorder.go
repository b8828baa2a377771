package progresslog

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/disciplinebot/internal/logfields"
	"git.home.luguber.info/inful/disciplinebot/internal/progress"
)

// Recorder appends committed progress changes to a Store. It implements
// progress.Observer; only day confirmations, outcomes and resets are logged.
type Recorder struct {
	store Store
}

// NewRecorder wraps store as a progress observer.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// ObserveChange implements progress.Observer.
func (r *Recorder) ObserveChange(ctx context.Context, c progress.Change) {
	var status string
	switch c.Kind {
	case progress.ChangeDayAdvanced, progress.ChangeOutcome:
		status = c.Status
	case progress.ChangeReset:
		status = "reset"
	default:
		return
	}

	if err := r.store.Append(ctx, Entry{Timestamp: c.At, Day: c.Day, Status: status}); err != nil {
		slog.Error("Failed to append progress log entry",
			logfields.Day(c.Day),
			logfields.Outcome(status),
			logfields.Error(err))
	}
}
