package bot

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/disciplinebot/internal/logfields"
	"git.home.luguber.info/inful/disciplinebot/internal/progress"
)

func (h *Handler) handleCallback(ctx context.Context, u CallbackUpdate) error {
	action, err := ParseAction(u.Data)
	if err != nil {
		slog.Warn("Ignoring callback with unknown action", logfields.Action(u.Data))
		h.recorder.IncCommand("callback", resultFor(err))
		h.edit(ctx, u.Message, textUnknownAction)
		return err
	}

	var text string
	switch action {
	case ActionShowPlan:
		text = h.showPlanText()
	case ActionJournalDone:
		text, err = h.recordJournal(ctx, progress.OutcomeDone)
	case ActionJournalFail:
		text, err = h.recordJournal(ctx, progress.OutcomeFail)
	}
	h.recorder.IncCommand(action.String(), resultFor(err))
	if err != nil {
		slog.Error("Inline action failed", logfields.Action(action.String()), logfields.Error(err))
		h.edit(ctx, u.Message, textPersistFailed)
		return err
	}
	slog.Info("Inline action handled", logfields.Action(action.String()))
	h.edit(ctx, u.Message, text)
	return nil
}

func (h *Handler) showPlanText() string {
	day := h.store.Snapshot().Day
	d, ok := h.plans.Lookup(day)
	if !ok {
		return renderPlanMissing(day)
	}
	return renderPlan(day, d)
}

func (h *Handler) recordJournal(ctx context.Context, outcome string) (string, error) {
	date := h.store.Today()
	st, err := h.store.RecordOutcome(ctx, date, outcome)
	if err != nil {
		return "", err
	}
	slog.Info("Outcome recorded", logfields.Date(date), logfields.Outcome(outcome),
		slog.Int("strike", st.Strikes), slog.Int("streak", st.Streak))

	if outcome == progress.OutcomeDone {
		return renderJournalDone(st, h.rules), nil
	}
	return renderStrike("❌ Програв день.", st, h.rules), nil
}

