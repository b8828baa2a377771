package bot

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/disciplinebot/internal/logfields"
	"git.home.luguber.info/inful/disciplinebot/internal/metrics"
	"git.home.luguber.info/inful/disciplinebot/internal/progress"
)

// Trigger names a scheduled handler.
type Trigger string

const (
	TriggerDailyTask     Trigger = "issue-daily-task"
	TriggerMidday        Trigger = "midday-reminder"
	TriggerAfternoon     Trigger = "afternoon-check"
	TriggerJournalPrompt Trigger = "journal-prompt"
	TriggerWeeklySummary Trigger = "weekly-summary"
)

// Triggers lists every scheduled trigger.
func Triggers() []Trigger {
	return []Trigger{TriggerDailyTask, TriggerMidday, TriggerAfternoon, TriggerJournalPrompt, TriggerWeeklySummary}
}

// Fire runs the handler for t.
func (h *Handler) Fire(ctx context.Context, t Trigger) error {
	start := time.Now()
	var err error
	switch t {
	case TriggerDailyTask:
		err = h.IssueDailyTask(ctx)
	case TriggerMidday:
		h.MiddayReminder(ctx)
	case TriggerAfternoon:
		h.AfternoonCheck(ctx)
	case TriggerJournalPrompt:
		err = h.JournalPrompt(ctx)
	case TriggerWeeklySummary:
		h.WeeklySummary(ctx)
	default:
		return ErrUnknownTrigger.WithContext("trigger", string(t))
	}

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailed
		slog.Error("Trigger failed", logfields.Trigger(string(t)), logfields.Error(err))
	} else {
		slog.Info("Trigger fired", logfields.Trigger(string(t)), logfields.Elapsed(time.Since(start)))
	}
	h.recorder.ObserveTrigger(string(t), time.Since(start), result)
	h.recordProgress()
	return err
}

// IssueDailyTask sends the current day's tasks and opens the day for
// confirmation. Once the plan is exhausted it only sends a completion notice.
func (h *Handler) IssueDailyTask(ctx context.Context) error {
	st := h.store.Snapshot()
	d, ok := h.plans.Lookup(st.Day)
	if !ok && st.Day > h.plans.LastDay() {
		h.sendText(ctx, renderPlanComplete(h.plans.LastDay()))
		return nil
	}

	st, err := h.store.BeginDay(ctx)
	if err != nil {
		return err
	}

	tasks := d.Lines()
	if h.escalated(st) {
		tasks = append(tasks, h.rules.EscalationTasks...)
	}
	h.sendText(ctx, renderDailyTask(st.Day, tasks))
	return nil
}

func (h *Handler) escalated(st progress.State) bool {
	return st.Hellmode || (h.rules.EscalationAfterDay > 0 && st.Day > h.rules.EscalationAfterDay)
}

// MiddayReminder nags when the day is not confirmed yet.
func (h *Handler) MiddayReminder(ctx context.Context) {
	if h.store.Snapshot().Confirmed {
		return
	}
	h.sendText(ctx, renderReminder(h.randomQuote()))
}

// AfternoonCheck always asks for progress.
func (h *Handler) AfternoonCheck(ctx context.Context) {
	h.sendText(ctx, textAfternoon)
}

// JournalPrompt asks for the day's outcome. In penalty mode an unconfirmed
// day is recorded as failed right away.
func (h *Handler) JournalPrompt(ctx context.Context) error {
	h.send(ctx, Message{
		Text: textJournalPrompt,
		Choices: [][]Choice{
			{{Text: textJournalDoneBtn, Action: ActionJournalDone}},
			{{Text: textJournalFailBtn, Action: ActionJournalFail}},
		},
	})

	if !h.rules.PenaltyMode || h.store.Snapshot().Confirmed {
		return nil
	}
	date := h.store.Today()
	st, err := h.store.RecordOutcome(ctx, date, progress.OutcomeFail)
	if err != nil {
		return err
	}
	slog.Info("Unconfirmed day recorded as failed", logfields.Date(date), slog.Int("strike", st.Strikes))
	h.sendText(ctx, renderStrike(textPenaltyUnconfirm, st, h.rules))
	return nil
}

// WeeklySummary reports how many of the trailing days were done.
func (h *Handler) WeeklySummary(ctx context.Context) {
	h.sendText(ctx, renderSummary(h.store.Summarize(h.store.Now(), h.rules.SummaryDays)))
}
