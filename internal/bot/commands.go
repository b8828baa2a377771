package bot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/disciplinebot/internal/logfields"
	"git.home.luguber.info/inful/disciplinebot/internal/metrics"
	"git.home.luguber.info/inful/disciplinebot/internal/plan"
	"git.home.luguber.info/inful/disciplinebot/internal/progress"
)

type commandFunc func(h *Handler, ctx context.Context, args []string) (Message, error)

// Commands lists the supported slash commands with their short descriptions,
// in the order they are registered with the transport.
var Commands = []struct {
	Name        string
	Description string
}{
	{"start", "Почати / перезапустити день"},
	{"help", "Довідка"},
	{"status", "Статус дня"},
	{"done", "Підтвердити день"},
	{"plan", "План на день"},
	{"journal", "Журнал"},
	{"summary", "Підсумок тижня"},
	{"goal", "Ціль на тиждень"},
	{"hellmode", "Hellmode on/off"},
	{"begin", "Почати завдання"},
	{"end", "Завершити завдання"},
	{"reset", "Скинути до Дня 1"},
}

var commandTable = map[string]commandFunc{
	"start":    (*Handler).cmdStart,
	"help":     (*Handler).cmdHelp,
	"status":   (*Handler).cmdStatus,
	"done":     (*Handler).cmdDone,
	"plan":     (*Handler).cmdPlan,
	"journal":  (*Handler).cmdJournal,
	"summary":  (*Handler).cmdSummary,
	"goal":     (*Handler).cmdGoal,
	"hellmode": (*Handler).cmdHellmode,
	"begin":    (*Handler).cmdBegin,
	"end":      (*Handler).cmdEnd,
	"reset":    (*Handler).cmdReset,
}

func (h *Handler) handleCommand(ctx context.Context, u CommandUpdate) error {
	name := strings.ToLower(u.Name)
	fn, ok := commandTable[name]
	if !ok {
		slog.Debug("Unknown command", logfields.Command(name))
		h.recorder.IncCommand("unknown", metrics.ResultRejected)
		h.sendText(ctx, textUnknownCommand)
		return nil
	}

	msg, err := fn(h, ctx, u.Args)
	h.recorder.IncCommand(name, resultFor(err))
	if err != nil && errors.Is(err, progress.ErrPersistenceFailure) {
		slog.Error("Command failed to persist", logfields.Command(name), logfields.Error(err))
		h.sendText(ctx, textPersistFailed)
		return err
	}
	if err != nil {
		slog.Info("Command rejected", logfields.Command(name), logfields.Error(err))
	} else {
		slog.Info("Command handled", logfields.Command(name))
	}
	h.send(ctx, msg)
	return nil
}

func (h *Handler) cmdStart(_ context.Context, _ []string) (Message, error) {
	return Message{
		Text:    textStart,
		Choices: [][]Choice{{{Text: textPlanButton, Action: ActionShowPlan}}},
	}, nil
}

func (h *Handler) cmdHelp(_ context.Context, _ []string) (Message, error) {
	return Message{Text: renderHelp(h.rules), Markdown: true}, nil
}

func (h *Handler) cmdStatus(_ context.Context, _ []string) (Message, error) {
	st := h.store.Snapshot()
	report, ok := h.store.JournalEntry(h.store.Today())
	if !ok {
		report = textNoReport
	}
	return Message{Text: renderStatus(st, report, h.rules, h.store.Now())}, nil
}

func (h *Handler) cmdDone(ctx context.Context, _ []string) (Message, error) {
	st, err := h.store.AdvanceDay(ctx)
	switch {
	case errors.Is(err, progress.ErrAlreadyConfirmed):
		return Message{Text: textAlreadyDone}, err
	case err != nil:
		return Message{}, err
	}
	return Message{Text: renderConfirmed(st)}, nil
}

func (h *Handler) cmdPlan(_ context.Context, args []string) (Message, error) {
	day := h.store.Snapshot().Day
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return Message{Text: textPlanUsage}, nil
		}
		day = n
	}
	d, ok := h.plans.Lookup(day)
	if !ok {
		return Message{Text: renderPlanMissing(day)}, plan.ErrDayNotFound.WithContext("day", day)
	}
	return Message{Text: renderPlan(day, d)}, nil
}

func (h *Handler) cmdJournal(_ context.Context, _ []string) (Message, error) {
	return Message{Text: renderJournal(h.store.Journal())}, nil
}

func (h *Handler) cmdSummary(_ context.Context, _ []string) (Message, error) {
	return Message{Text: renderSummary(h.store.Summarize(h.store.Now(), h.rules.SummaryDays))}, nil
}

func (h *Handler) cmdGoal(ctx context.Context, args []string) (Message, error) {
	goal := strings.TrimSpace(strings.Join(args, " "))
	if goal == "" {
		goal = h.rules.DefaultGoal
	}
	if _, err := h.store.SetWeeklyGoal(ctx, goal); err != nil {
		return Message{}, err
	}
	return Message{Text: renderGoal(goal)}, nil
}

// cmdHellmode turns escalation on without an argument, or sets it from on/off.
func (h *Handler) cmdHellmode(ctx context.Context, args []string) (Message, error) {
	on := true
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "on", "1", "true":
		case "off", "0", "false":
			on = false
		default:
			return Message{Text: textHellmodeUsage}, nil
		}
	}
	if _, err := h.store.SetEscalation(ctx, on); err != nil {
		return Message{}, err
	}
	if on {
		return Message{Text: textHellmodeOn}, nil
	}
	return Message{Text: textHellmodeOff}, nil
}

func (h *Handler) cmdBegin(ctx context.Context, args []string) (Message, error) {
	label := progress.NormalizeLabel(strings.Join(args, " "))
	if _, err := h.store.StartTimer(ctx, label, h.store.Now()); err != nil {
		return Message{}, err
	}
	slog.Info("Timer started", logfields.Label(label))
	return Message{Text: renderTimerStarted(label)}, nil
}

func (h *Handler) cmdEnd(ctx context.Context, args []string) (Message, error) {
	label := progress.NormalizeLabel(strings.Join(args, " "))
	elapsed, err := h.store.StopTimer(ctx, label, h.store.Now())
	switch {
	case errors.Is(err, progress.ErrTimerNotFound):
		return Message{Text: textTimerNotFound}, err
	case err != nil:
		return Message{}, err
	}
	slog.Info("Timer stopped", logfields.Label(label), logfields.Elapsed(elapsed))
	return Message{Text: renderTimerStopped(label, elapsed)}, nil
}

func (h *Handler) cmdReset(ctx context.Context, _ []string) (Message, error) {
	if _, err := h.store.ResetToDayOne(ctx); err != nil {
		return Message{}, err
	}
	return Message{Text: textReset}, nil
}
