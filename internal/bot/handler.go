package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"git.home.luguber.info/inful/disciplinebot/internal/logfields"
	"git.home.luguber.info/inful/disciplinebot/internal/metrics"
	"git.home.luguber.info/inful/disciplinebot/internal/plan"
	"git.home.luguber.info/inful/disciplinebot/internal/progress"
)

// Rules carries the thresholds and texts the handlers need from configuration.
type Rules struct {
	StrikeLimit        int
	EscalationAfterDay int
	EscalationTasks    []string
	PenaltyMode        bool
	PenaltyText        string
	StreakAchievement  int
	DefaultGoal        string
	Quotes             []string
	SummaryDays        int

	// Displayed in /help.
	MiddayReminderAt string
	JournalPromptAt  string
}

// PlanLookup resolves a plan day. *plan.Source and *plan.Table satisfy it.
type PlanLookup interface {
	Lookup(day int) (plan.Day, bool)
	LastDay() int
}

// Option configures a Handler.
type Option func(*Handler)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(h *Handler) {
		if r != nil {
			h.recorder = r
		}
	}
}

// WithRandom overrides the quote picker; intn must return a value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(h *Handler) { h.intn = intn }
}

// unauthorizedCommand is the single metrics label for updates from other
// users; their command names and callback data never become label values.
const unauthorizedCommand = "unauthorized"

// Handler serves commands, inline actions and scheduled triggers for the
// single authorized user.
type Handler struct {
	userID   int64
	store    *progress.Store
	plans    PlanLookup
	notifier Notifier
	rules    Rules
	recorder metrics.Recorder
	intn     func(n int) int
}

// NewHandler wires a handler around an injected store, plan and notifier.
func NewHandler(userID int64, store *progress.Store, plans PlanLookup, notifier Notifier, rules Rules, opts ...Option) *Handler {
	if rules.SummaryDays <= 0 {
		rules.SummaryDays = 7
	}
	h := &Handler{
		userID:   userID,
		store:    store,
		plans:    plans,
		notifier: notifier,
		rules:    rules,
		recorder: metrics.NoopRecorder{},
		intn:     rand.IntN,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Authorize returns ErrUnauthorized unless u comes from the configured user.
func (h *Handler) Authorize(u Update) error {
	if u.Sender() != h.userID {
		return ErrUnauthorized.WithContext("user_id", u.Sender())
	}
	return nil
}

// Handle dispatches an inbound update. Updates from other users are dropped
// without reply or state change. The returned error is for logging only; the
// user has already been answered where an answer makes sense.
func (h *Handler) Handle(ctx context.Context, u Update) error {
	if err := h.Authorize(u); err != nil {
		slog.Debug("Dropping update from unauthorized user", logfields.UserID(u.Sender()))
		h.recorder.IncCommand(unauthorizedCommand, metrics.ResultDropped)
		return nil
	}

	var err error
	switch u := u.(type) {
	case CommandUpdate:
		err = h.handleCommand(ctx, u)
	case CallbackUpdate:
		err = h.handleCallback(ctx, u)
	default:
		err = fmt.Errorf("unsupported update type %T", u)
	}
	h.recordProgress()
	return err
}

// send delivers a message; failures are logged and counted but never undo state.
func (h *Handler) send(ctx context.Context, msg Message) {
	if _, err := h.notifier.Send(ctx, msg); err != nil {
		slog.Error("Failed to send message", logfields.Error(err))
		h.recorder.IncNotifyFailure("send")
	}
}

func (h *Handler) sendText(ctx context.Context, text string) {
	h.send(ctx, Message{Text: text})
}

func (h *Handler) edit(ctx context.Context, ref MessageRef, text string) {
	if err := h.notifier.Edit(ctx, ref, text); err != nil {
		slog.Error("Failed to edit message", logfields.Error(err))
		h.recorder.IncNotifyFailure("edit")
	}
}

func (h *Handler) recordProgress() {
	st := h.store.Snapshot()
	h.recorder.SetProgress(st.Day, st.Strikes, st.Streak, st.Hellmode)
}

func (h *Handler) randomQuote() string {
	if len(h.rules.Quotes) == 0 {
		return ""
	}
	return h.rules.Quotes[h.intn(len(h.rules.Quotes))]
}

// resultFor maps a handler error to a metrics label. User-facing rejections
// (missing timer, missing plan day, already confirmed) are not failures.
func resultFor(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, progress.ErrPersistenceFailure):
		return metrics.ResultFailed
	case errors.Is(err, progress.ErrTimerNotFound),
		errors.Is(err, progress.ErrAlreadyConfirmed),
		errors.Is(err, plan.ErrDayNotFound),
		errors.Is(err, ErrUnknownAction):
		return metrics.ResultRejected
	default:
		return metrics.ResultFailed
	}
}
