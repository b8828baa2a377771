// Package daemon runs the bot: it owns the progress store, schedules the
// daily triggers, funnels triggers and chat updates through a single-worker
// queue, and serves health and metrics over HTTP.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/disciplinebot/internal/bot"
	"git.home.luguber.info/inful/disciplinebot/internal/config"
	"git.home.luguber.info/inful/disciplinebot/internal/events"
	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
	"git.home.luguber.info/inful/disciplinebot/internal/logfields"
	"git.home.luguber.info/inful/disciplinebot/internal/metrics"
	"git.home.luguber.info/inful/disciplinebot/internal/plan"
	"git.home.luguber.info/inful/disciplinebot/internal/progress"
	"git.home.luguber.info/inful/disciplinebot/internal/progresslog"
	"git.home.luguber.info/inful/disciplinebot/internal/version"
)

// Status represents the current state of the daemon
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

// ErrUpdatesClosed indicates the transport closed its update stream while the daemon was running.
var ErrUpdatesClosed = errors.TransportError("update stream closed unexpectedly").Build()

// Transport is the chat connection: outbound notifications plus inbound updates.
type Transport interface {
	bot.Notifier
	Updates(ctx context.Context) <-chan bot.Update
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prom.Registry) Option {
	return func(d *Daemon) { d.registry = reg }
}

// WithClock overrides the progress store clock.
func WithClock(now func() time.Time) Option {
	return func(d *Daemon) { d.now = now }
}

// Daemon represents the main bot service
type Daemon struct {
	config    *config.Config
	status    atomic.Value // Status
	startTime time.Time
	stopChan  chan struct{}
	mu        sync.Mutex
	now       func() time.Time

	transport   Transport
	store       *progress.Store
	plans       *plan.Source
	handler     *bot.Handler
	queue       *Queue
	scheduler   *Scheduler
	httpServer  *HTTPServer
	progressLog progresslog.Store
	publisher   *events.Publisher
	registry    *prom.Registry
	recorder    metrics.Recorder
}

// New wires every component from cfg. Nothing runs until Start.
func New(cfg *config.Config, transport Transport, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.ConfigError("configuration is required").Build()
	}
	d := &Daemon{
		config:    cfg,
		stopChan:  make(chan struct{}),
		transport: transport,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.status.Store(StatusStopped)

	if d.registry == nil {
		d.registry = prom.NewRegistry()
	}
	d.recorder = metrics.NewPrometheusRecorder(d.registry)

	loc := cfg.Location()

	var err error
	d.progressLog, err = progresslog.Open(string(cfg.Storage.ProgressLog), cfg.Storage.ProgressLogPath(), loc)
	if err != nil {
		return nil, fmt.Errorf("open progress log: %w", err)
	}
	storeOpts := []progress.Option{
		progress.WithLocation(loc),
		progress.WithClock(d.now),
		progress.WithObserver(progresslog.NewRecorder(d.progressLog)),
	}

	if cfg.Events.NATSURL != "" {
		pub, err := events.Connect(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			// Events are optional; the bot works without them.
			slog.Warn("Progress events disabled", logfields.Error(err))
		} else {
			d.publisher = pub
			storeOpts = append(storeOpts, progress.WithObserver(pub))
		}
	}

	d.store, err = progress.Open(cfg.Storage.JournalPath(), cfg.Storage.StatePath(), storeOpts...)
	if err != nil {
		d.closeStorage()
		return nil, err
	}

	d.plans, err = plan.NewSource(cfg.Storage.PlanFile)
	if err != nil {
		d.closeStorage()
		return nil, err
	}

	d.handler = bot.NewHandler(cfg.Telegram.UserID, d.store, d.plans, transport, RulesFromConfig(cfg), bot.WithRecorder(d.recorder))
	d.queue = NewQueue(cfg.Queue.Size, d.recorder)

	d.scheduler, err = NewScheduler(loc)
	if err != nil {
		d.closeStorage()
		return nil, err
	}

	if cfg.Monitoring.HTTPAddr != "" {
		d.httpServer = NewHTTPServer(cfg.Monitoring.HTTPAddr, d)
	}

	st := d.store.Snapshot()
	d.recorder.SetProgress(st.Day, st.Strikes, st.Streak, st.Hellmode)
	return d, nil
}

// RulesFromConfig maps configuration onto handler rules.
func RulesFromConfig(cfg *config.Config) bot.Rules {
	return bot.Rules{
		StrikeLimit:        cfg.Rules.StrikeLimit,
		EscalationAfterDay: cfg.Rules.EscalationAfterDay,
		EscalationTasks:    cfg.Rules.EscalationTasks,
		PenaltyMode:        cfg.Rules.PenaltyMode,
		PenaltyText:        cfg.Rules.PenaltyText,
		StreakAchievement:  cfg.Rules.StreakAchievement,
		DefaultGoal:        cfg.Rules.WeeklyGoal,
		Quotes:             cfg.Rules.Quotes,
		SummaryDays:        7,
		MiddayReminderAt:   cfg.Schedule.MiddayReminder.String(),
		JournalPromptAt:    cfg.Schedule.JournalPrompt.String(),
	}
}

// Start brings every component up and then pumps chat updates into the queue
// until ctx is canceled or Stop is called. It blocks.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.GetStatus() != StatusStopped {
		d.mu.Unlock()
		return fmt.Errorf("daemon is not in stopped state: %s", d.GetStatus())
	}
	d.status.Store(StatusStarting)
	d.startTime = time.Now()
	slog.Info("Starting disciplinebot daemon", slog.String("version", version.Version))

	if d.httpServer != nil {
		if err := d.httpServer.Start(ctx); err != nil {
			d.status.Store(StatusError)
			d.mu.Unlock()
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}

	d.queue.Start(ctx)

	if err := d.registerTriggers(); err != nil {
		d.status.Store(StatusError)
		d.mu.Unlock()
		return err
	}
	d.scheduler.Start(ctx)

	if d.config.Storage.PlanWatchEnabled() {
		if err := d.plans.Watch(ctx); err != nil {
			slog.Error("Failed to start plan watcher", logfields.Error(err))
		}
	}

	d.status.Store(StatusRunning)
	st := d.store.Snapshot()
	slog.Info("Disciplinebot daemon started",
		logfields.Day(st.Day),
		slog.Int("plan_days", d.plans.LastDay()),
		slog.String("zone", d.config.Location().String()),
		logfields.Addr(d.config.Monitoring.HTTPAddr))

	d.mu.Unlock()

	return d.pumpUpdates(ctx)
}

func (d *Daemon) registerTriggers() error {
	s := d.config.Schedule
	daily := []struct {
		trigger bot.Trigger
		at      config.ClockTime
	}{
		{bot.TriggerDailyTask, s.DailyTask},
		{bot.TriggerMidday, s.MiddayReminder},
		{bot.TriggerAfternoon, s.AfternoonCheck},
		{bot.TriggerJournalPrompt, s.JournalPrompt},
	}
	for _, tr := range daily {
		if _, err := d.scheduler.ScheduleDaily(string(tr.trigger), tr.at, d.triggerTask(tr.trigger)); err != nil {
			return err
		}
	}
	_, err := d.scheduler.ScheduleWeekly(string(bot.TriggerWeeklySummary), time.Weekday(s.WeeklySummaryDay),
		s.WeeklySummary, d.triggerTask(bot.TriggerWeeklySummary))
	return err
}

// triggerTask is what gocron runs: it only enqueues, the worker does the work.
func (d *Daemon) triggerTask(t bot.Trigger) func() {
	return func() {
		if err := d.FireTrigger(t); err != nil {
			slog.Error("Failed to enqueue trigger", logfields.Trigger(string(t)), logfields.Error(err))
		}
	}
}

// FireTrigger enqueues t as if the scheduler had fired it.
func (d *Daemon) FireTrigger(t bot.Trigger) error {
	job := NewJob(JobKindTrigger, string(t), func(ctx context.Context) error {
		return d.handler.Fire(ctx, t)
	})
	return d.queue.Enqueue(job)
}

func (d *Daemon) pumpUpdates(ctx context.Context) error {
	updates := d.transport.Updates(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.stopChan:
			return nil
		case u, ok := <-updates:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrUpdatesClosed
			}
			job := NewJob(JobKindUpdate, updateName(u), func(ctx context.Context) error {
				return d.handler.Handle(ctx, u)
			})
			if err := d.queue.Enqueue(job); err != nil {
				slog.Error("Dropping chat update", logfields.UserID(u.Sender()), logfields.Error(err))
			}
		}
	}
}

func updateName(u bot.Update) string {
	switch u := u.(type) {
	case bot.CommandUpdate:
		return "/" + u.Name
	case bot.CallbackUpdate:
		return "callback:" + u.Data
	default:
		return "update"
	}
}

// Stop shuts components down in reverse start order.
func (d *Daemon) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	current := d.GetStatus()
	if current == StatusStopped || current == StatusStopping {
		return nil
	}
	d.status.Store(StatusStopping)
	slog.Info("Stopping disciplinebot daemon")

	select {
	case <-d.stopChan:
	default:
		close(d.stopChan)
	}

	if err := d.scheduler.Stop(ctx); err != nil {
		slog.Error("Failed to stop scheduler", logfields.Error(err))
	}
	d.queue.Stop(ctx)

	if d.httpServer != nil {
		if err := d.httpServer.Stop(ctx); err != nil {
			slog.Error("Failed to stop HTTP server", logfields.Error(err))
		}
	}
	if err := d.plans.Close(); err != nil {
		slog.Error("Failed to stop plan watcher", logfields.Error(err))
	}
	d.closeStorage()

	d.status.Store(StatusStopped)
	slog.Info("Disciplinebot daemon stopped", slog.Duration("uptime", time.Since(d.startTime)))
	return nil
}

func (d *Daemon) closeStorage() {
	if d.progressLog != nil {
		if err := d.progressLog.Close(); err != nil {
			slog.Error("Failed to close progress log", logfields.Error(err))
		}
	}
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			slog.Error("Failed to close NATS publisher", logfields.Error(err))
		}
	}
}

// GetStatus returns the current daemon status
func (d *Daemon) GetStatus() Status {
	status, ok := d.status.Load().(Status)
	if !ok {
		return StatusError
	}
	return status
}

// Store exposes the progress store (read-only use by status endpoints and tests).
func (d *Daemon) Store() *progress.Store { return d.store }

// Registry returns the metrics registry served on /metrics.
func (d *Daemon) Registry() *prom.Registry { return d.registry }
