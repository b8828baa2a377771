package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/disciplinebot/internal/config"
	"git.home.luguber.info/inful/disciplinebot/internal/logfields"
)

// Scheduler wraps a gocron scheduler running in one fixed-offset zone.
// Missed runs (process down at fire time) are not replayed.
type Scheduler struct {
	scheduler gocron.Scheduler
	loc       *time.Location
	started   atomic.Bool
}

// ScheduledJob describes a registered job for status output.
type ScheduledJob struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
}

// NewScheduler creates a scheduler whose wall-clock times are interpreted in loc.
func NewScheduler(loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, loc: loc}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start(_ context.Context) {
	slog.Info("Starting scheduler", slog.String("zone", s.loc.String()))
	s.scheduler.Start()
	s.started.Store(true)
}

// Stop shuts the scheduler down and waits for running tasks. It is a no-op
// if the scheduler was never started.
func (s *Scheduler) Stop(_ context.Context) error {
	if !s.started.CompareAndSwap(true, false) {
		return nil
	}
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleDaily runs task every day at the given local time.
func (s *Scheduler) ScheduleDaily(name string, at config.ClockTime, task func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(atTime(at))),
		gocron.NewTask(task),
		gocron.WithName(name),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create daily job %s: %w", name, err)
	}
	slog.Debug("Scheduled daily job", logfields.JobKind(name), slog.String("at", at.String()))
	return job.ID().String(), nil
}

// ScheduleWeekly runs task once a week on day at the given local time.
func (s *Scheduler) ScheduleWeekly(name string, day time.Weekday, at config.ClockTime, task func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(day), gocron.NewAtTimes(atTime(at))),
		gocron.NewTask(task),
		gocron.WithName(name),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create weekly job %s: %w", name, err)
	}
	slog.Debug("Scheduled weekly job", logfields.JobKind(name),
		slog.String("day", day.String()), slog.String("at", at.String()))
	return job.ID().String(), nil
}

// Jobs returns the registered jobs ordered by next run.
func (s *Scheduler) Jobs() []ScheduledJob {
	jobs := s.scheduler.Jobs()
	out := make([]ScheduledJob, 0, len(jobs))
	for _, j := range jobs {
		next, err := j.NextRun()
		if err != nil {
			next = time.Time{}
		}
		out = append(out, ScheduledJob{Name: j.Name(), NextRun: next})
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].NextRun.Equal(out[k].NextRun) {
			return out[i].Name < out[k].Name
		}
		return out[i].NextRun.Before(out[k].NextRun)
	})
	return out
}

func atTime(t config.ClockTime) gocron.AtTime {
	return gocron.NewAtTime(uint(t.Hour), uint(t.Minute), 0)
}
