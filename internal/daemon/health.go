package daemon

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/disciplinebot/internal/bot"
	"git.home.luguber.info/inful/disciplinebot/internal/version"
)

// HealthStatus represents the overall health of the daemon
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck represents a single health check
type HealthCheck struct {
	Name        string        `json:"name"`
	Status      HealthStatus  `json:"status"`
	Message     string        `json:"message,omitempty"`
	Duration    time.Duration `json:"duration"`
	LastChecked time.Time     `json:"last_checked"`
}

// HealthResponse represents the complete health check response
type HealthResponse struct {
	Status    HealthStatus  `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Version   string        `json:"version"`
	Checks    []HealthCheck `json:"checks"`
}

// PerformHealthChecks executes all health checks and returns the overall status.
// The daemon check decides between healthy and unhealthy; the rest can only degrade.
func (d *Daemon) PerformHealthChecks() *HealthResponse {
	checks := []HealthCheck{
		timed("daemon_status", d.checkDaemonHealth),
		timed("work_queue", d.checkQueueHealth),
		timed("plan", d.checkPlanHealth),
		timed("scheduler", d.checkSchedulerHealth),
	}

	overall := HealthStatusHealthy
	for i, c := range checks {
		switch {
		case i == 0 && c.Status == HealthStatusUnhealthy:
			overall = HealthStatusUnhealthy
		case c.Status != HealthStatusHealthy && overall == HealthStatusHealthy:
			overall = HealthStatusDegraded
		}
	}

	uptime := ""
	if !d.startTime.IsZero() {
		uptime = time.Since(d.startTime).Round(time.Second).String()
	}
	return &HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Uptime:    uptime,
		Version:   version.Version,
		Checks:    checks,
	}
}

func timed(name string, fn func() (HealthStatus, string)) HealthCheck {
	start := time.Now()
	status, msg := fn()
	return HealthCheck{
		Name:        name,
		Status:      status,
		Message:     msg,
		Duration:    time.Since(start),
		LastChecked: time.Now(),
	}
}

func (d *Daemon) checkDaemonHealth() (HealthStatus, string) {
	switch d.GetStatus() {
	case StatusRunning:
		return HealthStatusHealthy, "Daemon is running normally"
	case StatusStarting:
		return HealthStatusDegraded, "Daemon is still starting up"
	case StatusStopping:
		return HealthStatusDegraded, "Daemon is shutting down"
	default:
		return HealthStatusUnhealthy, fmt.Sprintf("Daemon is %s", d.GetStatus())
	}
}

func (d *Daemon) checkQueueHealth() (HealthStatus, string) {
	length, capacity := d.queue.Length(), d.queue.Capacity()
	msg := fmt.Sprintf("%d/%d pending, %d dropped", length, capacity, d.queue.Dropped())
	if length*5 >= capacity*4 {
		return HealthStatusDegraded, msg
	}
	return HealthStatusHealthy, msg
}

func (d *Daemon) checkPlanHealth() (HealthStatus, string) {
	last := d.plans.LastDay()
	if last == 0 {
		return HealthStatusDegraded, "Plan is empty"
	}
	day := d.store.Snapshot().Day
	if day > last {
		return HealthStatusHealthy, fmt.Sprintf("Plan completed (%d days)", last)
	}
	return HealthStatusHealthy, fmt.Sprintf("Day %d of %d", day, last)
}

func (d *Daemon) checkSchedulerHealth() (HealthStatus, string) {
	jobs := d.scheduler.Jobs()
	want := len(bot.Triggers())
	if len(jobs) != want {
		return HealthStatusDegraded, fmt.Sprintf("%d of %d triggers scheduled", len(jobs), want)
	}
	return HealthStatusHealthy, fmt.Sprintf("next: %s at %s", jobs[0].Name, jobs[0].NextRun.Format(time.RFC3339))
}
