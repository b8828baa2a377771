package daemon

import (
	"time"

	"git.home.luguber.info/inful/disciplinebot/internal/version"
)

// ProgressStatus is the read-only projection of the state record.
type ProgressStatus struct {
	Day        int      `json:"day"`
	Confirmed  bool     `json:"confirmed"`
	Strikes    int      `json:"strike"`
	StrikeMax  int      `json:"strike_limit"`
	Streak     int      `json:"streak"`
	Hellmode   bool     `json:"hellmode"`
	WeeklyGoal string   `json:"weekly_goal,omitempty"`
	Timers     []string `json:"timers,omitempty"`
	Today      string   `json:"today"`
	Report     string   `json:"report,omitempty"`
}

// QueueStatus summarizes the work queue.
type QueueStatus struct {
	Length    int   `json:"length"`
	Capacity  int   `json:"capacity"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

// StatusResponse is served on /status.
type StatusResponse struct {
	Status    Status         `json:"status"`
	Version   string         `json:"version"`
	StartedAt time.Time      `json:"started_at"`
	LastSaved time.Time      `json:"last_saved,omitempty"`
	Progress  ProgressStatus `json:"progress"`
	PlanDays  int            `json:"plan_days"`
	Queue     QueueStatus    `json:"queue"`
	Triggers  []ScheduledJob `json:"triggers"`
}

// StatusSnapshot assembles the current status.
func (d *Daemon) StatusSnapshot() StatusResponse {
	st := d.store.Snapshot()
	today := d.store.Today()
	report, _ := d.store.JournalEntry(today)

	return StatusResponse{
		Status:    d.GetStatus(),
		Version:   version.Version,
		StartedAt: d.startTime,
		LastSaved: d.store.LastSaved(),
		Progress: ProgressStatus{
			Day:        st.Day,
			Confirmed:  st.Confirmed,
			Strikes:    st.Strikes,
			StrikeMax:  d.config.Rules.StrikeLimit,
			Streak:     st.Streak,
			Hellmode:   st.Hellmode,
			WeeklyGoal: st.WeeklyGoal,
			Timers:     st.TimerLabels(),
			Today:      today,
			Report:     report,
		},
		PlanDays: d.plans.LastDay(),
		Queue: QueueStatus{
			Length:    d.queue.Length(),
			Capacity:  d.queue.Capacity(),
			Processed: d.queue.Processed(),
			Failed:    d.queue.Failed(),
			Dropped:   d.queue.Dropped(),
		},
		Triggers: d.scheduler.Jobs(),
	}
}
