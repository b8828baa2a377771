package progress

import (
	"maps"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Outcome tags written to the journal. Free text outcomes are allowed too.
const (
	OutcomeDone = "done"
	OutcomeFail = "fail"
)

// DefaultTimerLabel is used when begin/end are called without a label.
const DefaultTimerLabel = "No description"

// State is the persisted progress record.
type State struct {
	Day        int                  `json:"day"`
	Hellmode   bool                 `json:"hellmode"`
	Confirmed  bool                 `json:"confirmed"`
	Strikes    int                  `json:"strike"`
	Streak     int                  `json:"streak"`
	Timers     map[string]time.Time `json:"task_timer"`
	WeeklyGoal string               `json:"weekly_goal,omitempty"`
}

// NewState returns the day-one record.
func NewState() State {
	return State{Day: 1, Timers: map[string]time.Time{}}
}

func (s State) clone() State {
	c := s
	c.Timers = make(map[string]time.Time, len(s.Timers))
	maps.Copy(c.Timers, s.Timers)
	return c
}

// TimerLabels returns the running timer labels in sorted order.
func (s State) TimerLabels() []string {
	labels := make([]string, 0, len(s.Timers))
	for l := range s.Timers {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Entry is one journal line.
type Entry struct {
	Date    string `json:"date"`
	Outcome string `json:"outcome"`
}

// Summary aggregates outcomes over a trailing window of calendar days.
type Summary struct {
	From   string
	To     string
	Days   int
	Done   int
	Fail   int
	Logged int
}

// NormalizeLabel trims and NFC-normalizes a timer label so that visually
// identical labels typed on different keyboards map to the same timer.
func NormalizeLabel(label string) string {
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return DefaultTimerLabel
	}
	return norm.NFC.String(label)
}

// deriveCounters reconstructs strike/streak from the journal: the trailing run
// of identical done/fail outcomes, ordered by date.
func deriveCounters(journal map[string]string) (strikes, streak int) {
	dates := make([]string, 0, len(journal))
	for d := range journal {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	if len(dates) == 0 {
		return 0, 0
	}
	last := journal[dates[len(dates)-1]]
	if last != OutcomeDone && last != OutcomeFail {
		return 0, 0
	}
	run := 0
	for i := len(dates) - 1; i >= 0 && journal[dates[i]] == last; i-- {
		run++
	}
	if last == OutcomeDone {
		return 0, run
	}
	return run, 0
}
