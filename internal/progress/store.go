package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"git.home.luguber.info/inful/disciplinebot/internal/logfields"
)

// ChangeKind names a committed mutation.
type ChangeKind string

const (
	ChangeDayBegun     ChangeKind = "day_begun"
	ChangeDayAdvanced  ChangeKind = "day_advanced"
	ChangeOutcome      ChangeKind = "outcome"
	ChangeReset        ChangeKind = "reset"
	ChangeEscalation   ChangeKind = "escalation"
	ChangeTimerStarted ChangeKind = "timer_started"
	ChangeTimerStopped ChangeKind = "timer_stopped"
	ChangeWeeklyGoal   ChangeKind = "weekly_goal"
)

// Change describes a mutation after it has been persisted.
type Change struct {
	Kind   ChangeKind
	At     time.Time
	Date   string
	Day    int
	Status string
	Label  string
	State  State
}

// Observer is notified after each persisted mutation. Observers run
// synchronously under the store lock and must not call back into the Store.
type Observer interface {
	ObserveChange(ctx context.Context, c Change)
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the zone used for journal dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithObserver registers an observer for committed changes.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

// Store is the process-wide progress record. It is safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	state       State
	journal     map[string]string
	journalPath string
	statePath   string
	loc         *time.Location
	now         func() time.Time
	observers   []Observer
	lastSaved   time.Time

	// write persists one file; replaced in tests to simulate disk failures.
	write func(path string, data []byte) error
}

// Open loads (or initializes) the store backed by the given files.
func Open(journalPath, statePath string, opts ...Option) (*Store, error) {
	s := &Store{
		state:       NewState(),
		journal:     make(map[string]string),
		journalPath: journalPath,
		statePath:   statePath,
		loc:         time.Local,
		now:         time.Now,
		write:       writeFileAtomic,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(); err != nil {
		return nil, ErrLoadFailed.Wrap(err).WithContext("journal", journalPath).WithContext("state", statePath)
	}
	return s, nil
}

func (s *Store) load() error {
	journalData, err := os.ReadFile(s.journalPath)
	switch {
	case err == nil:
		if len(bytes.TrimSpace(journalData)) > 0 {
			if err := json.Unmarshal(journalData, &s.journal); err != nil {
				return fmt.Errorf("decode journal: %w", err)
			}
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("read journal: %w", err)
	}
	if s.journal == nil {
		s.journal = make(map[string]string)
	}

	stateData, err := os.ReadFile(s.statePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read state: %w", err)
	}
	if len(bytes.TrimSpace(stateData)) == 0 {
		s.state.Strikes, s.state.Streak = deriveCounters(s.journal)
		if len(s.journal) > 0 {
			slog.Info("Derived counters from journal",
				slog.Int("entries", len(s.journal)),
				slog.Int("strike", s.state.Strikes),
				slog.Int("streak", s.state.Streak))
		}
		return nil
	}

	st := NewState()
	if err := json.Unmarshal(stateData, &st); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	if st.Day < 1 {
		st.Day = 1
	}
	if st.Timers == nil {
		st.Timers = map[string]time.Time{}
	}
	s.state = st
	if info, err := os.Stat(s.statePath); err == nil {
		s.lastSaved = info.ModTime()
	}
	slog.Debug("Restored progress state", logfields.Path(s.statePath), logfields.Day(st.Day))
	return nil
}

// Today returns the current journal date in the store's zone.
func (s *Store) Today() string {
	return s.now().In(s.loc).Format(time.DateOnly)
}

// Now returns the store clock's current time in the store's zone.
func (s *Store) Now() time.Time {
	return s.now().In(s.loc)
}

// Snapshot returns a copy of the current record.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// LastSaved reports when the store was last persisted successfully.
func (s *Store) LastSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// mutate runs fn against the record under the lock, persists, and rolls back
// on persistence failure. fn returns the change to broadcast, or an error to
// abort without persisting.
func (s *Store) mutate(ctx context.Context, fn func(st *State, journal map[string]string) (*Change, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevState := s.state.clone()
	prevJournal := maps.Clone(s.journal)

	change, err := fn(&s.state, s.journal)
	if err != nil {
		s.state, s.journal = prevState, prevJournal
		return s.state.clone(), err
	}

	if err := s.persistLocked(); err != nil {
		s.state, s.journal = prevState, prevJournal
		// The journal may already have been replaced when the state write
		// failed; put the previous content back so both files agree.
		if restoreErr := s.persistLocked(); restoreErr != nil {
			slog.Warn("Failed to restore progress files after write error", logfields.Error(restoreErr))
		}
		return s.state.clone(), ErrPersistenceFailure.Wrap(err)
	}

	snapshot := s.state.clone()
	if change != nil {
		change.State = snapshot
		if change.At.IsZero() {
			change.At = s.now().In(s.loc)
		}
		for _, o := range s.observers {
			o.ObserveChange(ctx, *change)
		}
	}
	return snapshot, nil
}

// BeginDay clears the confirmation flag for a newly issued day.
func (s *Store) BeginDay(ctx context.Context) (State, error) {
	return s.mutate(ctx, func(st *State, _ map[string]string) (*Change, error) {
		st.Confirmed = false
		return &Change{Kind: ChangeDayBegun, Date: s.Today(), Day: st.Day}, nil
	})
}

// AdvanceDay confirms today and moves to the next plan day. A repeated call
// before the next BeginDay returns ErrAlreadyConfirmed and leaves Day unchanged.
func (s *Store) AdvanceDay(ctx context.Context) (State, error) {
	return s.mutate(ctx, func(st *State, _ map[string]string) (*Change, error) {
		if st.Confirmed {
			return nil, ErrAlreadyConfirmed.WithContext("day", st.Day)
		}
		confirmedDay := st.Day
		st.Confirmed = true
		st.Day++
		return &Change{Kind: ChangeDayAdvanced, Date: s.Today(), Day: confirmedDay, Status: "confirmed"}, nil
	})
}

// RecordOutcome upserts the journal entry for date. "done" increments the
// streak and clears strikes; "fail" increments strikes and clears the streak;
// other text only updates the journal. Re-recording the same outcome for a
// date does not count twice.
func (s *Store) RecordOutcome(ctx context.Context, date, outcome string) (State, error) {
	if outcome == "" {
		return s.Snapshot(), ErrEmptyOutcome
	}
	return s.mutate(ctx, func(st *State, journal map[string]string) (*Change, error) {
		previous, existed := journal[date]
		journal[date] = outcome

		if !existed || previous != outcome {
			switch outcome {
			case OutcomeDone:
				st.Streak++
				st.Strikes = 0
			case OutcomeFail:
				st.Strikes++
				st.Streak = 0
			}
		}
		return &Change{Kind: ChangeOutcome, Date: date, Day: st.Day, Status: outcome}, nil
	})
}

// StartTimer records the start of a task; an existing timer for label is replaced.
func (s *Store) StartTimer(ctx context.Context, label string, at time.Time) (State, error) {
	label = NormalizeLabel(label)
	return s.mutate(ctx, func(st *State, _ map[string]string) (*Change, error) {
		st.Timers[label] = at
		return &Change{Kind: ChangeTimerStarted, At: at, Label: label, Day: st.Day}, nil
	})
}

// StopTimer removes the timer for label and returns the elapsed time.
// It returns ErrTimerNotFound if no timer is running for label.
func (s *Store) StopTimer(ctx context.Context, label string, at time.Time) (time.Duration, error) {
	label = NormalizeLabel(label)
	var elapsed time.Duration
	_, err := s.mutate(ctx, func(st *State, _ map[string]string) (*Change, error) {
		start, ok := st.Timers[label]
		if !ok {
			return nil, ErrTimerNotFound.WithContext("label", label)
		}
		delete(st.Timers, label)
		elapsed = max(at.Sub(start), 0)
		return &Change{Kind: ChangeTimerStopped, At: at, Label: label, Day: st.Day, Status: elapsed.String()}, nil
	})
	if err != nil {
		return 0, err
	}
	return elapsed, nil
}

// SetEscalation turns hellmode on or off.
func (s *Store) SetEscalation(ctx context.Context, on bool) (State, error) {
	return s.mutate(ctx, func(st *State, _ map[string]string) (*Change, error) {
		st.Hellmode = on
		status := "off"
		if on {
			status = "on"
		}
		return &Change{Kind: ChangeEscalation, Day: st.Day, Status: status}, nil
	})
}

// SetWeeklyGoal stores the goal for the week.
func (s *Store) SetWeeklyGoal(ctx context.Context, goal string) (State, error) {
	return s.mutate(ctx, func(st *State, _ map[string]string) (*Change, error) {
		st.WeeklyGoal = goal
		return &Change{Kind: ChangeWeeklyGoal, Day: st.Day, Status: goal}, nil
	})
}

// ResetToDayOne restarts the plan: day 1, unconfirmed, counters and timers
// cleared. The journal, hellmode and weekly goal are kept.
func (s *Store) ResetToDayOne(ctx context.Context) (State, error) {
	return s.mutate(ctx, func(st *State, _ map[string]string) (*Change, error) {
		st.Day = 1
		st.Confirmed = false
		st.Strikes = 0
		st.Streak = 0
		clear(st.Timers)
		return &Change{Kind: ChangeReset, Date: s.Today(), Day: 1, Status: "reset"}, nil
	})
}

// JournalEntry returns the outcome recorded for date.
func (s *Store) JournalEntry(date string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.journal[date]
	return v, ok
}

// Journal returns all entries ordered by date.
func (s *Store) Journal() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.journal))
	for d, o := range s.journal {
		entries = append(entries, Entry{Date: d, Outcome: o})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries
}

// Summarize counts outcomes over the trailing window of days calendar days
// ending at (and including) the date of end.
func (s *Store) Summarize(end time.Time, days int) Summary {
	if days < 1 {
		days = 1
	}
	end = end.In(s.loc)
	start := end.AddDate(0, 0, -(days - 1))
	sum := Summary{
		From: start.Format(time.DateOnly),
		To:   end.Format(time.DateOnly),
		Days: days,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range days {
		date := start.AddDate(0, 0, i).Format(time.DateOnly)
		outcome, ok := s.journal[date]
		if !ok {
			continue
		}
		sum.Logged++
		switch outcome {
		case OutcomeDone:
			sum.Done++
		case OutcomeFail:
			sum.Fail++
		}
	}
	return sum
}

// persistLocked writes journal and state. Caller holds s.mu.
func (s *Store) persistLocked() error {
	journalData, err := marshalIndent(s.journal)
	if err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	stateData, err := marshalIndent(s.state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.write(s.journalPath, journalData); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	if err := s.write(s.statePath, stateData); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	s.lastSaved = s.now()
	return nil
}

// marshalIndent pretty prints v without escaping non-ASCII or HTML characters.
func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a sibling temp file and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
