package commands

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/disciplinebot/internal/config"
)

// StatusCmd implements the 'status' command.
type StatusCmd struct{}

func (s *StatusCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.LoadLocal(root.Config)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	st := store.Snapshot()
	today := store.Today()
	report, ok := store.JournalEntry(today)
	if !ok {
		report = "-"
	}

	g.printf("Day:         %d\n", st.Day)
	g.printf("Confirmed:   %t\n", st.Confirmed)
	g.printf("Strikes:     %d/%d\n", st.Strikes, cfg.Rules.StrikeLimit)
	g.printf("Streak:      %d\n", st.Streak)
	g.printf("Hellmode:    %t\n", st.Hellmode)
	if st.WeeklyGoal != "" {
		g.printf("Weekly goal: %s\n", st.WeeklyGoal)
	}
	g.printf("Today:       %s (%s)\n", today, report)
	if labels := st.TimerLabels(); len(labels) > 0 {
		now := store.Now()
		running := make([]string, 0, len(labels))
		for _, l := range labels {
			running = append(running, l+" "+now.Sub(st.Timers[l]).Round(time.Second).String())
		}
		g.printf("Timers:      %s\n", strings.Join(running, ", "))
	}
	if saved := store.LastSaved(); !saved.IsZero() {
		g.printf("Last saved:  %s\n", saved.In(cfg.Location()).Format(time.RFC3339))
	}
	return nil
}
