package commands

import (
	"context"
	"time"

	"git.home.luguber.info/inful/disciplinebot/internal/config"
	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
	"git.home.luguber.info/inful/disciplinebot/internal/progresslog"
)

// LogCmd implements the 'log' command.
type LogCmd struct {
	Limit int    `short:"n" help:"Number of entries to print (0 prints all)" default:"20"`
	Since string `help:"First date to include (YYYY-MM-DD, local to the configured offset)"`
	Until string `help:"Last date to include (YYYY-MM-DD, local to the configured offset)"`
}

func (l *LogCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.LoadLocal(root.Config)
	if err != nil {
		return err
	}
	loc := cfg.Location()
	store, err := progresslog.Open(string(cfg.Storage.ProgressLog), cfg.Storage.ProgressLogPath(), loc)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := l.query(context.Background(), store, loc)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		g.printf("progress log is empty\n")
		return nil
	}
	for _, e := range entries {
		g.printf("%s  day %-3d %s\n", e.Timestamp.In(loc).Format(time.DateTime), e.Day, e.Status)
	}
	return nil
}

// query uses Range when a date window is given and keeps the newest Limit entries.
func (l *LogCmd) query(ctx context.Context, store progresslog.Store, loc *time.Location) ([]progresslog.Entry, error) {
	if l.Since == "" && l.Until == "" {
		return store.Recent(ctx, l.Limit)
	}

	var start time.Time
	end := time.Now().In(loc)
	if l.Since != "" {
		d, err := parseDate(l.Since, loc)
		if err != nil {
			return nil, err
		}
		start = d
	}
	if l.Until != "" {
		d, err := parseDate(l.Until, loc)
		if err != nil {
			return nil, err
		}
		end = d.AddDate(0, 0, 1).Add(-time.Second)
	}
	if end.Before(start) {
		return nil, errors.ValidationError("--until is before --since").
			WithContext("since", l.Since).
			WithContext("until", l.Until).
			Build()
	}

	entries, err := store.Range(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if l.Limit > 0 && len(entries) > l.Limit {
		entries = entries[len(entries)-l.Limit:]
	}
	return entries, nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, errors.ValidationError("invalid date, expected YYYY-MM-DD").
			WithContext("value", s).
			Build()
	}
	return d, nil
}
