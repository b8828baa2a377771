package commands

import (
	"git.home.luguber.info/inful/disciplinebot/internal/config"
)

// JournalCmd implements the 'journal' command.
type JournalCmd struct {
	Days int `short:"n" help:"Also print a summary of the trailing N days (0 disables)" default:"7"`
}

func (j *JournalCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.LoadLocal(root.Config)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	entries := store.Journal()
	if len(entries) == 0 {
		g.printf("journal is empty\n")
	}
	for _, e := range entries {
		g.printf("%s  %s\n", e.Date, e.Outcome)
	}
	if j.Days > 0 {
		sum := store.Summarize(store.Now(), j.Days)
		g.printf("%s..%s: %d/%d done, %d failed\n", sum.From, sum.To, sum.Done, sum.Days, sum.Fail)
	}
	return nil
}
