package commands

import (
	"git.home.luguber.info/inful/disciplinebot/internal/config"
	"git.home.luguber.info/inful/disciplinebot/internal/plan"
)

// PlanCmd implements the 'plan' command.
type PlanCmd struct {
	Day int  `arg:"" optional:"" help:"Day number (defaults to the current day)"`
	All bool `help:"Print every day of the plan"`
}

func (p *PlanCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.LoadLocal(root.Config)
	if err != nil {
		return err
	}
	table, err := plan.Load(cfg.Storage.PlanFile)
	if err != nil {
		return err
	}

	if p.All {
		for _, n := range table.Days() {
			d, _ := table.Lookup(n)
			printDay(g, d)
		}
		return nil
	}

	day := p.Day
	if day <= 0 {
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		day = store.Snapshot().Day
	}
	d, err := table.Get(day)
	if err != nil {
		return err
	}
	printDay(g, d)
	return nil
}

func printDay(g *Global, d plan.Day) {
	g.printf("Day %d\n", d.Number)
	for _, line := range d.Lines() {
		g.printf("  - %s\n", line)
	}
}
