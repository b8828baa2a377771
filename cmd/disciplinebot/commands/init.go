package commands

import (
	"git.home.luguber.info/inful/disciplinebot/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	g.printf("Writing configuration to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		g.printf("Initialization failed\n")
		return err
	}
	g.printf("initialized successfully\n")
	return nil
}
