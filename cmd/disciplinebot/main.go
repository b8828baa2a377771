package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/disciplinebot/cmd/disciplinebot/commands"
	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
	"git.home.luguber.info/inful/disciplinebot/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("disciplinebot"),
		kong.Description("Single-user accountability bot for Telegram."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if err := ctx.Run(commands.NewGlobal(), &cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
