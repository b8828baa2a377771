package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/disciplinebot/internal/config"
	"git.home.luguber.info/inful/disciplinebot/internal/progress"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// NewGlobal returns the context used by main: output goes to stdout.
func NewGlobal() *Global {
	return &Global{Logger: slog.Default(), Out: os.Stdout}
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run     RunCmd     `cmd:"" default:"withargs" help:"Run the bot: poll Telegram and fire the daily triggers"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Status  StatusCmd  `cmd:"" help:"Print the current progress state"`
	Journal JournalCmd `cmd:"" help:"Print the daily journal"`
	Plan    PlanCmd    `cmd:"" help:"Print the plan for a day"`
	Log     LogCmd     `cmd:"" help:"Print the append-only progress log"`
	Fire    FireCmd    `cmd:"" help:"Ask a running bot to fire a trigger now"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(g.out(), format, args...)
}

// openStore opens the progress files read-only in spirit: nothing here mutates them.
func openStore(cfg *config.Config) (*progress.Store, error) {
	return progress.Open(cfg.Storage.JournalPath(), cfg.Storage.StatePath(),
		progress.WithLocation(cfg.Location()))
}
