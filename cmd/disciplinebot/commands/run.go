package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/disciplinebot/internal/config"
	"git.home.luguber.info/inful/disciplinebot/internal/daemon"
	"git.home.luguber.info/inful/disciplinebot/internal/logfields"
	"git.home.luguber.info/inful/disciplinebot/internal/telegram"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	SkipCommandRegistration bool `help:"Do not publish the command menu to Telegram on startup"`
}

func (r *RunCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	client, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.UserID, telegram.Options{
		PollTimeout: cfg.Telegram.PollTimeout,
		Debug:       cfg.Telegram.Debug,
	})
	if err != nil {
		return err
	}
	if !r.SkipCommandRegistration {
		if err := client.RegisterCommands(); err != nil {
			slog.Warn("Failed to register command menu", logfields.Error(err))
		}
	}
	return RunDaemon(cfg, client)
}

// RunDaemon runs the bot until SIGINT or SIGTERM.
func RunDaemon(cfg *config.Config, transport daemon.Transport) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.New(cfg, transport)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- d.Start(ctx)
	}()

	slog.Info("Bot started, waiting for shutdown signal...")

	var runErr error
	select {
	case err := <-errChan:
		if err != nil {
			runErr = fmt.Errorf("daemon error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping bot...")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}

	slog.Info("Bot stopped")
	return runErr
}
