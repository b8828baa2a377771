package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"git.home.luguber.info/inful/disciplinebot/internal/bot"
	"git.home.luguber.info/inful/disciplinebot/internal/config"
	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
)

// FireCmd implements the 'fire' command. It talks to the monitoring listener
// of a running bot, so monitoring.http_addr must be set.
type FireCmd struct {
	Trigger string        `arg:"" enum:"issue-daily-task,midday-reminder,afternoon-check,journal-prompt,weekly-summary" help:"Trigger to fire"`
	Timeout time.Duration `help:"Request timeout" default:"10s"`
}

func (f *FireCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.LoadLocal(root.Config)
	if err != nil {
		return err
	}
	if cfg.Monitoring.HTTPAddr == "" {
		return errors.ConfigError("monitoring.http_addr is not set; the running bot has no control endpoint").Build()
	}
	return fireTrigger(g, cfg.Monitoring.HTTPAddr, bot.Trigger(f.Trigger), f.Timeout)
}

func fireTrigger(g *Global, addr string, t bot.Trigger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	url := "http://" + addr + "/triggers/" + string(t)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.WrapError(err, errors.CategoryTransport, "bot is not reachable").
			WithContext("addr", addr).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusAccepted {
		return errors.TransportError(fmt.Sprintf("trigger rejected with %s", resp.Status)).
			WithContext("body", string(body)).
			Build()
	}
	g.printf("%s queued\n", t)
	return nil
}
