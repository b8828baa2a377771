// Package telegram adapts the Telegram Bot API to the bot package: it
// implements bot.Notifier for the single configured chat and turns long-poll
// updates into bot.Update values.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"git.home.luguber.info/inful/disciplinebot/internal/bot"
	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
	"git.home.luguber.info/inful/disciplinebot/internal/logfields"
)

var (
	// ErrAuth indicates the token was rejected by Telegram.
	ErrAuth = errors.AuthError("telegram rejected the bot token").Fatal().Build()

	// ErrSend indicates a message could not be delivered.
	ErrSend = errors.TransportError("telegram request failed").Build()
)

// api is the subset of *tgbotapi.BotAPI the client uses.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Options tunes the client.
type Options struct {
	PollTimeout int // seconds
	Debug       bool
}

// Client talks to one chat: the configured user's private chat.
type Client struct {
	api         api
	chatID      int64
	pollTimeout int
}

// New authenticates with token and returns a client bound to chatID.
func New(token string, chatID int64, opts Options) (*Client, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, ErrAuth.Wrap(err)
	}
	botAPI.Debug = opts.Debug
	slog.Info("Authorized on Telegram", slog.String("bot", botAPI.Self.UserName))
	return newClient(botAPI, chatID, opts), nil
}

func newClient(a api, chatID int64, opts Options) *Client {
	timeout := opts.PollTimeout
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{api: a, chatID: chatID, pollTimeout: timeout}
}

// Send implements bot.Notifier.
func (c *Client) Send(_ context.Context, msg bot.Message) (bot.MessageRef, error) {
	out := tgbotapi.NewMessage(c.chatID, msg.Text)
	if msg.Markdown {
		out.ParseMode = tgbotapi.ModeMarkdown
	}
	if len(msg.Choices) > 0 {
		out.ReplyMarkup = keyboard(msg.Choices)
	}
	sent, err := c.api.Send(out)
	if err != nil {
		return bot.MessageRef{}, ErrSend.Wrap(err).WithContext("op", "send")
	}
	ref := bot.MessageRef{ChatID: c.chatID, MessageID: sent.MessageID}
	if sent.Chat != nil {
		ref.ChatID = sent.Chat.ID
	}
	return ref, nil
}

// Edit implements bot.Notifier. Editing drops the inline keyboard.
func (c *Client) Edit(_ context.Context, ref bot.MessageRef, text string) error {
	chatID := ref.ChatID
	if chatID == 0 {
		chatID = c.chatID
	}
	if _, err := c.api.Request(tgbotapi.NewEditMessageText(chatID, ref.MessageID, text)); err != nil {
		return ErrSend.Wrap(err).WithContext("op", "edit")
	}
	return nil
}

// RegisterCommands publishes the command list shown in the Telegram client menu.
func (c *Client) RegisterCommands() error {
	cmds := make([]tgbotapi.BotCommand, 0, len(bot.Commands))
	for _, cmd := range bot.Commands {
		cmds = append(cmds, tgbotapi.BotCommand{Command: cmd.Name, Description: cmd.Description})
	}
	if _, err := c.api.Request(tgbotapi.NewSetMyCommands(cmds...)); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	return nil
}

// Updates long-polls Telegram until ctx is canceled and emits translated
// updates. Callback queries from the configured user are acknowledged here so
// the client stops its spinner regardless of how the handler fares. Other
// users' queries are forwarded unanswered; the handler drops them.
func (c *Client) Updates(ctx context.Context) <-chan bot.Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = c.pollTimeout
	in := c.api.GetUpdatesChan(cfg)

	out := make(chan bot.Update)
	go func() {
		defer close(out)
		defer c.api.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-in:
				if !ok {
					return
				}
				if q := raw.CallbackQuery; q != nil && q.From != nil && q.From.ID == c.chatID {
					c.answerCallback(q.ID)
				}
				u, ok := translate(raw)
				if !ok {
					continue
				}
				select {
				case out <- u:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (c *Client) answerCallback(id string) {
	if _, err := c.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		slog.Warn("Failed to answer callback query", logfields.Error(err))
	}
}

// translate maps a raw update to a bot.Update. Plain text messages and other
// update kinds are skipped.
func translate(raw tgbotapi.Update) (bot.Update, bool) {
	switch {
	case raw.CallbackQuery != nil:
		q := raw.CallbackQuery
		if q.From == nil {
			return nil, false
		}
		u := bot.CallbackUpdate{From: q.From.ID, Data: q.Data}
		if q.Message != nil {
			u.Message = bot.MessageRef{MessageID: q.Message.MessageID}
			if q.Message.Chat != nil {
				u.Message.ChatID = q.Message.Chat.ID
			}
		}
		return u, true
	case raw.Message != nil && raw.Message.IsCommand():
		m := raw.Message
		if m.From == nil {
			return nil, false
		}
		return bot.CommandUpdate{
			From: m.From.ID,
			Name: m.Command(),
			Args: strings.Fields(m.CommandArguments()),
		}, true
	default:
		return nil, false
	}
}

func keyboard(rows [][]bot.Choice) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, ch := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(ch.Text, ch.Action.String()))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}
