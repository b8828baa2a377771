package bot

import "context"

// MessageRef identifies a sent message so it can be edited later.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Choice is an inline button.
type Choice struct {
	Text   string
	Action Action
}

// Message is an outbound notification. Choices are laid out one row per slice.
type Message struct {
	Text     string
	Choices  [][]Choice
	Markdown bool
}

// Notifier delivers messages to the configured user.
type Notifier interface {
	Send(ctx context.Context, msg Message) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, text string) error
}
