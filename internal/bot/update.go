package bot

// Update is an inbound event from the chat transport: CommandUpdate or CallbackUpdate.
type Update interface {
	Sender() int64
	isUpdate()
}

// CommandUpdate is a slash command such as "/plan 3".
type CommandUpdate struct {
	From int64
	Name string
	Args []string
}

func (u CommandUpdate) Sender() int64 { return u.From }
func (CommandUpdate) isUpdate()       {}

// CallbackUpdate is an inline button press. Data is the raw payload tag and
// Message the message carrying the button.
type CallbackUpdate struct {
	From    int64
	Data    string
	Message MessageRef
}

func (u CallbackUpdate) Sender() int64 { return u.From }
func (CallbackUpdate) isUpdate()       {}
