package bot

// Action is the closed set of inline button actions.
type Action int

const (
	ActionShowPlan Action = iota + 1
	ActionJournalDone
	ActionJournalFail
)

var actionTags = map[Action]string{
	ActionShowPlan:    "show_plan",
	ActionJournalDone: "journal_done",
	ActionJournalFail: "journal_fail",
}

// String returns the callback payload tag.
func (a Action) String() string {
	if tag, ok := actionTags[a]; ok {
		return tag
	}
	return "unknown"
}

// ParseAction decodes a callback payload tag.
func ParseAction(tag string) (Action, error) {
	for a, t := range actionTags {
		if t == tag {
			return a, nil
		}
	}
	return 0, ErrUnknownAction.WithContext("tag", tag)
}
