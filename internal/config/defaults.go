package config

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// Default trigger times and thresholds.
var (
	DefaultDailyTask      = ClockTime{Hour: 8}
	DefaultMiddayReminder = ClockTime{Hour: 12}
	DefaultAfternoonCheck = ClockTime{Hour: 17}
	DefaultJournalPrompt  = ClockTime{Hour: 20}
	DefaultWeeklySummary  = ClockTime{Hour: 21}
	DefaultUTCOffset      = UTCOffset{Seconds: 2 * 3600}
)

// ScheduleDefaultApplier handles trigger time defaults.
type ScheduleDefaultApplier struct{}

func (ScheduleDefaultApplier) Domain() string { return "schedule" }

func (ScheduleDefaultApplier) ApplyDefaults(cfg *Config) error {
	s := &cfg.Schedule
	if !s.offsetSet && s.UTCOffset == (UTCOffset{}) {
		s.UTCOffset = DefaultUTCOffset
	}
	if !s.dailyTaskSet && s.DailyTask == (ClockTime{}) {
		s.DailyTask = DefaultDailyTask
	}
	if !s.middaySet && s.MiddayReminder == (ClockTime{}) {
		s.MiddayReminder = DefaultMiddayReminder
	}
	if !s.afternoonSet && s.AfternoonCheck == (ClockTime{}) {
		s.AfternoonCheck = DefaultAfternoonCheck
	}
	if !s.journalSet && s.JournalPrompt == (ClockTime{}) {
		s.JournalPrompt = DefaultJournalPrompt
	}
	if !s.weeklySet && s.WeeklySummary == (ClockTime{}) {
		s.WeeklySummary = DefaultWeeklySummary
	}
	if !s.weekdaySet && s.WeeklySummaryDay == 0 {
		s.WeeklySummaryDay = Weekday(6) // Saturday
	}
	return nil
}

// RulesDefaultApplier handles state machine threshold defaults.
type RulesDefaultApplier struct{}

func (RulesDefaultApplier) Domain() string { return "rules" }

func (RulesDefaultApplier) ApplyDefaults(cfg *Config) error {
	r := &cfg.Rules
	if r.StrikeLimit <= 0 {
		r.StrikeLimit = 3
	}
	if r.EscalationAfterDay <= 0 {
		r.EscalationAfterDay = 5
	}
	if len(r.EscalationTasks) == 0 {
		r.EscalationTasks = []string{"🔥 +1 TikTok", "⚙️ 2x IT-сесії"}
	}
	if r.PenaltyText == "" {
		r.PenaltyText = "🔴 Три провали поспіль. Ти втрачаєш $100."
	}
	if r.StreakAchievement <= 0 {
		r.StreakAchievement = 7
	}
	if r.WeeklyGoal == "" {
		r.WeeklyGoal = "Подати 50 заявок"
	}
	if len(r.Quotes) == 0 {
		r.Quotes = []string{
			"🔥 Якщо не ти — то хто?",
			"💀 Дисципліна або смерть твоїм мріям.",
			"🧠 Перемагає не сильний, а впертий.",
			"🎯 Слабкість не дасть тобі мільйон.",
			"🔪 Дій щодня — або знову будеш без грошей.",
		}
	}
	return nil
}

// StorageDefaultApplier handles file location defaults.
type StorageDefaultApplier struct{}

func (StorageDefaultApplier) Domain() string { return "storage" }

func (StorageDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "./data"
	}
	if cfg.Storage.PlanFile == "" {
		cfg.Storage.PlanFile = "plan.json"
	}
	if cfg.Storage.ProgressLog == "" {
		cfg.Storage.ProgressLog = ProgressLogSQLite
	}
	return nil
}

// RuntimeDefaultApplier handles transport, queue and events defaults.
type RuntimeDefaultApplier struct{}

func (RuntimeDefaultApplier) Domain() string { return "runtime" }

func (RuntimeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Telegram.PollTimeout <= 0 {
		cfg.Telegram.PollTimeout = 30
	}
	if cfg.Queue.Size <= 0 {
		cfg.Queue.Size = 64
	}
	if cfg.Events.SubjectPrefix == "" {
		cfg.Events.SubjectPrefix = "disciplinebot.progress"
	}
	return nil
}

var defaultAppliers = []DefaultApplier{
	ScheduleDefaultApplier{},
	RulesDefaultApplier{},
	StorageDefaultApplier{},
	RuntimeDefaultApplier{},
}

func applyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Default returns a configuration with every default applied. Telegram
// credentials are left empty.
func Default() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg)
	return cfg
}
