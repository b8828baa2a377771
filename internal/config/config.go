package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
)

// Config represents the application configuration. It is read once at startup
// and treated as immutable afterwards.
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Rules      RulesConfig      `yaml:"rules"`
	Storage    StorageConfig    `yaml:"storage"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Events     EventsConfig     `yaml:"events"`
	Queue      QueueConfig      `yaml:"queue"`
}

// TelegramConfig holds the transport credential and the single authorized identity.
type TelegramConfig struct {
	Token       string `yaml:"token"`
	UserID      int64  `yaml:"user_id"`
	PollTimeout int    `yaml:"poll_timeout_seconds,omitempty"`
	Debug       bool   `yaml:"debug,omitempty"`
}

// ScheduleConfig holds the fixed daily trigger times. All times are local to UTCOffset.
type ScheduleConfig struct {
	UTCOffset        UTCOffset `yaml:"utc_offset"`
	DailyTask        ClockTime `yaml:"daily_task"`
	MiddayReminder   ClockTime `yaml:"midday_reminder"`
	AfternoonCheck   ClockTime `yaml:"afternoon_check"`
	JournalPrompt    ClockTime `yaml:"journal_prompt"`
	WeeklySummary    ClockTime `yaml:"weekly_summary"`
	WeeklySummaryDay Weekday   `yaml:"weekly_summary_day"`

	offsetSet, dailyTaskSet, middaySet, afternoonSet, journalSet, weeklySet, weekdaySet bool
}

// RulesConfig holds the thresholds of the daily state machine.
type RulesConfig struct {
	StrikeLimit        int      `yaml:"strike_limit"`
	EscalationAfterDay int      `yaml:"escalation_after_day"`
	EscalationTasks    []string `yaml:"escalation_tasks"`
	PenaltyMode        bool     `yaml:"penalty_mode"`
	PenaltyText        string   `yaml:"penalty_text"`
	StreakAchievement  int      `yaml:"streak_achievement"`
	WeeklyGoal         string   `yaml:"weekly_goal"`
	Quotes             []string `yaml:"quotes,omitempty"`
}

// StorageConfig locates the durable files.
type StorageConfig struct {
	DataDir     string             `yaml:"data_dir"`
	PlanFile    string             `yaml:"plan_file"`
	ProgressLog ProgressLogBackend `yaml:"progress_log"`
	WatchPlan   *bool              `yaml:"watch_plan,omitempty"`
}

// MonitoringConfig configures the health/metrics HTTP listener. Empty address disables it.
type MonitoringConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// EventsConfig configures optional NATS publication of progress events.
type EventsConfig struct {
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// QueueConfig sizes the single-consumer work queue.
type QueueConfig struct {
	Size int `yaml:"size"`
}

// JournalPath returns the journal file location.
func (s StorageConfig) JournalPath() string { return filepath.Join(s.DataDir, "journal.json") }

// StatePath returns the state record file location.
func (s StorageConfig) StatePath() string { return filepath.Join(s.DataDir, "state.json") }

// ProgressLogPath returns the progress log location for the configured backend.
func (s StorageConfig) ProgressLogPath() string {
	if s.ProgressLog == ProgressLogJSON {
		return filepath.Join(s.DataDir, "progress_log.json")
	}
	return filepath.Join(s.DataDir, "progress_log.db")
}

// PlanWatchEnabled reports whether the plan file should be hot reloaded.
func (s StorageConfig) PlanWatchEnabled() bool { return s.WatchPlan == nil || *s.WatchPlan }

// Location returns the fixed zone all triggers and journal dates use.
func (c *Config) Location() *time.Location { return c.Schedule.UTCOffset.Location() }

// Load loads configuration from the specified file. A missing file is not an
// error: the bot can run purely from environment variables (TELEGRAM_TOKEN, USER_ID).
func Load(configPath string) (*Config, error) {
	return load(configPath, ValidateConfig)
}

// LoadLocal loads configuration for commands that only read the data
// directory. Telegram credentials are not required.
func LoadLocal(configPath string) (*Config, error) {
	return load(configPath, ValidateLocal)
}

func load(configPath string, validate func(*Config) error) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
				Fatal().
				WithContext("path", configPath).
				Build()
		}
		cfg.markSpecified([]byte(expanded))
	case os.IsNotExist(err):
		fmt.Fprintf(os.Stderr, "Note: configuration file %s not found, using defaults and environment\n", configPath)
	default:
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// markSpecified records which schedule fields were present so that zero
// values like "00:00" or "sunday" are not overwritten by defaults.
func (c *Config) markSpecified(data []byte) {
	var raw struct {
		Schedule map[string]any `yaml:"schedule"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return
	}
	_, c.Schedule.offsetSet = raw.Schedule["utc_offset"]
	_, c.Schedule.dailyTaskSet = raw.Schedule["daily_task"]
	_, c.Schedule.middaySet = raw.Schedule["midday_reminder"]
	_, c.Schedule.afternoonSet = raw.Schedule["afternoon_check"]
	_, c.Schedule.journalSet = raw.Schedule["journal_prompt"]
	_, c.Schedule.weeklySet = raw.Schedule["weekly_summary"]
	_, c.Schedule.weekdaySet = raw.Schedule["weekly_summary_day"]
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := &Config{
		Telegram: TelegramConfig{Token: "${TELEGRAM_TOKEN}"},
		Storage:  StorageConfig{PlanFile: "plan.json"},
	}
	if err := applyDefaults(example); err != nil {
		return err
	}
	example.Telegram.Token = "${TELEGRAM_TOKEN}"

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example config").Build()
	}
	header := "# disciplinebot configuration\n# Secrets may be referenced as ${VAR}; .env and .env.local are loaded automatically.\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
