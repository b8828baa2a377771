package config

import (
	"strings"

	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
)

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

// ValidateLocal validates everything except the Telegram credentials.
func ValidateLocal(cfg *Config) error {
	return newConfigurationValidator(cfg).validateLocal()
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateTelegram(); err != nil {
		return err
	}
	return cv.validateLocal()
}

func (cv *configurationValidator) validateLocal() error {
	if err := cv.validateSchedule(); err != nil {
		return err
	}
	if err := cv.validateRules(); err != nil {
		return err
	}
	return cv.validateStorage()
}

func (cv *configurationValidator) validateTelegram() error {
	t := cv.config.Telegram
	if strings.TrimSpace(t.Token) == "" || strings.HasPrefix(t.Token, "${") {
		return errors.ConfigError("telegram token is required (set telegram.token or TELEGRAM_TOKEN)").Build()
	}
	if t.UserID == 0 {
		return errors.ConfigError("authorized user id is required (set telegram.user_id or USER_ID)").Build()
	}
	return nil
}

func (cv *configurationValidator) validateSchedule() error {
	s := cv.config.Schedule
	if s.UTCOffset.Seconds < -12*3600 || s.UTCOffset.Seconds > 14*3600 {
		return errors.ConfigError("utc_offset must be between -12:00 and +14:00").
			WithContext("utc_offset", s.UTCOffset.String()).
			Build()
	}
	seen := map[ClockTime]string{}
	for name, at := range map[string]ClockTime{
		"daily_task":      s.DailyTask,
		"midday_reminder": s.MiddayReminder,
		"afternoon_check": s.AfternoonCheck,
		"journal_prompt":  s.JournalPrompt,
	} {
		if other, dup := seen[at]; dup {
			return errors.ConfigError("daily triggers must fire at distinct times").
				WithContext("first", other).
				WithContext("second", name).
				WithContext("time", at.String()).
				Build()
		}
		seen[at] = name
	}
	return nil
}

func (cv *configurationValidator) validateRules() error {
	r := cv.config.Rules
	if r.StrikeLimit < 1 {
		return errors.ConfigError("strike_limit must be at least 1").Build()
	}
	if r.EscalationAfterDay < 1 {
		return errors.ConfigError("escalation_after_day must be at least 1").Build()
	}
	return nil
}

func (cv *configurationValidator) validateStorage() error {
	st := cv.config.Storage
	if strings.TrimSpace(st.DataDir) == "" {
		return errors.ConfigError("storage.data_dir cannot be empty").Build()
	}
	switch st.ProgressLog {
	case ProgressLogSQLite, ProgressLogJSON, ProgressLogNone:
	default:
		return errors.ConfigError("storage.progress_log must be one of sqlite, json, none").
			WithContext("progress_log", string(st.ProgressLog)).
			Build()
	}
	return nil
}
