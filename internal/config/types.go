package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ClockTime is a wall-clock time of day in the configured zone, written as "HH:MM".
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" (24h).
func ParseClockTime(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ClockTime{}, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return ClockTime{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("invalid minute in %q", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *ClockTime) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseClockTime(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c ClockTime) MarshalYAML() (any, error) { return c.String(), nil }

// UTCOffset is a fixed offset from UTC written as "+02:00", "-05:30" or "+2".
// DST is deliberately not modelled: every trigger fires in this one zone.
type UTCOffset struct {
	Seconds int
}

// ParseUTCOffset parses "+HH:MM", "-HH:MM", "+H" or "0".
func ParseUTCOffset(s string) (UTCOffset, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "UTC"))
	if s == "" || s == "0" || s == "Z" {
		return UTCOffset{}, nil
	}
	sign := 1
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	}
	hh, mm, _ := strings.Cut(s, ":")
	h, err := strconv.Atoi(hh)
	if err != nil || h > 14 {
		return UTCOffset{}, fmt.Errorf("invalid utc offset hours %q", hh)
	}
	m := 0
	if mm != "" {
		m, err = strconv.Atoi(mm)
		if err != nil || m < 0 || m > 59 {
			return UTCOffset{}, fmt.Errorf("invalid utc offset minutes %q", mm)
		}
	}
	return UTCOffset{Seconds: sign * (h*3600 + m*60)}, nil
}

func (o UTCOffset) String() string {
	sign := '+'
	secs := o.Seconds
	if secs < 0 {
		sign = '-'
		secs = -secs
	}
	return fmt.Sprintf("%c%02d:%02d", sign, secs/3600, (secs%3600)/60)
}

// Location returns the fixed zone for this offset.
func (o UTCOffset) Location() *time.Location {
	return time.FixedZone("UTC"+o.String(), o.Seconds)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *UTCOffset) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseUTCOffset(value.Value)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (o UTCOffset) MarshalYAML() (any, error) { return o.String(), nil }

// Weekday wraps time.Weekday for YAML ("saturday", "sat", "6").
type Weekday time.Weekday

// ParseWeekday accepts English names, three-letter abbreviations, or 0-6 with 0 = Sunday.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("invalid weekday number %d", n)
		}
		return Weekday(n), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return Weekday(d), nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

func (w Weekday) String() string { return strings.ToLower(time.Weekday(w).String()) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (w *Weekday) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseWeekday(value.Value)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (w Weekday) MarshalYAML() (any, error) { return w.String(), nil }

// ProgressLogBackend selects where the append-only progress log is written.
type ProgressLogBackend string

const (
	ProgressLogSQLite ProgressLogBackend = "sqlite"
	ProgressLogJSON   ProgressLogBackend = "json"
	ProgressLogNone   ProgressLogBackend = "none"
)
