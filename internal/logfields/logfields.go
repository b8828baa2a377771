package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyJobID      = "job_id"
	KeyJobKind    = "job_kind"
	KeyTrigger    = "trigger"
	KeyCommand    = "command"
	KeyAction     = "action"
	KeyDay        = "day"
	KeyDate       = "date"
	KeyLabel      = "label"
	KeyOutcome    = "outcome"
	KeyUserID     = "user_id"
	KeyPath       = "path"
	KeySubject    = "subject"
	KeyAddr       = "addr"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func JobID(id string) slog.Attr       { return slog.String(KeyJobID, id) }
func JobKind(k string) slog.Attr      { return slog.String(KeyJobKind, k) }
func Trigger(name string) slog.Attr   { return slog.String(KeyTrigger, name) }
func Command(name string) slog.Attr   { return slog.String(KeyCommand, name) }
func Action(tag string) slog.Attr     { return slog.String(KeyAction, tag) }
func Day(d int) slog.Attr             { return slog.Int(KeyDay, d) }
func Date(d string) slog.Attr         { return slog.String(KeyDate, d) }
func Label(l string) slog.Attr        { return slog.String(KeyLabel, l) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func UserID(id int64) slog.Attr       { return slog.Int64(KeyUserID, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Elapsed converts a duration into the canonical duration_ms attribute.
func Elapsed(d time.Duration) slog.Attr {
	return DurationMS(float64(d) / float64(time.Millisecond))
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
