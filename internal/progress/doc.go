// Package progress owns the single progress record of the bot: current plan
// day, escalation flag, daily confirmation, strike/streak counters, running
// task timers and the date-keyed outcome journal.
//
// Every mutation is serialized behind one mutex and persisted before the
// method returns. Two files are written with write-temp-then-rename:
//
//   - journal.json: ISO date -> outcome, pretty printed
//   - state.json:   the counters and flags
//
// If a write fails the in-memory mutation is rolled back and an error
// matching ErrPersistenceFailure is returned, so callers never observe state
// that would be lost on restart.
//
// On startup the record is restored from state.json. When only a journal is
// present the counters are derived from it (trailing run of done/fail days).
package progress
