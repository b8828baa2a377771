package metrics

import "time"

// ResultLabel enumerates result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	// ResultRejected is a handled, user-facing failure (unknown timer, missing plan day).
	ResultRejected ResultLabel = "rejected"
	ResultFailed   ResultLabel = "failed"
	// ResultDropped marks updates from unauthorized callers.
	ResultDropped ResultLabel = "dropped"
)

// Recorder defines the bot's observability hooks. Implementations must be safe
// for concurrent use.
type Recorder interface {
	ObserveTrigger(trigger string, d time.Duration, result ResultLabel)
	IncCommand(command string, result ResultLabel)
	IncNotifyFailure(op string) // op: send|edit
	IncQueueDropped()
	SetQueueDepth(n int)
	SetProgress(day, strikes, streak int, hellmode bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveTrigger(string, time.Duration, ResultLabel) {}
func (NoopRecorder) IncCommand(string, ResultLabel)                    {}
func (NoopRecorder) IncNotifyFailure(string)                           {}
func (NoopRecorder) IncQueueDropped()                                  {}
func (NoopRecorder) SetQueueDepth(int)                                 {}
func (NoopRecorder) SetProgress(int, int, int, bool)                   {}
