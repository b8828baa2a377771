package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls; used to check the Recorder contract compiles for fakes.
type testRecorder struct {
	mu       sync.Mutex
	triggers map[string]int
	commands map[string]map[ResultLabel]int
	failures map[string]int
	dropped  int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		triggers: map[string]int{},
		commands: map[string]map[ResultLabel]int{},
		failures: map[string]int{},
	}
}

func (t *testRecorder) ObserveTrigger(trigger string, _ time.Duration, _ ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.triggers[trigger]++
}

func (t *testRecorder) IncCommand(command string, result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.commands[command]
	if !ok {
		m = map[ResultLabel]int{}
		t.commands[command] = m
	}
	m[result]++
}

func (t *testRecorder) IncNotifyFailure(op string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[op]++
}

func (t *testRecorder) IncQueueDropped() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropped++
}

func (t *testRecorder) SetQueueDepth(int)               {}
func (t *testRecorder) SetProgress(int, int, int, bool) {}

var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)
