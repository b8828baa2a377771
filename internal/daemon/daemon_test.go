package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/disciplinebot/internal/bot"
	"git.home.luguber.info/inful/disciplinebot/internal/config"
)

const testUser int64 = 777

type fakeTransport struct {
	mu      sync.Mutex
	sent    []bot.Message
	edits   []string
	updates chan bot.Update
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{updates: make(chan bot.Update, 8)}
}

func (f *fakeTransport) Send(_ context.Context, msg bot.Message) (bot.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return bot.MessageRef{ChatID: testUser, MessageID: len(f.sent)}, nil
}

func (f *fakeTransport) Edit(_ context.Context, _ bot.MessageRef, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeTransport) Updates(context.Context) <-chan bot.Update { return f.updates }

func (f *fakeTransport) messages() []bot.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bot.Message(nil), f.sent...)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(planPath, []byte(`{"1": ["read 10 pages", "run 5k"], "2": ["write"]}`), 0o600))

	watch := false
	cfg := config.Default()
	cfg.Telegram.Token = "test-token"
	cfg.Telegram.UserID = testUser
	cfg.Storage.DataDir = filepath.Join(dir, "data")
	cfg.Storage.PlanFile = planPath
	cfg.Storage.ProgressLog = config.ProgressLogJSON
	cfg.Storage.WatchPlan = &watch
	return cfg
}

// startDaemon runs d in the background and stops it when the test ends.
func startDaemon(t *testing.T, d *Daemon) {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- d.Start(context.Background()) }()
	require.Eventually(t, func() bool { return d.GetStatus() == StatusRunning }, 2*time.Second, 5*time.Millisecond)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, d.Stop(ctx))
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("Start did not return after Stop")
		}
	})
}

func TestDaemon_CommandUpdateIsAnswered(t *testing.T) {
	tr := newFakeTransport()
	d, err := New(testConfig(t), tr)
	require.NoError(t, err)
	startDaemon(t, d)

	tr.updates <- bot.CommandUpdate{From: testUser, Name: "start"}

	require.Eventually(t, func() bool { return len(tr.messages()) == 1 }, 2*time.Second, 5*time.Millisecond)
	msg := tr.messages()[0]
	assert.Contains(t, msg.Text, "Discipline Bot")
	require.Len(t, msg.Choices, 1)
	assert.Equal(t, bot.ActionShowPlan, msg.Choices[0][0].Action)
}

func TestDaemon_UnauthorizedUpdateIsIgnored(t *testing.T) {
	tr := newFakeTransport()
	d, err := New(testConfig(t), tr)
	require.NoError(t, err)
	startDaemon(t, d)

	tr.updates <- bot.CommandUpdate{From: testUser + 1, Name: "done"}
	tr.updates <- bot.CommandUpdate{From: testUser, Name: "status"}

	require.Eventually(t, func() bool { return d.queue.Processed() == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, tr.messages(), 1, "only the authorized /status gets a reply")
	assert.False(t, d.Store().Snapshot().Confirmed)
}

func TestDaemon_FireTriggerIssuesDailyTask(t *testing.T) {
	tr := newFakeTransport()
	d, err := New(testConfig(t), tr)
	require.NoError(t, err)
	startDaemon(t, d)

	require.NoError(t, d.FireTrigger(bot.TriggerDailyTask))

	require.Eventually(t, func() bool { return len(tr.messages()) == 1 }, 2*time.Second, 5*time.Millisecond)
	text := tr.messages()[0].Text
	assert.Contains(t, text, "День 1")
	assert.Contains(t, text, "read 10 pages")
	assert.Contains(t, text, "run 5k")
	assert.False(t, d.Store().Snapshot().Confirmed)
}

func TestDaemon_RegistersEveryTrigger(t *testing.T) {
	tr := newFakeTransport()
	d, err := New(testConfig(t), tr)
	require.NoError(t, err)
	startDaemon(t, d)

	names := map[string]bool{}
	for _, j := range d.scheduler.Jobs() {
		names[j.Name] = true
	}
	for _, trig := range bot.Triggers() {
		assert.True(t, names[string(trig)], "trigger %s not scheduled", trig)
	}
}

func TestDaemon_UpdateStreamClosedIsAnError(t *testing.T) {
	tr := newFakeTransport()
	d, err := New(testConfig(t), tr)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- d.Start(context.Background()) }()
	require.Eventually(t, func() bool { return d.GetStatus() == StatusRunning }, 2*time.Second, 5*time.Millisecond)

	close(tr.updates)
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrUpdatesClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after the update stream closed")
	}
	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, StatusStopped, d.GetStatus())
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil, newFakeTransport())
	assert.Error(t, err)
}

func TestNew_MissingPlanFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.PlanFile = filepath.Join(t.TempDir(), "missing.json")
	_, err := New(cfg, newFakeTransport())
	assert.Error(t, err)
}

func TestRulesFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Rules.PenaltyMode = true
	r := RulesFromConfig(cfg)

	assert.Equal(t, 3, r.StrikeLimit)
	assert.Equal(t, 5, r.EscalationAfterDay)
	assert.True(t, r.PenaltyMode)
	assert.Equal(t, 7, r.SummaryDays)
	assert.Equal(t, "12:00", r.MiddayReminderAt)
	assert.Equal(t, "20:00", r.JournalPromptAt)
	assert.NotEmpty(t, r.Quotes)
}
