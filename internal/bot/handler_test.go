package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/disciplinebot/internal/metrics"
	"git.home.luguber.info/inful/disciplinebot/internal/plan"
	"git.home.luguber.info/inful/disciplinebot/internal/progress"
)

const testUser int64 = 4242

var testZone = time.FixedZone("UTC+02:00", 2*60*60)

type sentMessage struct {
	Message
	Ref MessageRef
}

type editedMessage struct {
	Ref  MessageRef
	Text string
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	edits   []editedMessage
	nextID  int
	sendErr error
}

func (f *fakeNotifier) Send(_ context.Context, msg Message) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return MessageRef{}, f.sendErr
	}
	f.nextID++
	ref := MessageRef{ChatID: testUser, MessageID: f.nextID}
	f.sent = append(f.sent, sentMessage{Message: msg, Ref: ref})
	return ref, nil
}

func (f *fakeNotifier) Edit(_ context.Context, ref MessageRef, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, editedMessage{Ref: ref, Text: text})
	return nil
}

func (f *fakeNotifier) last(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "expected a sent message")
	return f.sent[len(f.sent)-1]
}

func (f *fakeNotifier) lastEdit(t *testing.T) editedMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.edits, "expected an edited message")
	return f.edits[len(f.edits)-1]
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent) + len(f.edits)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const testPlan = `{
  "1": ["Wake up 6:00", "Gym"],
  "2": {"morning": "Run 5 km", "evening": "Read 30 pages"},
  "3": ["Apply to 10 jobs"]
}`

type fixture struct {
	h        *Handler
	store    *progress.Store
	notifier *fakeNotifier
	clock    *clock
	dir      string
}

func testRules() Rules {
	return Rules{
		StrikeLimit:        3,
		EscalationAfterDay: 5,
		EscalationTasks:    []string{"🔥 +1 TikTok", "⚙️ 2x IT-сесії"},
		PenaltyText:        "🔴 penalty",
		StreakAchievement:  7,
		DefaultGoal:        "Подати 50 заявок",
		Quotes:             []string{"quote-a", "quote-b"},
		MiddayReminderAt:   "12:00",
		JournalPromptAt:    "20:00",
	}
}

func newFixture(t *testing.T, rules Rules) *fixture {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	c := &clock{now: time.Date(2026, 3, 5, 8, 0, 0, 0, testZone)}
	store, err := progress.Open(filepath.Join(dir, "journal.json"), filepath.Join(dir, "state.json"),
		progress.WithClock(c.Now), progress.WithLocation(testZone))
	require.NoError(t, err)

	table, err := plan.Parse([]byte(testPlan))
	require.NoError(t, err)

	n := &fakeNotifier{}
	h := NewHandler(testUser, store, table, n, rules, WithRandom(func(int) int { return 1 }))
	return &fixture{h: h, store: store, notifier: n, clock: c, dir: dir}
}

func (f *fixture) command(t *testing.T, name string, args ...string) {
	t.Helper()
	require.NoError(t, f.h.Handle(t.Context(), CommandUpdate{From: testUser, Name: name, Args: args}))
}

func (f *fixture) press(t *testing.T, a Action) error {
	t.Helper()
	return f.h.Handle(t.Context(), CallbackUpdate{From: testUser, Data: a.String(), Message: MessageRef{ChatID: testUser, MessageID: 99}})
}

type commandCounter struct {
	metrics.NoopRecorder
	mu     sync.Mutex
	counts map[string]int
}

func (c *commandCounter) IncCommand(command string, _ metrics.ResultLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[command]++
}

func TestScenario_IssueConfirmFail(t *testing.T) {
	f := newFixture(t, testRules())

	require.NoError(t, f.h.Fire(t.Context(), TriggerDailyTask))
	st := f.store.Snapshot()
	assert.False(t, st.Confirmed)
	assert.Equal(t, 1, st.Day)
	assert.Equal(t, "🌅 День 1:\n✅ Wake up 6:00\n✅ Gym", f.notifier.last(t).Text)

	f.command(t, "done")
	st = f.store.Snapshot()
	assert.True(t, st.Confirmed)
	assert.Equal(t, 2, st.Day)

	require.NoError(t, f.h.Fire(t.Context(), TriggerJournalPrompt))
	prompt := f.notifier.last(t)
	require.Len(t, prompt.Choices, 2)
	assert.Equal(t, ActionJournalFail, prompt.Choices[1][0].Action)

	require.NoError(t, f.press(t, ActionJournalFail))
	st = f.store.Snapshot()
	assert.Equal(t, 1, st.Strikes)
	assert.Equal(t, 0, st.Streak)
	outcome, ok := f.store.JournalEntry("2026-03-05")
	require.True(t, ok)
	assert.Equal(t, progress.OutcomeFail, outcome)
	assert.Equal(t, "❌ Програв день. STRIKE 1/3", f.notifier.lastEdit(t).Text)
}

func TestHandle_UnauthorizedCallerIsIgnored(t *testing.T) {
	f := newFixture(t, testRules())
	before := f.store.Snapshot()

	stranger := testUser + 1
	for _, u := range []Update{
		CommandUpdate{From: stranger, Name: "done"},
		CommandUpdate{From: stranger, Name: "reset"},
		CommandUpdate{From: stranger, Name: "begin", Args: []string{"gym"}},
		CallbackUpdate{From: stranger, Data: ActionJournalFail.String()},
	} {
		require.NoError(t, f.h.Handle(t.Context(), u))
	}

	assert.Equal(t, before, f.store.Snapshot())
	assert.Empty(t, f.store.Journal())
	assert.Zero(t, f.notifier.count(), "unauthorized callers get no reply")
	_, err := os.Stat(filepath.Join(f.dir, "journal.json"))
	assert.True(t, os.IsNotExist(err), "nothing should be persisted")

	err = f.h.Authorize(CommandUpdate{From: stranger})
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestHandle_UnauthorizedCallersShareOneMetricLabel(t *testing.T) {
	f := newFixture(t, testRules())
	counter := &commandCounter{}
	WithRecorder(counter)(f.h)

	stranger := testUser + 1
	for i := range 50 {
		require.NoError(t, f.h.Handle(t.Context(), CommandUpdate{From: stranger, Name: fmt.Sprintf("junk%d", i)}))
		require.NoError(t, f.h.Handle(t.Context(), CallbackUpdate{From: stranger, Data: fmt.Sprintf("data%d", i)}))
	}

	assert.Equal(t, map[string]int{unauthorizedCommand: 100}, counter.counts)
}

func TestDone_SecondCallDoesNotAdvance(t *testing.T) {
	f := newFixture(t, testRules())

	f.command(t, "done")
	assert.Contains(t, f.notifier.last(t).Text, "День 1 підтверджено")
	f.command(t, "done")
	assert.Equal(t, textAlreadyDone, f.notifier.last(t).Text)
	assert.Equal(t, 2, f.store.Snapshot().Day)
}

func TestTimers_BeginEnd(t *testing.T) {
	f := newFixture(t, testRules())

	f.command(t, "end", "gym")
	assert.Equal(t, textTimerNotFound, f.notifier.last(t).Text)

	f.command(t, "begin", "gym")
	assert.Equal(t, "▶️ Почав: gym", f.notifier.last(t).Text)

	f.clock.Advance(75 * time.Minute)
	f.command(t, "end", "gym")
	assert.Equal(t, "✅ Завершено: gym — 1h15m0s", f.notifier.last(t).Text)
	assert.Empty(t, f.store.Snapshot().Timers)
}

func TestTimers_DefaultLabel(t *testing.T) {
	f := newFixture(t, testRules())

	f.command(t, "begin")
	f.command(t, "end")
	assert.True(t, strings.HasPrefix(f.notifier.last(t).Text, "✅ Завершено: "+progress.DefaultTimerLabel))
}

func TestJournalDone_StreakAchievement(t *testing.T) {
	f := newFixture(t, testRules())

	for i := 1; i <= 7; i++ {
		require.NoError(t, f.press(t, ActionJournalDone))
		if i < 7 {
			f.clock.Advance(24 * time.Hour)
		}
	}
	assert.Equal(t, "🏅 Досягнення: 7 днів поспіль!", f.notifier.lastEdit(t).Text)
	assert.Equal(t, 7, f.store.Snapshot().Streak)
}

func TestJournalFail_StrikeLimitAddsPenalty(t *testing.T) {
	f := newFixture(t, testRules())

	for range 3 {
		require.NoError(t, f.press(t, ActionJournalFail))
		f.clock.Advance(24 * time.Hour)
	}
	assert.Equal(t, "❌ Програв день. STRIKE 3/3\n🔴 penalty", f.notifier.lastEdit(t).Text)
}

func TestCallback_UnknownAction(t *testing.T) {
	f := newFixture(t, testRules())

	err := f.h.Handle(t.Context(), CallbackUpdate{From: testUser, Data: "explode"})
	assert.True(t, errors.Is(err, ErrUnknownAction))
	assert.Equal(t, textUnknownAction, f.notifier.lastEdit(t).Text)
}

func TestCallback_ShowPlanEditsMessage(t *testing.T) {
	f := newFixture(t, testRules())

	require.NoError(t, f.press(t, ActionShowPlan))
	edit := f.notifier.lastEdit(t)
	assert.Equal(t, 99, edit.Ref.MessageID)
	assert.Equal(t, "📅 День 1:\n🔹 Wake up 6:00\n🔹 Gym", edit.Text)
}

func TestPlanCommand(t *testing.T) {
	f := newFixture(t, testRules())

	f.command(t, "plan")
	assert.Equal(t, "📅 День 1:\n🔹 Wake up 6:00\n🔹 Gym", f.notifier.last(t).Text)

	f.command(t, "plan", "2")
	assert.Equal(t, "📅 День 2:\n🔹 morning: Run 5 km\n🔹 evening: Read 30 pages", f.notifier.last(t).Text)

	f.command(t, "plan", "9")
	assert.Equal(t, renderPlanMissing(9), f.notifier.last(t).Text)

	f.command(t, "plan", "abc")
	assert.Equal(t, textPlanUsage, f.notifier.last(t).Text)
}

func TestHellmode_ToggleAndEscalation(t *testing.T) {
	f := newFixture(t, testRules())

	f.command(t, "hellmode")
	assert.Equal(t, textHellmodeOn, f.notifier.last(t).Text)
	assert.True(t, f.store.Snapshot().Hellmode)

	require.NoError(t, f.h.Fire(t.Context(), TriggerDailyTask))
	assert.Contains(t, f.notifier.last(t).Text, "✅ 🔥 +1 TikTok")

	f.command(t, "hellmode", "off")
	assert.Equal(t, textHellmodeOff, f.notifier.last(t).Text)
	assert.False(t, f.store.Snapshot().Hellmode)

	require.NoError(t, f.h.Fire(t.Context(), TriggerDailyTask))
	assert.NotContains(t, f.notifier.last(t).Text, "TikTok")

	f.command(t, "hellmode", "maybe")
	assert.Equal(t, textHellmodeUsage, f.notifier.last(t).Text)
}

func TestDailyTask_EscalatesAfterThreshold(t *testing.T) {
	rules := testRules()
	rules.EscalationAfterDay = 2
	f := newFixture(t, rules)

	for range 2 {
		require.NoError(t, f.h.Fire(t.Context(), TriggerDailyTask))
		f.command(t, "done")
	}
	require.NoError(t, f.h.Fire(t.Context(), TriggerDailyTask))
	assert.Equal(t, "🌅 День 3:\n✅ Apply to 10 jobs\n✅ 🔥 +1 TikTok\n✅ ⚙️ 2x IT-сесії", f.notifier.last(t).Text)
}

func TestDailyTask_PlanExhausted(t *testing.T) {
	f := newFixture(t, testRules())

	for range 3 {
		require.NoError(t, f.h.Fire(t.Context(), TriggerDailyTask))
		f.command(t, "done")
	}
	require.NoError(t, f.h.Fire(t.Context(), TriggerDailyTask))
	assert.Equal(t, renderPlanComplete(3), f.notifier.last(t).Text)
	assert.True(t, f.store.Snapshot().Confirmed, "an exhausted plan does not reopen the day")
}

func TestMiddayReminder_OnlyWhenUnconfirmed(t *testing.T) {
	f := newFixture(t, testRules())

	require.NoError(t, f.h.Fire(t.Context(), TriggerMidday))
	assert.Equal(t, textReminder+"\n\nquote-b", f.notifier.last(t).Text)

	f.command(t, "done")
	sent := f.notifier.count()
	require.NoError(t, f.h.Fire(t.Context(), TriggerMidday))
	assert.Equal(t, sent, f.notifier.count())
}

func TestAfternoonCheck_Unconditional(t *testing.T) {
	f := newFixture(t, testRules())
	f.command(t, "done")

	require.NoError(t, f.h.Fire(t.Context(), TriggerAfternoon))
	assert.Equal(t, textAfternoon, f.notifier.last(t).Text)
}

func TestJournalPrompt_PenaltyMode(t *testing.T) {
	rules := testRules()
	rules.PenaltyMode = true
	f := newFixture(t, rules)

	require.NoError(t, f.h.Fire(t.Context(), TriggerJournalPrompt))
	assert.Equal(t, textPenaltyUnconfirm+" STRIKE 1/3", f.notifier.last(t).Text)
	assert.Equal(t, 1, f.store.Snapshot().Strikes)

	f.clock.Advance(24 * time.Hour)
	f.command(t, "done")
	require.NoError(t, f.h.Fire(t.Context(), TriggerJournalPrompt))
	assert.Equal(t, textJournalPrompt, f.notifier.last(t).Text)
	assert.Equal(t, 1, f.store.Snapshot().Strikes)
}

func TestWeeklySummary_TrailingSevenDays(t *testing.T) {
	f := newFixture(t, testRules())
	ctx := t.Context()

	_, err := f.store.RecordOutcome(ctx, "2026-03-03", progress.OutcomeDone)
	require.NoError(t, err)
	_, err = f.store.RecordOutcome(ctx, "2026-03-04", progress.OutcomeFail)
	require.NoError(t, err)
	_, err = f.store.RecordOutcome(ctx, "2026-03-05", progress.OutcomeDone)
	require.NoError(t, err)
	_, err = f.store.RecordOutcome(ctx, "2026-02-20", progress.OutcomeDone)
	require.NoError(t, err)

	require.NoError(t, f.h.Fire(ctx, TriggerWeeklySummary))
	assert.Equal(t, "📈 Тиждень: 2/7 виконано", f.notifier.last(t).Text)

	f.command(t, "summary")
	assert.Equal(t, "📈 Тиждень: 2/7 виконано", f.notifier.last(t).Text)
}

func TestStatusAndJournal(t *testing.T) {
	f := newFixture(t, testRules())

	f.command(t, "status")
	status := f.notifier.last(t).Text
	assert.Contains(t, status, "📅 День: 1, Strike: 0/3")
	assert.Contains(t, status, "🔥 Hellmode: OFF")
	assert.Contains(t, status, "📘 Звіт: "+textNoReport)

	f.command(t, "journal")
	assert.Equal(t, "📊 Журнал:\n"+textEmptyJournal, f.notifier.last(t).Text)

	require.NoError(t, f.press(t, ActionJournalDone))
	f.command(t, "goal")
	f.command(t, "begin", "gym")
	f.clock.Advance(10 * time.Minute)

	f.command(t, "status")
	status = f.notifier.last(t).Text
	assert.Contains(t, status, "✅ Стрік: 1")
	assert.Contains(t, status, "🎯 Ціль: Подати 50 заявок")
	assert.Contains(t, status, "⏱ gym: 10m0s")
	assert.Contains(t, status, "📘 Звіт: done")

	f.command(t, "journal")
	assert.Equal(t, "📊 Журнал:\n2026-03-05: done", f.notifier.last(t).Text)
}

func TestGoal_CustomText(t *testing.T) {
	f := newFixture(t, testRules())

	f.command(t, "goal", "Read", "4", "books")
	assert.Equal(t, renderGoal("Read 4 books"), f.notifier.last(t).Text)
	assert.Equal(t, "Read 4 books", f.store.Snapshot().WeeklyGoal)
}

func TestReset_KeepsJournal(t *testing.T) {
	f := newFixture(t, testRules())

	f.command(t, "done")
	require.NoError(t, f.press(t, ActionJournalDone))
	f.command(t, "reset")

	st := f.store.Snapshot()
	assert.Equal(t, 1, st.Day)
	assert.Zero(t, st.Streak)
	assert.Len(t, f.store.Journal(), 1)
	assert.Equal(t, textReset, f.notifier.last(t).Text)
}

func TestStartAndHelp(t *testing.T) {
	f := newFixture(t, testRules())

	f.command(t, "start")
	msg := f.notifier.last(t)
	require.Len(t, msg.Choices, 1)
	assert.Equal(t, ActionShowPlan, msg.Choices[0][0].Action)

	f.command(t, "help")
	msg = f.notifier.last(t)
	assert.True(t, msg.Markdown)
	assert.Contains(t, msg.Text, "о 12:00")

	f.command(t, "bogus")
	assert.Equal(t, textUnknownCommand, f.notifier.last(t).Text)
}

func TestSendFailureKeepsState(t *testing.T) {
	f := newFixture(t, testRules())
	f.notifier.sendErr = errors.New("network down")

	f.command(t, "done")
	assert.Equal(t, 2, f.store.Snapshot().Day)
}

func TestPersistenceFailureRepliesAndRollsBack(t *testing.T) {
	f := newFixture(t, testRules())

	// Replace the data directory with a file so every write fails.
	require.NoError(t, os.RemoveAll(f.dir))
	require.NoError(t, os.WriteFile(f.dir, []byte("x"), 0o600))

	err := f.h.Handle(t.Context(), CommandUpdate{From: testUser, Name: "done"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, progress.ErrPersistenceFailure))
	assert.Equal(t, textPersistFailed, f.notifier.last(t).Text)
	assert.Equal(t, 1, f.store.Snapshot().Day)
	assert.False(t, f.store.Snapshot().Confirmed)
}

func TestFire_UnknownTrigger(t *testing.T) {
	f := newFixture(t, testRules())
	err := f.h.Fire(t.Context(), Trigger("nope"))
	assert.True(t, errors.Is(err, ErrUnknownTrigger))
}
