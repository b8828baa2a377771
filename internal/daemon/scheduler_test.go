package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/disciplinebot/internal/config"
)

func TestScheduler_DailyAndWeeklyRunInZone(t *testing.T) {
	loc := time.FixedZone("UTC+02:00", 2*60*60)
	s, err := NewScheduler(loc)
	require.NoError(t, err)

	_, err = s.ScheduleDaily("morning", config.ClockTime{Hour: 8}, func() {})
	require.NoError(t, err)
	_, err = s.ScheduleDaily("evening", config.ClockTime{Hour: 20, Minute: 30}, func() {})
	require.NoError(t, err)
	_, err = s.ScheduleWeekly("summary", time.Saturday, config.ClockTime{Hour: 21}, func() {})
	require.NoError(t, err)

	s.Start(t.Context())
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	jobs := s.Jobs()
	require.Len(t, jobs, 3)

	byName := map[string]time.Time{}
	for i, j := range jobs {
		byName[j.Name] = j.NextRun.In(loc)
		if i > 0 {
			assert.False(t, j.NextRun.Before(jobs[i-1].NextRun), "jobs must be ordered by next run")
		}
	}

	assert.Equal(t, 8, byName["morning"].Hour())
	assert.Equal(t, 0, byName["morning"].Minute())
	assert.Equal(t, 20, byName["evening"].Hour())
	assert.Equal(t, 30, byName["evening"].Minute())
	assert.Equal(t, time.Saturday, byName["summary"].Weekday())
	assert.Equal(t, 21, byName["summary"].Hour())
}

func TestScheduler_NilLocationFallsBackToLocal(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)
	assert.Equal(t, time.Local, s.loc)
	assert.NoError(t, s.Stop(context.Background()), "stopping an unstarted scheduler is a no-op")
}
