package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New("wf-1", "*/5 * * * *", "")
	require.NoError(t, err)

	assert.Equal(t, "wf-1", s.WorkflowID)
	assert.True(t, s.NextDueAt.After(time.Now().UTC().Add(-time.Second)))
	assert.Equal(t, time.UTC, s.NextDueAt.Location())
}

func TestNew_InvalidInput(t *testing.T) {
	_, err := New("wf-1", "not a cron", "")
	require.Error(t, err)

	_, err = New("wf-1", "0 9 * * 1", "Mars/Olympus")
	require.Error(t, err)
}

func TestSchedule_Advance(t *testing.T) {
	s := &Schedule{WorkflowID: "wf-1", CronExpr: "0 * * * *"}

	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	require.NoError(t, s.Advance(now))
	assert.Equal(t, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), s.NextDueAt)

	// Advancing from exactly the due time gives the next occurrence.
	require.NoError(t, s.Advance(s.NextDueAt))
	assert.Equal(t, time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC), s.NextDueAt)
}

func TestSchedule_AdvanceWithTimezone(t *testing.T) {
	s := &Schedule{WorkflowID: "wf-1", CronExpr: "0 9 * * *", Timezone: "America/Sao_Paulo"}

	// 2026-03-10 12:00 UTC is 09:00 in Sao Paulo (UTC-3), so the next 09:00
	// local run lands at 12:00 UTC the following day.
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Advance(now))
	assert.Equal(t, time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC), s.NextDueAt)
}

func TestSchedule_EveryFiveMinutes(t *testing.T) {
	s := &Schedule{WorkflowID: "wf-1", CronExpr: "*/5 * * * *"}

	now := time.Date(2026, 1, 1, 0, 2, 0, 0, time.UTC)
	require.NoError(t, s.Advance(now))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC), s.NextDueAt)
}
