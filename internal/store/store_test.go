package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrawles/teampulse/internal/report"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveAndListRuns(t *testing.T) {
	st := openTestStore(t)

	snap := report.Snapshot{
		Report:          "chat",
		GeneratedAt:     time.Now(),
		StartDate:       "2025-06-01",
		EndDate:         "2025-06-30",
		Subjects:        []string{"alice", "bob"},
		Rows:            []report.Row{{"subject": "alice", "count": float64(3)}},
		FailedProviders: []string{"gerrit"},
	}

	id, err := st.SaveRun(snap)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	runs, err := st.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, id, run.ID)
	assert.Equal(t, "chat", run.Report)
	assert.Equal(t, []string{"alice", "bob"}, run.Subjects)
	assert.Equal(t, 1, run.RowCount)
	assert.Equal(t, []string{"gerrit"}, run.FailedProviders)
}

func TestGetRunRows(t *testing.T) {
	st := openTestStore(t)

	snap := report.Snapshot{
		Report:          "activity",
		GeneratedAt:     time.Now(),
		Subjects:        []string{"alice"},
		Rows:            []report.Row{{"subject": "alice", "value": float64(7)}},
		FailedProviders: []string{},
	}

	id, err := st.SaveRun(snap)
	require.NoError(t, err)

	rows, err := st.GetRunRows(id)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0]["subject"])
}

func TestGetRunRowsMissing(t *testing.T) {
	st := openTestStore(t)

	_, err := st.GetRunRows("no-such-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
