package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"n/a", "n/a"},
		{int64(42), "42"},
		{7, "7"},
		{4.5, "4.5"},
		{3.0, "3"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}

func TestNewSnapshot(t *testing.T) {
	def, err := Lookup("activity")
	require.NoError(t, err)

	q := Query{
		Start:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Subjects: []string{"alice"},
	}
	out := Outcome{
		Rows: []Row{{"subject": "alice", "source": "Chat", "metric": "messages", "value": int64(3)}},
		Failed: map[Kind]error{
			KindCalendar: errors.New("down"),
			KindTracker:  errors.New("down"),
		},
	}

	snap := NewSnapshot(def, q, out)

	assert.Equal(t, "activity", snap.Report)
	assert.Equal(t, "2025-06-01", snap.StartDate)
	assert.Equal(t, "2025-06-30", snap.EndDate)
	assert.Len(t, snap.Rows, 1)
	// Failed providers follow the definition's provider order.
	assert.Equal(t, []string{"tracker", "calendar"}, snap.FailedProviders)
}

func TestNewSnapshotWithoutDates(t *testing.T) {
	def, _ := Lookup("activity")
	snap := NewSnapshot(def, Query{Subjects: []string{"alice"}}, Outcome{Rows: []Row{}, Failed: map[Kind]error{}})

	assert.Empty(t, snap.StartDate)
	assert.Empty(t, snap.EndDate)
	assert.Empty(t, snap.FailedProviders)
}

func TestExportCSVAndJSON(t *testing.T) {
	dir := t.TempDir()
	def, _ := Lookup("chat")
	snap := Snapshot{
		Report:      "chat",
		GeneratedAt: time.Now(),
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-30",
		Subjects:    []string{"alice"},
		Rows: []Row{
			{"subject": "alice", "spaceName": "Backend", "count": int64(3)},
		},
		FailedProviders: []string{},
	}

	require.NoError(t, NewExporter(dir).ExportJSON(snap, "chat.json"))
	require.NoError(t, NewCSVExporter(dir).Export(def, snap))
}

func TestExportExcel(t *testing.T) {
	dir := t.TempDir()
	def, _ := Lookup("activity")
	snap := Snapshot{
		Report:      "activity",
		GeneratedAt: time.Now(),
		Subjects:    []string{"alice"},
		Rows: []Row{
			{"subject": "alice", "source": "Chat", "metric": "messages", "value": int64(3)},
			{"subject": "alice", "source": "Gerrit", "metric": "review activity", "value": int64(7)},
		},
		FailedProviders: []string{"calendar"},
	}

	require.NoError(t, NewExcelExporter(dir).Export(def, snap))
}

func TestGroupRowsWithoutSourceColumn(t *testing.T) {
	def, _ := Lookup("chat")
	groups := groupRows(def, []Row{{"subject": "alice"}})

	require.Len(t, groups, 1)
	assert.Equal(t, "Data", groups[0].name)
}

func TestGroupRowsBySource(t *testing.T) {
	def, _ := Lookup("activity")
	groups := groupRows(def, []Row{
		{"source": "Gerrit"},
		{"source": "Chat"},
		{"source": "Gerrit"},
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "Chat", groups[0].name)
	assert.Equal(t, "Gerrit", groups[1].name)
	assert.Len(t, groups[1].rows, 2)
}
