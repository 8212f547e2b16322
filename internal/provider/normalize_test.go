package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrawles/teampulse/internal/report"
)

func int64p(n int64) *int64       { return &n }
func float64p(f float64) *float64 { return &f }

func TestChatSpacesNormalize(t *testing.T) {
	src := &ChatSpaces{}
	names := report.NameContext{
		SpaceNames:       map[string]string{"sp-1": "Backend Team"},
		DefaultSpaceName: "General",
	}

	raw := ChatResult{
		"alice": {Spaces: map[string]int64{"sp-1": 12, "sp-2": 3}},
		"bob":   {Spaces: map[string]int64{"": 7}},
	}

	rows := src.Normalize(raw, names)

	require.Len(t, rows, 3)
	assert.Equal(t, report.Row{"subject": "alice", "spaceName": "Backend Team", "count": int64(12)}, rows[0])
	// Unknown space IDs fall back to the raw ID.
	assert.Equal(t, report.Row{"subject": "alice", "spaceName": "sp-2", "count": int64(3)}, rows[1])
	// A single unnamed space gets the well-known default name.
	assert.Equal(t, report.Row{"subject": "bob", "spaceName": "General", "count": int64(7)}, rows[2])
}

func TestChatSpacesNormalizeSkipsSubjectsWithoutSpaces(t *testing.T) {
	src := &ChatSpaces{}
	rows := src.Normalize(ChatResult{"alice": {}}, report.NameContext{})
	assert.Empty(t, rows)
}

func TestChatSpacesNormalizeDoesNotMutateInput(t *testing.T) {
	src := &ChatSpaces{}
	raw := ChatResult{"alice": {Spaces: map[string]int64{"sp-1": 5}}}

	_ = src.Normalize(raw, report.NameContext{})

	assert.Equal(t, int64(5), raw["alice"].Spaces["sp-1"])
	assert.Len(t, raw, 1)
}

func TestChatTotalsNormalize(t *testing.T) {
	src := &ChatTotals{}
	raw := ChatResult{
		"alice": {Spaces: map[string]int64{"sp-1": 12, "sp-2": 3}},
	}

	rows := src.Normalize(raw, report.NameContext{})

	require.Len(t, rows, 1)
	assert.Equal(t, report.Row{"subject": "alice", "source": "Chat", "metric": "messages", "value": int64(15)}, rows[0])
}

func TestGerritReviewsNormalize(t *testing.T) {
	src := &GerritReviews{}
	raw := GerritResult{
		"alice": {Merged: int64p(4), Reviews: int64p(11), Rank: int64p(1)},
		"bob":   {Reviews: int64p(2)},
	}

	rows := src.Normalize(raw, report.NameContext{})

	require.Len(t, rows, 2)
	assert.Equal(t, report.Row{"subject": "alice", "merged": int64(4), "reviews": int64(11), "rank": int64(1)}, rows[0])
	// Absent numeric fields become 0; an absent rank must not imply rank
	// zero, so it renders the not-applicable sentinel instead.
	assert.Equal(t, report.Row{"subject": "bob", "merged": int64(0), "reviews": int64(2), "rank": RankNotApplicable}, rows[1])
}

func TestGerritTotalsNormalize(t *testing.T) {
	src := &GerritTotals{}
	raw := GerritResult{"alice": {Merged: int64p(4), Reviews: int64p(11)}}

	rows := src.Normalize(raw, report.NameContext{})

	require.Len(t, rows, 1)
	assert.Equal(t, int64(15), rows[0]["value"])
	assert.Equal(t, "Gerrit", rows[0]["source"])
}

func TestTrackerTotalsNormalize(t *testing.T) {
	src := &TrackerTotals{}
	raw := TrackerResult{"alice": {Opened: int64p(3)}}

	rows := src.Normalize(raw, report.NameContext{})

	require.Len(t, rows, 2)
	assert.Equal(t, "issues opened", rows[0]["metric"])
	assert.Equal(t, int64(3), rows[0]["value"])
	assert.Equal(t, "issues closed", rows[1]["metric"])
	assert.Equal(t, int64(0), rows[1]["value"])
}

func TestCalendarTotalsNormalize(t *testing.T) {
	src := &CalendarTotals{}
	raw := CalendarResult{"alice": {Meetings: int64p(6), Hours: float64p(4.5)}}

	rows := src.Normalize(raw, report.NameContext{})

	require.Len(t, rows, 2)
	assert.Equal(t, int64(6), rows[0]["value"])
	assert.Equal(t, 4.5, rows[1]["value"])
}

func TestNormalizeWrongShapeReturnsNil(t *testing.T) {
	sources := []report.MetricSource{
		&ChatSpaces{}, &ChatTotals{}, &GerritReviews{}, &GerritTotals{}, &TrackerTotals{}, &CalendarTotals{},
	}
	for _, src := range sources {
		assert.Nil(t, src.Normalize("not a result", report.NameContext{}), "kind %s", src.Kind())
	}
}

func TestActivityRowsShareOneKeySet(t *testing.T) {
	// Rows from all four activity sources must concatenate into one table.
	rows := []report.Row{}
	rows = append(rows, (&ChatTotals{}).Normalize(ChatResult{"a": {Spaces: map[string]int64{"s": 1}}}, report.NameContext{})...)
	rows = append(rows, (&GerritTotals{}).Normalize(GerritResult{"a": {}}, report.NameContext{})...)
	rows = append(rows, (&TrackerTotals{}).Normalize(TrackerResult{"a": {}}, report.NameContext{})...)
	rows = append(rows, (&CalendarTotals{}).Normalize(CalendarResult{"a": {}}, report.NameContext{})...)

	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.Len(t, row, 4)
		for _, key := range []string{"subject", "source", "metric", "value"} {
			assert.Contains(t, row, key)
		}
	}
}
