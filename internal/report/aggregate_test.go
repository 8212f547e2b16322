package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okCall(kind Kind, rows []Row) Call {
	return Call{Kind: kind, Run: func(context.Context) ([]Row, error) {
		return rows, nil
	}}
}

func slowOkCall(kind Kind, rows []Row, delay time.Duration) Call {
	return Call{Kind: kind, Run: func(context.Context) ([]Row, error) {
		time.Sleep(delay)
		return rows, nil
	}}
}

func TestAggregateEmptyCallList(t *testing.T) {
	out := Aggregate(context.Background(), nil)

	assert.Empty(t, out.Rows)
	assert.Empty(t, out.Failed)
}

func TestAggregatePartialFailure(t *testing.T) {
	boom := errors.New("network error")
	calls := []Call{
		okCall(KindChat, []Row{{"subject": "alice", "count": int64(3)}}),
		FailedCall(KindGerrit, boom),
	}

	out := Aggregate(context.Background(), calls)

	require.Len(t, out.Rows, 1)
	assert.Equal(t, "alice", out.Rows[0]["subject"])
	require.Len(t, out.Failed, 1)
	assert.ErrorIs(t, out.Failed[KindGerrit], boom)
}

func TestAggregateAllFailedIsNotAnError(t *testing.T) {
	calls := []Call{
		FailedCall(KindChat, errors.New("down")),
		FailedCall(KindGerrit, errors.New("down too")),
	}

	out := Aggregate(context.Background(), calls)

	assert.Empty(t, out.Rows)
	assert.Len(t, out.Failed, 2)
	assert.Equal(t, 0, out.Successes(len(calls)))
}

func TestAggregateSubmissionOrderNotArrivalOrder(t *testing.T) {
	// The first call finishes last; its rows still come first.
	calls := []Call{
		slowOkCall(KindChat, []Row{{"subject": "a"}, {"subject": "b"}}, 50*time.Millisecond),
		okCall(KindGerrit, []Row{{"subject": "c"}}),
		slowOkCall(KindTracker, []Row{{"subject": "d"}}, 10*time.Millisecond),
	}

	out := Aggregate(context.Background(), calls)

	require.Len(t, out.Rows, 4)
	assert.Equal(t, "a", out.Rows[0]["subject"])
	assert.Equal(t, "b", out.Rows[1]["subject"])
	assert.Equal(t, "c", out.Rows[2]["subject"])
	assert.Equal(t, "d", out.Rows[3]["subject"])
	assert.Empty(t, out.Failed)
}

func TestAggregateRecoversPanickingProvider(t *testing.T) {
	calls := []Call{
		okCall(KindChat, []Row{{"subject": "alice"}}),
		{Kind: KindGerrit, Run: func(context.Context) ([]Row, error) {
			panic("malformed response")
		}},
	}

	out := Aggregate(context.Background(), calls)

	require.Len(t, out.Rows, 1)
	require.Contains(t, out.Failed, KindGerrit)
	assert.Contains(t, out.Failed[KindGerrit].Error(), "panicked")
}

func TestAggregateOneOfManyFailing(t *testing.T) {
	for failing := 0; failing < 4; failing++ {
		calls := make([]Call, 4)
		kinds := []Kind{KindChat, KindGerrit, KindTracker, KindCalendar}
		for i, kind := range kinds {
			if i == failing {
				calls[i] = FailedCall(kind, errors.New("down"))
				continue
			}
			calls[i] = okCall(kind, []Row{{"source": string(kind)}})
		}

		out := Aggregate(context.Background(), calls)

		assert.Len(t, out.Rows, 3)
		assert.Len(t, out.Failed, 1)
		assert.Contains(t, out.Failed, kinds[failing])
	}
}
