package provider

import (
	"context"

	"github.com/Afrawles/teampulse/internal/report"
)

// TrackerMetrics is the issue tracker's per-subject record.
type TrackerMetrics struct {
	Opened *int64 `json:"opened"`
	Closed *int64 `json:"closed"`
}

// TrackerResult is the issue tracker's native response shape.
type TrackerResult map[string]TrackerMetrics

// TrackerActivity fetches per-subject issue counts for the query window.
func (c *Client) TrackerActivity(ctx context.Context, q report.Query) (TrackerResult, error) {
	var res TrackerResult
	if err := c.post(ctx, report.KindTracker, "/api/metrics/issues", q, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// TrackerTotals feeds the activity overview: opened and closed issue rows
// per subject.
type TrackerTotals struct {
	Client *Client
}

var _ report.MetricSource = (*TrackerTotals)(nil)

func (s *TrackerTotals) Kind() report.Kind { return report.KindTracker }

func (s *TrackerTotals) Fetch(ctx context.Context, q report.Query) (any, error) {
	return s.Client.TrackerActivity(ctx, q)
}

func (s *TrackerTotals) Normalize(raw any, _ report.NameContext) []report.Row {
	res, ok := raw.(TrackerResult)
	if !ok {
		return nil
	}

	rows := []report.Row{}
	for _, subject := range sortedKeys(res) {
		m := res[subject]
		rows = append(rows,
			report.Row{
				"subject": subject,
				"source":  "Tracker",
				"metric":  "issues opened",
				"value":   countOrZero(m.Opened),
			},
			report.Row{
				"subject": subject,
				"source":  "Tracker",
				"metric":  "issues closed",
				"value":   countOrZero(m.Closed),
			},
		)
	}
	return rows
}
