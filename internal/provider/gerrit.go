package provider

import (
	"context"

	"github.com/Afrawles/teampulse/internal/report"
)

// RankNotApplicable is the display sentinel for an absent ranked field. A
// missing rank must not normalize to 0, which would read as "ranked first".
const RankNotApplicable = "n/a"

// ReviewMetrics is the Gerrit backend's per-subject record. Counts are
// pointers because the backend omits fields it has no data for.
type ReviewMetrics struct {
	Merged  *int64 `json:"merged"`
	Reviews *int64 `json:"reviews"`
	Rank    *int64 `json:"rank"`
}

// GerritResult is the Gerrit backend's native response shape.
type GerritResult map[string]ReviewMetrics

// ReviewActivity fetches per-subject code-review counts for the query window.
func (c *Client) ReviewActivity(ctx context.Context, q report.Query) (GerritResult, error) {
	var res GerritResult
	if err := c.post(ctx, report.KindGerrit, "/api/metrics/reviews", q, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// GerritReviews feeds the reviews report: one row per subject with merged and
// review counts plus the team rank.
type GerritReviews struct {
	Client *Client
}

var _ report.MetricSource = (*GerritReviews)(nil)

func (s *GerritReviews) Kind() report.Kind { return report.KindGerrit }

func (s *GerritReviews) Fetch(ctx context.Context, q report.Query) (any, error) {
	return s.Client.ReviewActivity(ctx, q)
}

func (s *GerritReviews) Normalize(raw any, _ report.NameContext) []report.Row {
	res, ok := raw.(GerritResult)
	if !ok {
		return nil
	}

	rows := []report.Row{}
	for _, subject := range sortedKeys(res) {
		m := res[subject]

		var rank any = RankNotApplicable
		if m.Rank != nil {
			rank = *m.Rank
		}

		rows = append(rows, report.Row{
			"subject": subject,
			"merged":  countOrZero(m.Merged),
			"reviews": countOrZero(m.Reviews),
			"rank":    rank,
		})
	}
	return rows
}

// GerritTotals feeds the activity overview: combined review activity per
// subject.
type GerritTotals struct {
	Client *Client
}

var _ report.MetricSource = (*GerritTotals)(nil)

func (s *GerritTotals) Kind() report.Kind { return report.KindGerrit }

func (s *GerritTotals) Fetch(ctx context.Context, q report.Query) (any, error) {
	return s.Client.ReviewActivity(ctx, q)
}

func (s *GerritTotals) Normalize(raw any, _ report.NameContext) []report.Row {
	res, ok := raw.(GerritResult)
	if !ok {
		return nil
	}

	rows := []report.Row{}
	for _, subject := range sortedKeys(res) {
		m := res[subject]
		rows = append(rows, report.Row{
			"subject": subject,
			"source":  "Gerrit",
			"metric":  "review activity",
			"value":   countOrZero(m.Merged) + countOrZero(m.Reviews),
		})
	}
	return rows
}

func countOrZero(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
