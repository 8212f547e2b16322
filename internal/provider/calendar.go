package provider

import (
	"context"

	"github.com/Afrawles/teampulse/internal/report"
)

// CalendarMetrics is the calendar backend's per-subject record.
type CalendarMetrics struct {
	Meetings *int64   `json:"meetings"`
	Hours    *float64 `json:"hours"`
}

// CalendarResult is the calendar backend's native response shape.
type CalendarResult map[string]CalendarMetrics

// CalendarActivity fetches per-subject meeting load for the query window.
func (c *Client) CalendarActivity(ctx context.Context, q report.Query) (CalendarResult, error) {
	var res CalendarResult
	if err := c.post(ctx, report.KindCalendar, "/api/metrics/calendar", q, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// CalendarTotals feeds the activity overview: meeting count and hours rows
// per subject.
type CalendarTotals struct {
	Client *Client
}

var _ report.MetricSource = (*CalendarTotals)(nil)

func (s *CalendarTotals) Kind() report.Kind { return report.KindCalendar }

func (s *CalendarTotals) Fetch(ctx context.Context, q report.Query) (any, error) {
	return s.Client.CalendarActivity(ctx, q)
}

func (s *CalendarTotals) Normalize(raw any, _ report.NameContext) []report.Row {
	res, ok := raw.(CalendarResult)
	if !ok {
		return nil
	}

	rows := []report.Row{}
	for _, subject := range sortedKeys(res) {
		m := res[subject]

		var hours float64
		if m.Hours != nil {
			hours = *m.Hours
		}

		rows = append(rows,
			report.Row{
				"subject": subject,
				"source":  "Calendar",
				"metric":  "meetings",
				"value":   countOrZero(m.Meetings),
			},
			report.Row{
				"subject": subject,
				"source":  "Calendar",
				"metric":  "meeting hours",
				"value":   hours,
			},
		)
	}
	return rows
}
