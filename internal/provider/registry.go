package provider

import (
	"fmt"

	"github.com/Afrawles/teampulse/internal/report"
)

type sourceFactory func(c *Client) report.MetricSource

// registry maps report name -> provider kind -> source constructor. A new
// provider, or a new row shape for an existing provider, is registered here
// and nowhere else.
var registry = map[string]map[report.Kind]sourceFactory{
	"chat": {
		report.KindChat: func(c *Client) report.MetricSource { return &ChatSpaces{Client: c} },
	},
	"reviews": {
		report.KindGerrit: func(c *Client) report.MetricSource { return &GerritReviews{Client: c} },
	},
	"activity": {
		report.KindChat:     func(c *Client) report.MetricSource { return &ChatTotals{Client: c} },
		report.KindGerrit:   func(c *Client) report.MetricSource { return &GerritTotals{Client: c} },
		report.KindTracker:  func(c *Client) report.MetricSource { return &TrackerTotals{Client: c} },
		report.KindCalendar: func(c *Client) report.MetricSource { return &CalendarTotals{Client: c} },
	},
}

// Calls builds the aggregation work list for one report, in the definition's
// provider order. A kind with no registered source becomes a pre-failed call
// so a misconfigured provider never stops the others from running.
func Calls(def report.Definition, c *Client, q report.Query, names report.NameContext) []report.Call {
	sources := registry[def.Name]

	calls := make([]report.Call, 0, len(def.Providers))
	for _, kind := range def.Providers {
		factory, ok := sources[kind]
		if !ok {
			calls = append(calls, report.FailedCall(kind, fmt.Errorf("%w: %s in report %s", report.ErrUnknownProvider, kind, def.Name)))
			continue
		}
		calls = append(calls, report.SourceCall(factory(c), q, names))
	}
	return calls
}
