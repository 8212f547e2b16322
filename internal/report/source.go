package report

import (
	"context"
	"time"
)

// Kind identifies one backend metric provider.
type Kind string

const (
	KindChat     Kind = "chat"
	KindGerrit   Kind = "gerrit"
	KindTracker  Kind = "tracker"
	KindCalendar Kind = "calendar"
)

// Row is one normalized unit of display: column key to scalar value.
// Every row produced for a given report carries exactly the same key set,
// so rows from different providers concatenate and sort uniformly.
type Row map[string]any

// Column describes one table column of a report.
type Column struct {
	Header   string
	Key      string
	Sortable bool
}

// Query is the parameter set for one fetch cycle.
type Query struct {
	Start    time.Time
	End      time.Time
	Subjects []string
	Options  map[string]string
}

// NameContext carries lookup data used to enrich provider-native identifiers
// into display values.
type NameContext struct {
	// SpaceNames maps opaque chat space IDs to human-readable names.
	SpaceNames map[string]string
	// DefaultSpaceName is used when the chat backend reports a single
	// unnamed space.
	DefaultSpaceName string
}

// SpaceName resolves a space ID to its display name.
func (n NameContext) SpaceName(id string) string {
	if name, ok := n.SpaceNames[id]; ok && name != "" {
		return name
	}
	if id == "" {
		if n.DefaultSpaceName != "" {
			return n.DefaultSpaceName
		}
		return "General"
	}
	return id
}

// MetricSource fetches raw metrics from one provider and shapes them into
// the row schema of the report it belongs to. Normalize must be pure: it
// never mutates raw and never fails on a well-formed response.
type MetricSource interface {
	Kind() Kind
	Fetch(ctx context.Context, q Query) (any, error)
	Normalize(raw any, names NameContext) []Row
}
