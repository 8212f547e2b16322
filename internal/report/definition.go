package report

import "fmt"

// EmptyPolicy decides how a report treats an outcome with zero rows when
// providers failed. The distinction is per report and deliberately explicit:
// some reports read an all-failed cycle as a legitimate "no data" state,
// others require at least one provider to have answered.
type EmptyPolicy int

const (
	// EmptyIsData renders zero rows as an empty report, never an error.
	EmptyIsData EmptyPolicy = iota
	// RequireOneSuccess fails the report when no rows came back and at
	// least one provider failed.
	RequireOneSuccess
)

// Definition is the static description of one report type.
type Definition struct {
	Name      string
	Title     string
	Columns   []Column
	Providers []Kind
	Empty     EmptyPolicy
	Collation Collation
	// DefaultSort is applied to a fresh view before the user picks a
	// column. A zero value keeps aggregation order.
	DefaultSort SortState
	// NeedsDates gates fetching on a concrete date range; subjects are
	// always required.
	NeedsDates bool
}

// ColumnKeys returns the accessor keys in display order.
func (d Definition) ColumnKeys() []string {
	keys := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		keys[i] = c.Key
	}
	return keys
}

// Definitions is the report catalog, keyed by report name. Adding a report
// means adding one entry here and registering its sources with the provider
// registry.
var Definitions = map[string]Definition{
	"chat": {
		Name:  "chat",
		Title: "Chat Activity",
		Columns: []Column{
			{Header: "Person", Key: "subject", Sortable: true},
			{Header: "Space", Key: "spaceName", Sortable: true},
			{Header: "Messages", Key: "count", Sortable: true},
		},
		Providers:   []Kind{KindChat},
		Empty:       EmptyIsData,
		Collation:   CollateFolded,
		DefaultSort: SortState{Key: "subject", Direction: Ascending},
		NeedsDates:  true,
	},
	"reviews": {
		Name:  "reviews",
		Title: "Code Review Activity",
		Columns: []Column{
			{Header: "Person", Key: "subject", Sortable: true},
			{Header: "Merged", Key: "merged", Sortable: true},
			{Header: "Reviews", Key: "reviews", Sortable: true},
			{Header: "Rank", Key: "rank", Sortable: true},
		},
		Providers:   []Kind{KindGerrit},
		Empty:       RequireOneSuccess,
		Collation:   CollateExact,
		DefaultSort: SortState{Key: "merged", Direction: Descending},
		NeedsDates:  true,
	},
	"activity": {
		Name:  "activity",
		Title: "Team Activity Overview",
		Columns: []Column{
			{Header: "Person", Key: "subject", Sortable: true},
			{Header: "Source", Key: "source", Sortable: true},
			{Header: "Metric", Key: "metric", Sortable: true},
			{Header: "Value", Key: "value", Sortable: true},
		},
		Providers:  []Kind{KindChat, KindGerrit, KindTracker, KindCalendar},
		Empty:      EmptyIsData,
		Collation:  CollateFolded,
		NeedsDates: false,
	},
}

// Lookup resolves a report name against the catalog.
func Lookup(name string) (Definition, error) {
	def, ok := Definitions[name]
	if !ok {
		return Definition{}, fmt.Errorf("unknown report %q", name)
	}
	return def, nil
}

// Names lists the catalog in a fixed display order.
func Names() []string {
	return []string{"activity", "chat", "reviews"}
}
