package report

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the active sort of a table: which column key, which way.
// A zero Key means unsorted.
type SortState struct {
	Key       string
	Direction Direction
}

// NextSortState is the column-header toggle rule: re-clicking the active
// ascending column flips to descending; any other click resets to ascending.
func NextSortState(cur SortState, clicked string) SortState {
	if cur.Key == clicked && cur.Direction == Ascending {
		return SortState{Key: clicked, Direction: Descending}
	}
	return SortState{Key: clicked, Direction: Ascending}
}

// Collation selects the string comparison strategy for a report.
type Collation int

const (
	// CollateExact compares strings byte-wise, case-sensitively.
	CollateExact Collation = iota
	// CollateFolded compares human-readable text case-insensitively.
	CollateFolded
)

// SortRows returns a sorted copy of rows. The input is never modified.
// An unset sort key is a no-op: the copy keeps the existing order. The
// comparison is per-value: two numeric values compare numerically, anything
// else compares as strings under the given collation. Equal values keep
// their relative input order.
func SortRows(rows []Row, state SortState, collation Collation) []Row {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)

	if state.Key == "" {
		return sorted
	}

	var coll *collate.Collator
	if collation == CollateFolded {
		coll = collate.New(language.English, collate.IgnoreCase)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		c := compareValues(sorted[i][state.Key], sorted[j][state.Key], coll)
		if state.Direction == Descending {
			return c > 0
		}
		return c < 0
	})
	return sorted
}

func compareValues(a, b any, coll *collate.Collator) int {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	as, bs := valueString(a), valueString(b)
	if coll != nil {
		return coll.CompareString(as, bs)
	}
	return strings.Compare(as, bs)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func valueString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
