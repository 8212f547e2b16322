package report

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Phase is the display state of a report view.
type Phase int

const (
	// PhaseIdle means fetch preconditions are unmet.
	PhaseIdle Phase = iota
	// PhaseLoading means a fetch cycle is in flight.
	PhaseLoading
	// PhaseReady means rows are available, possibly zero of them.
	PhaseReady
	// PhaseFailed means aggregation could not be attempted or a defect
	// occurred outside the aggregator's contract.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// View owns the fetch/display lifecycle of one report. It is driven from a
// single event loop (the TUI's update function or a one-shot CLI run); the
// caller launches the actual aggregation and feeds the outcome back through
// Apply or Fail with the sequence token handed out at fetch start. Outcomes
// carrying a superseded token are discarded, which is the only guard against
// in-flight fetches: network calls are never truly cancelled.
type View struct {
	Def Definition

	phase   Phase
	query   Query
	rows    []Row
	failed  map[Kind]error
	err     error
	sort    SortState
	seq     uint64
	fetchID uuid.UUID
	logger  *slog.Logger
}

func NewView(def Definition, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{Def: def, phase: PhaseIdle, sort: def.DefaultSort, logger: logger}
}

// Preconditions reports why q cannot be fetched yet, or nil.
func (v *View) Preconditions(q Query) error {
	if len(q.Subjects) == 0 {
		return fmt.Errorf("no subjects selected")
	}
	if v.Def.NeedsDates && (q.Start.IsZero() || q.End.IsZero()) {
		return fmt.Errorf("date range is required")
	}
	if !q.Start.IsZero() && !q.End.IsZero() && q.End.Before(q.Start) {
		return fmt.Errorf("end date precedes start date")
	}
	return nil
}

// SetQuery applies a parameter change. When preconditions hold it enters
// Loading and returns the sequence token the caller must pass back with the
// fetch outcome; a parameter change while a fetch is outstanding bumps the
// sequence, so the superseded fetch resolves into the void. When
// preconditions do not hold the view drops to Idle and ok is false.
func (v *View) SetQuery(q Query) (seq uint64, ok bool) {
	v.query = q
	if err := v.Preconditions(q); err != nil {
		v.phase = PhaseIdle
		v.err = nil
		return 0, false
	}

	v.seq++
	v.fetchID = uuid.New()
	v.phase = PhaseLoading
	v.err = nil
	v.logger.Info("fetch started",
		"report", v.Def.Name,
		"fetch_id", v.fetchID.String(),
		"seq", v.seq,
		"subjects", len(q.Subjects),
	)
	return v.seq, true
}

// Apply commits a fetch outcome. Stale outcomes (token does not match the
// newest fetch) are discarded. Partial provider failure is logged and kept
// for the status line but stays Ready; only an all-empty outcome under a
// RequireOneSuccess policy becomes Failed.
func (v *View) Apply(seq uint64, out Outcome) bool {
	if seq != v.seq || v.phase != PhaseLoading {
		v.logger.Info("stale fetch discarded", "report", v.Def.Name, "seq", seq, "current", v.seq)
		return false
	}

	for kind, err := range out.Failed {
		v.logger.Warn("provider unavailable", "report", v.Def.Name, "provider", string(kind), "error", err)
	}

	if v.Def.Empty == RequireOneSuccess && len(out.Rows) == 0 && len(out.Failed) > 0 {
		v.phase = PhaseFailed
		v.err = fmt.Errorf("no provider could be reached")
		v.rows = nil
		v.failed = out.Failed
		return true
	}

	v.phase = PhaseReady
	v.rows = out.Rows
	v.failed = out.Failed
	v.err = nil
	return true
}

// Fail records a defect in the aggregation step itself. The aggregator is
// designed never to fail, so reaching this is a bug surfaced to the user.
func (v *View) Fail(seq uint64, err error) bool {
	if seq != v.seq || v.phase != PhaseLoading {
		return false
	}
	v.logger.Error("aggregation defect", "report", v.Def.Name, "error", err)
	v.phase = PhaseFailed
	v.err = err
	v.rows = nil
	return true
}

// ToggleSort applies the column-header toggle rule for key.
func (v *View) ToggleSort(key string) {
	v.sort = NextSortState(v.sort, key)
}

// Phase returns the current display state.
func (v *View) Phase() Phase { return v.phase }

// Query returns the parameters of the newest fetch.
func (v *View) Query() Query { return v.query }

// Sort returns the active sort state.
func (v *View) Sort() SortState { return v.sort }

// Err returns the user-displayable error of a Failed view.
func (v *View) Err() error { return v.err }

// Failed returns the providers excluded from the current rows.
func (v *View) Failed() map[Kind]error { return v.failed }

// FetchID identifies the newest fetch cycle for diagnostics.
func (v *View) FetchID() uuid.UUID { return v.fetchID }

// Rows returns the current row set ordered by the active sort state.
func (v *View) Rows() []Row {
	return SortRows(v.rows, v.sort, v.Def.Collation)
}

// StatusLine renders the per-phase status message: spinner text while
// loading, an explicit no-data message distinct from errors, a provider
// unavailability summary on partial failure.
func (v *View) StatusLine() string {
	switch v.phase {
	case PhaseIdle:
		return "select subjects and a date range to run this report"
	case PhaseLoading:
		return "fetching..."
	case PhaseFailed:
		if v.err != nil {
			return "report failed: " + v.err.Error()
		}
		return "report failed"
	}

	total := len(v.Def.Providers)
	if len(v.failed) > 0 {
		if len(v.rows) == 0 {
			return fmt.Sprintf("no data (%d of %d providers unavailable)", len(v.failed), total)
		}
		return fmt.Sprintf("%d of %d providers unavailable", len(v.failed), total)
	}
	if len(v.rows) == 0 {
		return "no data for this period"
	}
	return fmt.Sprintf("%d rows", len(v.rows))
}
