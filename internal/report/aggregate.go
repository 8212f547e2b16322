package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownProvider marks a provider kind that has no registered source.
// It is recorded as a pre-failed call so the remaining providers still run.
var ErrUnknownProvider = errors.New("unknown provider kind")

// Call is one unit of provider work: fetch plus normalize, labeled with the
// provider's identity for diagnostics.
type Call struct {
	Kind Kind
	Run  func(ctx context.Context) ([]Row, error)
}

// Outcome is the result of one aggregation cycle. Rows is the flattened
// concatenation, in call-submission order, of every successful provider's
// normalized rows. Failed records why each failing provider was excluded.
type Outcome struct {
	Rows   []Row
	Failed map[Kind]error
}

// Successes reports how many of total calls produced rows.
func (o Outcome) Successes(total int) int {
	return total - len(o.Failed)
}

// SourceCall builds a Call from a MetricSource: fetch the provider-native
// response, then normalize it under names.
func SourceCall(src MetricSource, q Query, names NameContext) Call {
	return Call{
		Kind: src.Kind(),
		Run: func(ctx context.Context) ([]Row, error) {
			raw, err := src.Fetch(ctx, q)
			if err != nil {
				return nil, err
			}
			return src.Normalize(raw, names), nil
		},
	}
}

// FailedCall builds a pre-failed Call for a provider that cannot be run at
// all, e.g. an unknown kind in a report definition.
func FailedCall(kind Kind, err error) Call {
	return Call{
		Kind: kind,
		Run: func(context.Context) ([]Row, error) {
			return nil, err
		},
	}
}

// Aggregate launches every call concurrently and waits for all of them to
// settle. A slow or failing provider never blocks or aborts the others, and
// nothing is retried. The outcome is deterministic for a given set of
// responses: each call's rows land in a slot fixed by submission order, so
// flattening does not depend on arrival order. Aggregate itself never fails;
// a panic inside a call is recovered and recorded as that provider's failure.
func Aggregate(ctx context.Context, calls []Call) Outcome {
	out := Outcome{Rows: []Row{}, Failed: make(map[Kind]error)}
	if len(calls) == 0 {
		return out
	}

	type settled struct {
		rows []Row
		err  error
	}

	// One slot per call; no two goroutines write the same slot.
	slots := make([]settled, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call Call) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slots[i] = settled{err: fmt.Errorf("provider %s panicked: %v", call.Kind, r)}
				}
			}()
			rows, err := call.Run(ctx)
			slots[i] = settled{rows: rows, err: err}
		}(i, call)
	}
	wg.Wait()

	for i, s := range slots {
		if s.err != nil {
			out.Failed[calls[i].Kind] = s.err
			continue
		}
		out.Rows = append(out.Rows, s.rows...)
	}
	return out
}
