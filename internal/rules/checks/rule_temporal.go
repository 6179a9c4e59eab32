package checks

import (
	"context"
	"fmt"

	"chi311/internal/quality"
	"chi311/internal/rules"
)

// TemporalRule fails when one of the date-ordering counters is non-zero.
// Counters whose columns are absent report count=N/A and pass.
type TemporalRule struct {
	id          string
	title       string
	check       string
	description string
	position    int
	count       func(quality.Temporal) (int, bool)
}

func (r *TemporalRule) ID() string          { return r.id }
func (r *TemporalRule) Title() string       { return r.title }
func (r *TemporalRule) Description() string { return r.description }
func (r *TemporalRule) Position() int       { return r.position }

func (r *TemporalRule) Evaluate(ctx context.Context, in rules.Input) (rules.Result, error) {
	n, ok := r.count(in.Report.Temporal)
	if !ok {
		return rules.PassResult(r.id, r.check, "count=N/A"), nil
	}
	res := rules.NewResult(r.id, r.check, rules.StatusIf(n > 0, rules.StatusFail), fmt.Sprintf("count=%d", n))
	return res.WithMetadata(map[string]any{"count": n}), nil
}

var (
	FutureCreatedRule = &TemporalRule{
		id:          "future-created-date",
		position:    30,
		title:       "No Future Created Dates",
		check:       "Future created_date",
		description: "Fails when any created date lies after the run's current time.",
		count: func(t quality.Temporal) (int, bool) {
			return t.FutureCreated, t.HasFutureCreated
		},
	}
	FutureClosedRule = &TemporalRule{
		id:          "future-closed-date",
		position:    31,
		title:       "No Future Closed Dates",
		check:       "Future closed_date",
		description: "Fails when any closed date lies after the run's current time.",
		count: func(t quality.Temporal) (int, bool) {
			return t.FutureClosed, t.HasFutureClosed
		},
	}
	ClosedBeforeCreatedRule = &TemporalRule{
		id:          "closed-before-created",
		position:    32,
		title:       "Closed Not Before Created",
		check:       "Closed before created",
		description: "Fails when any request was closed strictly before it was created.",
		count: func(t quality.Temporal) (int, bool) {
			return t.ClosedBeforeCreated, t.HasClosedBeforeCreated
		},
	}
)

func init() {
	rules.Register(FutureCreatedRule)
	rules.Register(FutureClosedRule)
	rules.Register(ClosedBeforeCreatedRule)
}
