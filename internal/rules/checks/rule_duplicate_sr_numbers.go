package checks

import (
	"context"
	"fmt"

	"chi311/internal/rules"
)

type DuplicateSRNumbersRule struct{}

func (r *DuplicateSRNumbersRule) ID() string {
	return "duplicate-sr-numbers"
}

func (r *DuplicateSRNumbersRule) Position() int { return 20 }

func (r *DuplicateSRNumbersRule) Title() string {
	return "Duplicate SR Numbers"
}

func (r *DuplicateSRNumbersRule) Description() string {
	return "Fails when any service request number appears more than once. Duplicate identifiers point at merge or ingest problems. " +
		"Rows with a null SR number are not compared; they are counted by the completeness-sr-number check instead."
}

func (r *DuplicateSRNumbersRule) Evaluate(ctx context.Context, in rules.Input) (rules.Result, error) {
	const check = "Duplicate SR numbers"
	u := in.Report.Uniqueness
	if !u.Available {
		return rules.FailResult(r.ID(), check, "sr_number column missing"), nil
	}
	res := rules.NewResult(r.ID(), check, rules.StatusIf(u.Duplicates > 0, rules.StatusFail), fmt.Sprintf("duplicates=%d", u.Duplicates))
	res.Evidence = map[string]string{"column": u.Column}
	return res.WithMetadata(map[string]any{"duplicates": u.Duplicates, "groups": u.Groups}), nil
}

func init() {
	rules.Register(&DuplicateSRNumbersRule{})
}
