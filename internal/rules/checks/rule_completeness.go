package checks

import (
	"context"
	"fmt"
	"strings"

	"chi311/internal/dataset"
	"chi311/internal/quality"
	"chi311/internal/rules"
)

const defaultMaxMissingRate = 0.005

// RequiredFields are the logical fields every 311 extract must carry.
var RequiredFields = []dataset.Field{
	dataset.FieldSRNumber,
	dataset.FieldType,
	dataset.FieldStatus,
	dataset.FieldCreatedDate,
}

// CompletenessRule checks that a required field's column exists and is mostly populated.
type CompletenessRule struct {
	field          dataset.Field
	maxMissingRate float64
}

func NewCompletenessRule(field dataset.Field) *CompletenessRule {
	return &CompletenessRule{field: field, maxMissingRate: defaultMaxMissingRate}
}

func (r *CompletenessRule) ID() string {
	return "completeness-" + strings.ReplaceAll(string(r.field), "_", "-")
}

// Position lists completeness checks first, in RequiredFields order.
func (r *CompletenessRule) Position() int {
	for i, f := range RequiredFields {
		if f == r.field {
			return 10 + i
		}
	}
	return 19
}

func (r *CompletenessRule) Title() string {
	return "Required Field Completeness: " + string(r.field)
}

func (r *CompletenessRule) Description() string {
	return fmt.Sprintf("Verifies that a column for %q exists (any of: %s) and that its missing rate does not exceed max_missing_rate.\n\n"+
		"A missing column fails; a present column over the threshold warns.",
		r.field, strings.Join(dataset.Candidates(r.field), ", "))
}

func (r *CompletenessRule) Options() []rules.Option {
	return []rules.Option{
		{
			Name:        "max_missing_rate",
			Description: "Largest tolerated fraction of null/empty values before warning.",
			Default:     formatRate(defaultMaxMissingRate),
		},
	}
}

func (r *CompletenessRule) Configure(opts map[string]string) error {
	rate, err := rateOption(opts, "max_missing_rate", defaultMaxMissingRate)
	if err != nil {
		return err
	}
	r.maxMissingRate = rate
	return nil
}

func (r *CompletenessRule) Evaluate(ctx context.Context, in rules.Input) (rules.Result, error) {
	col, ok := in.Report.Fields.Get(r.field)
	if !ok {
		return rules.FailResult(r.ID(), "Required field present: "+string(r.field), "Column missing"), nil
	}

	missing, _ := in.Report.Missing.Get(col)
	rate := quality.Rate(missing, in.Report.Rows)
	res := rules.NewResult(r.ID(), "Completeness: "+string(r.field),
		rules.StatusIf(rate > r.maxMissingRate, rules.StatusWarn),
		fmt.Sprintf("missing=%d (%s)", missing, percent(rate)))
	res.Evidence = map[string]string{"column": col}
	return res.WithMetadata(map[string]any{"missing": missing, "rate": rate}), nil
}

func init() {
	for _, f := range RequiredFields {
		rules.Register(NewCompletenessRule(f))
	}
}
