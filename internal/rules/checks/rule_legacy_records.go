package checks

import (
	"context"
	"strings"

	"chi311/internal/rules"
)

type LegacyRecordsRule struct{}

func (r *LegacyRecordsRule) ID() string {
	return "legacy-records"
}

func (r *LegacyRecordsRule) Position() int { return 50 }

func (r *LegacyRecordsRule) Title() string {
	return "Legacy Records"
}

func (r *LegacyRecordsRule) Description() string {
	return "Warns when rows are flagged as pre-migration legacy records, or when the legacy flag column is absent. Details carry the flag's value counts."
}

func (r *LegacyRecordsRule) Evaluate(ctx context.Context, in rules.Input) (rules.Result, error) {
	rep := in.Report
	if rep.LegacyColumn == "" {
		return rules.WarnResult(r.ID(), "Legacy column present", "No legacy column"), nil
	}

	legacyTrue := 0
	for _, vc := range rep.Legacy {
		if strings.EqualFold(strings.TrimSpace(vc.Value), "true") {
			legacyTrue += vc.Count
		}
	}
	nulls, _ := rep.Missing.Get(rep.LegacyColumn)

	res := rules.NewResult(r.ID(), "Legacy records present", rules.StatusIf(legacyTrue > 0, rules.StatusWarn), rep.Legacy.Format(nulls))
	res.Evidence = map[string]string{"column": rep.LegacyColumn}
	return res.WithMetadata(map[string]any{"legacy_true": legacyTrue, "nulls": nulls}), nil
}

func init() {
	rules.Register(&LegacyRecordsRule{})
}
