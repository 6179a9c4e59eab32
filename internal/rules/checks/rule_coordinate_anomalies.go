package checks

import (
	"context"
	"fmt"

	"chi311/internal/quality"
	"chi311/internal/rules"
)

const defaultMaxCoordinateAnomalyRate = 0.15

type CoordinateAnomaliesRule struct {
	maxRate float64
}

func NewCoordinateAnomaliesRule() *CoordinateAnomaliesRule {
	return &CoordinateAnomaliesRule{maxRate: defaultMaxCoordinateAnomalyRate}
}

func (r *CoordinateAnomaliesRule) ID() string {
	return "coordinate-anomalies"
}

func (r *CoordinateAnomaliesRule) Position() int { return 40 }

func (r *CoordinateAnomaliesRule) Title() string {
	return "Coordinate Anomalies (null/zero)"
}

func (r *CoordinateAnomaliesRule) Description() string {
	return "Counts rows whose latitude or longitude is null, non-numeric or exactly zero, and warns when their share exceeds max_rate.\n\n" +
		"Warns when the dataset has no latitude/longitude columns."
}

func (r *CoordinateAnomaliesRule) Options() []rules.Option {
	return []rules.Option{
		{
			Name:        "max_rate",
			Description: "Largest tolerated fraction of rows with placeholder coordinates.",
			Default:     formatRate(defaultMaxCoordinateAnomalyRate),
		},
	}
}

func (r *CoordinateAnomaliesRule) Configure(opts map[string]string) error {
	rate, err := rateOption(opts, "max_rate", defaultMaxCoordinateAnomalyRate)
	if err != nil {
		return err
	}
	r.maxRate = rate
	return nil
}

func (r *CoordinateAnomaliesRule) Evaluate(ctx context.Context, in rules.Input) (rules.Result, error) {
	const check = "Coordinate anomalies (null/zero)"
	sp := in.Report.Spatial
	if sp.System != quality.SystemLatLon {
		return rules.WarnResult(r.ID(), check, "No lat/lon columns found"), nil
	}
	rate := quality.Rate(sp.Anomalies, in.Report.Rows)
	res := rules.NewResult(r.ID(), check, rules.StatusIf(rate > r.maxRate, rules.StatusWarn),
		fmt.Sprintf("count=%d (%s)", sp.Anomalies, percent(rate)))
	return res.WithMetadata(map[string]any{"count": sp.Anomalies, "rate": rate}), nil
}

func init() {
	rules.Register(NewCoordinateAnomaliesRule())
}
