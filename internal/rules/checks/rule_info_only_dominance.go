package checks

import (
	"context"
	"fmt"

	"chi311/internal/rules"
)

const defaultMinDominance = 0.40

// InfoOnlyDominanceRule flags "information only" calls concentrated at one
// address, which usually means the call centre's own address was recorded
// instead of the caller's location.
type InfoOnlyDominanceRule struct {
	minDominance float64
}

func NewInfoOnlyDominanceRule() *InfoOnlyDominanceRule {
	return &InfoOnlyDominanceRule{minDominance: defaultMinDominance}
}

func (r *InfoOnlyDominanceRule) ID() string {
	return "info-only-dominance"
}

func (r *InfoOnlyDominanceRule) Position() int { return 60 }

func (r *InfoOnlyDominanceRule) Title() string {
	return "Information-only Address Dominance"
}

func (r *InfoOnlyDominanceRule) Description() string {
	return "Reports INFO when the most frequent street address accounts for at least min_dominance of all information-only requests. " +
		"Skipped (PASS) when the dataset has no request-type column."
}

func (r *InfoOnlyDominanceRule) Options() []rules.Option {
	return []rules.Option{
		{
			Name:        "min_dominance",
			Description: "Share of information-only calls at the top address that triggers INFO.",
			Default:     formatRate(defaultMinDominance),
		},
	}
}

func (r *InfoOnlyDominanceRule) Configure(opts map[string]string) error {
	rate, err := rateOption(opts, "min_dominance", defaultMinDominance)
	if err != nil {
		return err
	}
	if rate == 0 {
		return fmt.Errorf("min_dominance must be > 0")
	}
	r.minDominance = rate
	return nil
}

func (r *InfoOnlyDominanceRule) Evaluate(ctx context.Context, in rules.Input) (rules.Result, error) {
	const check = "Information-only address dominance"
	info := in.Report.InfoOnly
	if !info.Available {
		return rules.PassResult(r.ID(), check, "No type column; skipped"), nil
	}

	note := "N/A"
	dom := info.Dominance()
	if info.Count > 0 && len(info.TopAddresses) > 0 {
		note = fmt.Sprintf("info_calls=%d, top_addr='%s', dominance=%s", info.Count, info.TopAddresses[0].Value, percent(dom))
	}
	res := rules.NewResult(r.ID(), check, rules.StatusIf(dom >= r.minDominance, rules.StatusInfo), note)
	return res.WithMetadata(map[string]any{"info_calls": info.Count, "dominance": dom}), nil
}

func init() {
	rules.Register(NewInfoOnlyDominanceRule())
}
