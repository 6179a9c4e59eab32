package rules

import (
	"context"
	"fmt"
	"strings"
)

// OptionMaxStatus is the option every registered rule accepts to cap its result
// severity, e.g. --set legacy-records.max_status=INFO for a known condition.
const OptionMaxStatus = "max_status"

// StatusCapWrapper wraps a Rule so its result status never exceeds a configured
// ceiling. A capped result keeps its original status as evidence.
type StatusCapWrapper struct {
	Rule
	max Status
}

func (w *StatusCapWrapper) ID() string {
	return w.Rule.ID()
}

func (w *StatusCapWrapper) Title() string {
	return w.Rule.Title()
}

func (w *StatusCapWrapper) Description() string {
	return w.Rule.Description()
}

// Unwrap returns the wrapped rule.
func (w *StatusCapWrapper) Unwrap() Rule {
	return w.Rule
}

func (w *StatusCapWrapper) Evaluate(ctx context.Context, in Input) (Result, error) {
	res, err := w.Rule.Evaluate(ctx, in)
	if err != nil {
		return res, err
	}
	if w.max == "" || res.Status == StatusError || res.Status.Rank() <= w.max.Rank() {
		return res, nil
	}
	if res.Evidence == nil {
		res.Evidence = map[string]string{}
	}
	res.Evidence["original_status"] = string(res.Status)
	res.Status = w.max
	return res, nil
}

// Options returns the cap option followed by the inner rule's options (if configurable).
func (w *StatusCapWrapper) Options() []Option {
	opts := []Option{{
		Name:        OptionMaxStatus,
		Description: "Highest status this check may report (PASS, INFO, WARN or FAIL). More severe results are lowered to it.",
	}}
	if cr, ok := w.Rule.(ConfigurableRule); ok {
		opts = append(opts, cr.Options()...)
	}
	return opts
}

// Configure applies the cap and forwards the remaining options to the inner rule.
func (w *StatusCapWrapper) Configure(opts map[string]string) error {
	inner := make(map[string]string, len(opts))
	for k, v := range opts {
		if k != OptionMaxStatus {
			inner[k] = v
			continue
		}
		if strings.TrimSpace(v) == "" {
			w.max = ""
			continue
		}
		st, ok := ParseStatus(v)
		if !ok || st == StatusError {
			return fmt.Errorf("invalid value for %s: %s", OptionMaxStatus, v)
		}
		w.max = st
	}
	if cr, ok := w.Rule.(ConfigurableRule); ok {
		return cr.Configure(inner)
	}
	return nil
}
