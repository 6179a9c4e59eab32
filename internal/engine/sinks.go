package engine

import (
	"fmt"
	"io"

	"chi311/internal/config"
	"chi311/internal/output"
	"chi311/internal/rules"
)

func (e *Engine) setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	// Console Sink
	if !cfg.Output.NoConsole {
		cs := output.NewConsoleSink(e.stdout, cfg.Output.ConsoleFormat, cfg.Output.ConsoleFilterStatus)
		if cfg.Output.NoColor {
			cs.WithColor(false)
		}
		if err := outMgr.AddSink(cs); err != nil {
			return nil, err
		}
	}

	// Emit Sinks (additional structured streams)
	for _, emit := range cfg.Output.Emit {
		es, err := output.NewEmitSink(e.stdout, emit)
		if err != nil {
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			return nil, err
		}
	}

	// Results File Sink
	if cfg.Output.Results != "" {
		fs, err := output.NewFileSink(cfg.Output.Results, cfg.Output.ResultsFormat)
		if err != nil {
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			return nil, err
		}
	}

	// Report Sink
	if cfg.Output.Out != "" {
		rs, err := output.NewReportSink(cfg.Output.Out)
		if err != nil {
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			return nil, err
		}
	}

	return outMgr, nil
}

// statusWriter is where human status lines go. Structured output on stdout
// keeps it parseable, so status lines then move to stderr.
func (e *Engine) statusWriter(cfg *config.Config) io.Writer {
	if len(cfg.Output.Emit) > 0 {
		return e.stderr
	}
	if !cfg.Output.NoConsole && cfg.Output.ConsoleFormat != output.FormatText && cfg.Output.ConsoleFormat != "" {
		return e.stderr
	}
	return e.stdout
}

func applyRuleOptionsIfAny(cfg *config.Config) error {
	// applyRuleOptionsIfAny applies per-rule configuration supplied via repeated
	// --set flags.
	//
	// --set values are parsed as "ruleID.option=value" and routed to the matching
	// rule's Configure method (only rules that implement rules.ConfigurableRule).
	//
	// Example:
	//   chi311 check --set coordinate-anomalies.max_rate=0.2

	if len(cfg.Checks.Set) == 0 {
		return nil
	}

	assignments, err := config.ParseRuleOptionAssignments(cfg.Checks.Set)
	if err != nil {
		return err
	}

	for ruleID, opts := range assignments {
		r, ok := rules.Lookup(ruleID)
		if !ok {
			return fmt.Errorf("unknown rule ID %q", ruleID)
		}
		cr, ok := r.(rules.ConfigurableRule)
		if !ok {
			return fmt.Errorf("rule %q does not support options", ruleID)
		}

		allowed := make(map[string]struct{})
		for _, opt := range cr.Options() {
			allowed[opt.Name] = struct{}{}
		}
		for name := range opts {
			if _, ok := allowed[name]; !ok {
				return fmt.Errorf("unknown option %q for rule %q", name, ruleID)
			}
		}

		if err := cr.Configure(opts); err != nil {
			return fmt.Errorf("configure rule %q: %w", ruleID, err)
		}
	}

	return nil
}
