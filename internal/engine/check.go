package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"chi311/internal/config"
	"chi311/internal/output"
	"chi311/internal/quality"
	"chi311/internal/rules"

	"go.uber.org/zap"
)

func resolveAndConfigureRules(cfg *config.Config) ([]rules.Rule, error) {
	selectedRules, err := rules.Resolve(cfg.Checks.Selector)
	if err != nil {
		return nil, fmt.Errorf("resolving rules: %w", err)
	}
	if err := applyRuleOptionsIfAny(cfg); err != nil {
		return nil, fmt.Errorf("configuring rules: %w", err)
	}
	return selectedRules, nil
}

// evaluateRules runs every selected rule against in and forwards each result
// to the output sinks. A rule that errors yields an ERROR result.
func evaluateRules(ctx context.Context, selected []rules.Rule, in rules.Input, outMgr *output.Manager, log *zap.Logger) []rules.Result {
	results := make([]rules.Result, 0, len(selected))
	for _, rule := range selected {
		res, err := rule.Evaluate(ctx, in)
		if err != nil {
			res = rules.ErrorResult(rule.ID(), rule.Title(), fmt.Sprintf("Evaluation failed: %v", err))
		}

		// Backfill identifiers so output stays consistent and well-formed.
		if res.RuleID == "" {
			res.RuleID = rule.ID()
		}
		if res.Check == "" {
			res.Check = rule.Title()
		}

		log.Debug("rule evaluated", zap.String("rule", res.RuleID), zap.String("status", string(res.Status)))
		if err := outMgr.Write(res); err != nil {
			log.Warn("output sink write failed", zap.Error(err))
		}
		results = append(results, res)
	}
	return results
}

// Check runs the gated data-quality checks and writes the checks report.
func (e *Engine) Check(ctx context.Context, cfg *config.Config) int {
	r := e.start(cfg, "check")

	selected, err := resolveAndConfigureRules(cfg)
	if err != nil {
		return e.fatalf(r, "config", err)
	}
	r.logger.Debug("rules selected", zap.Int("rules", len(selected)))

	loaded, err := e.load(ctx, r, false)
	if err != nil {
		return e.fatalf(r, "fetch", err)
	}
	rep := quality.Run(loaded.Dataset, quality.Options{Source: loaded.Label, Now: e.now().UTC()})

	outMgr, err := e.setupOutputManager(cfg)
	if err != nil {
		return e.fatalf(r, "config", fmt.Errorf("creating output sinks: %w", err))
	}

	_ = outMgr.Write(output.Event{
		Type:   output.EventRunStarted,
		RunID:  r.id,
		Source: loaded.Label,
		Rows:   loaded.Dataset.Len(),
		Rules:  len(selected),
	})

	results := evaluateRules(ctx, selected, rules.Input{Dataset: loaded.Dataset, Report: rep}, outMgr, r.logger)
	overall := rules.Overall(results)
	code := exitCodeForRun(false, overall != rules.StatusPass)

	_ = outMgr.Write(output.Event{Type: output.EventRunFinished, RunID: r.id, Overall: overall, ExitCode: code})
	if err := outMgr.Close(); err != nil {
		return e.fatalf(r, "write", err)
	}
	r.logger.Info("checks finished", zap.String("overall", string(overall)), zap.Int("results", len(results)))

	status := e.statusWriter(cfg)
	if cfg.Output.Out != "" {
		fmt.Fprintf(status, "Wrote %s\n", cfg.Output.Out)
	}
	if cfg.Output.MarkDone {
		dir := "."
		if cfg.Output.Out != "" {
			dir = filepath.Dir(cfg.Output.Out)
		}
		if _, err := output.WriteMarker(dir, MarkerCheck); err != nil {
			return e.fatalf(r, "write", err)
		}
	}
	if overall == rules.StatusPass {
		fmt.Fprintln(status, FlagChecksReady)
	} else {
		fmt.Fprintln(status, FlagChecksAttn)
	}
	return code
}
