package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"chi311/internal/config"
	"chi311/internal/output"
	"chi311/internal/quality"

	"go.uber.org/zap"
)

// Explore computes the quality report and writes the findings document.
func (e *Engine) Explore(ctx context.Context, cfg *config.Config) int {
	r := e.start(cfg, "explore")
	if cfg.Output.Out == "" {
		return e.fatalf(r, "config", fmt.Errorf("--out is required"))
	}

	loaded, err := e.load(ctx, r, false)
	if err != nil {
		return e.fatalf(r, "fetch", err)
	}

	rep := quality.Run(loaded.Dataset, quality.Options{Source: loaded.Label, Now: e.now().UTC()})
	r.logger.Info("quality report computed",
		zap.Int("duplicates", rep.Uniqueness.Duplicates),
		zap.Int("spatial_anomalies", rep.Spatial.Anomalies),
		zap.Int("info_only", rep.InfoOnly.Count),
	)

	if err := output.WriteFileAtomic(cfg.Output.Out, output.RenderFindings(rep)); err != nil {
		return e.fatalf(r, "write", err)
	}
	fmt.Fprintf(e.stdout, "Wrote %s\n", cfg.Output.Out)

	if cfg.Output.MarkDone {
		if _, err := output.WriteMarker(filepath.Dir(cfg.Output.Out), MarkerExplore); err != nil {
			return e.fatalf(r, "write", err)
		}
		fmt.Fprintln(e.stdout, FlagReady)
	}
	return exitCodeForRun(false, false)
}
