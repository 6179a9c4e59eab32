package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"chi311/internal/config"
	"chi311/internal/output"

	"go.uber.org/zap"
)

// Ingest pulls raw rows, normalises their timestamps and persists them as a
// Parquet file plus a Markdown summary.
func (e *Engine) Ingest(ctx context.Context, cfg *config.Config) int {
	r := e.start(cfg, "fetch")
	if cfg.Output.Out == "" || cfg.Output.Summary == "" {
		return e.fatalf(r, "config", fmt.Errorf("--out and --summary are required"))
	}

	loaded, err := e.load(ctx, r, true)
	if err != nil {
		return e.fatalf(r, "fetch", err)
	}
	if w := loaded.Window; w != nil {
		r.logger.Info("window resolved",
			zap.String("strategy", string(w.Strategy)),
			zap.String("column", w.Column),
			zap.Time("since", w.Since),
			zap.Int("pages", w.Pages),
		)
	}

	d, err := output.NormalizeDates(loaded.Dataset)
	if err != nil {
		return e.fatalf(r, "write", err)
	}
	if err := output.WriteParquet(cfg.Output.Out, d); err != nil {
		return e.fatalf(r, "write", err)
	}

	summary := output.SummarizeIngest(loaded.Label, cfg.Output.Out, d)
	if err := output.WriteFileAtomic(cfg.Output.Summary, output.RenderIngestSummary(summary)); err != nil {
		return e.fatalf(r, "write", err)
	}
	if _, err := output.WriteMarker(filepath.Dir(cfg.Output.Summary), MarkerIngest); err != nil {
		return e.fatalf(r, "write", err)
	}
	r.logger.Info("ingest written", zap.String("out", cfg.Output.Out), zap.Int("rows", d.Len()))

	fmt.Fprintf(e.stdout, "Wrote %s and %s\n", cfg.Output.Out, cfg.Output.Summary)
	fmt.Fprintln(e.stdout, FlagDataReady)
	return exitCodeForRun(false, false)
}
