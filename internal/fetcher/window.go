package fetcher

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"chi311/internal/dataset"
	"chi311/internal/socrata"

	"go.uber.org/zap"
)

// Strategy names how a window pull was satisfied.
type Strategy string

const (
	StrategyWhere     Strategy = "where"
	StrategyWhereCast Strategy = "where-cast"
	StrategyFallback  Strategy = "fallback"
)

// WindowResult is the outcome of a time-window pull.
type WindowResult struct {
	Dataset  *dataset.Dataset
	Since    time.Time
	Column   string
	Strategy Strategy
	Pages    int
}

// Window returns every row whose date column is at or after now minus days.
//
// Each candidate date column is tried as a server-side $where filter; a SoQL
// type mismatch (text-typed dates) is retried with a floating_timestamp cast.
// When no candidate filters cleanly the resource is paged blind, newest first,
// and filtered locally, stopping at the first page with no in-window rows once
// rows have been kept, or after the max page count.
func (f *Fetcher) Window(ctx context.Context, days int, createdField string) (*WindowResult, error) {
	if err := f.check(ctx, "Window"); err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, fmt.Errorf("Window: days must be > 0 (got %d)", days)
	}

	cols, err := f.Columns(ctx)
	if err != nil {
		return nil, err
	}
	candidates, err := dateCandidates(cols, createdField)
	if err != nil {
		return nil, err
	}

	since := f.now().UTC().AddDate(0, 0, -days).Truncate(time.Second)
	log := f.logger.With(zap.Time("since", since))

	for _, col := range candidates {
		res, err := f.tryWhere(ctx, col, since)
		if err == nil {
			res.withSchema(cols)
			log.Info("window filtered server-side",
				zap.String("column", res.Column), zap.String("strategy", string(res.Strategy)),
				zap.Int("rows", res.Dataset.Len()), zap.Int("pages", res.Pages))
			return res, nil
		}
		if !isStatusError(err) {
			return nil, err
		}
		log.Debug("date filter rejected", zap.String("column", col), zap.Error(err))
	}

	log.Warn("no server-side date filter accepted; paging blind", zap.Strings("candidates", candidates))
	res, err := f.fallback(ctx, candidates, since)
	if err != nil {
		return nil, err
	}
	res.withSchema(cols)
	return res, nil
}

// withSchema gives an empty window the columns of the discovery sample, so an
// empty result still carries the resource's schema.
func (r *WindowResult) withSchema(cols []string) {
	if r.Dataset.Len() == 0 && len(r.Dataset.Columns()) == 0 {
		r.Dataset = dataset.New(cols...)
	}
}

func dateCandidates(cols []string, createdField string) ([]string, error) {
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
	}
	if createdField != "" {
		if !present[createdField] {
			sorted := append([]string(nil), cols...)
			sort.Strings(sorted)
			return nil, fmt.Errorf("created field %q not found in dataset columns: %s", createdField, strings.Join(sorted, ", "))
		}
		return []string{createdField}, nil
	}
	var out []string
	for _, c := range dataset.DateColumnCandidates {
		if present[c] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		sorted := append([]string(nil), cols...)
		sort.Strings(sorted)
		return nil, fmt.Errorf("no suitable date column found (checked %s); dataset columns: %s",
			strings.Join(dataset.DateColumnCandidates, ", "), strings.Join(sorted, ", "))
	}
	return out, nil
}

func (f *Fetcher) tryWhere(ctx context.Context, col string, since time.Time) (*WindowResult, error) {
	strategy := StrategyWhere
	where, order := socrata.SinceClause(col, since, false)
	probe, err := f.client.Get(ctx, socrata.Query{Where: where, Order: order, Limit: min(probeRows, f.pageSize)})
	if err != nil && socrata.IsTypeMismatch(err) {
		strategy = StrategyWhereCast
		where, order = socrata.SinceClause(col, since, true)
		probe, err = f.client.Get(ctx, socrata.Query{Where: where, Order: order, Limit: min(probeRows, f.pageSize)})
	}
	if err != nil {
		return nil, err
	}

	out := dataset.New()
	out.Concat(probe)
	pages := 1
	for {
		page, err := f.client.Get(ctx, socrata.Query{Where: where, Order: order, Limit: f.pageSize, Offset: out.Len()})
		if err != nil {
			return nil, err
		}
		pages++
		if page.Len() == 0 {
			break
		}
		out.Concat(page)
		f.logger.Debug("page fetched", zap.Int("rows", page.Len()), zap.Int("total", out.Len()))
		if page.Len() < f.pageSize {
			break
		}
	}
	return &WindowResult{Dataset: out, Since: since, Column: col, Strategy: strategy, Pages: pages}, nil
}

func (f *Fetcher) fallback(ctx context.Context, candidates []string, since time.Time) (*WindowResult, error) {
	column := candidates[0]
	order := column + " DESC"
	out := dataset.New()
	offset, pages := 0, 0

	for {
		page, err := f.client.Get(ctx, socrata.Query{Limit: f.pageSize, Offset: offset, Order: order})
		if err != nil {
			return nil, err
		}
		if page.Len() == 0 {
			break
		}
		pages++
		offset += page.Len()

		kept, anyNewer := inWindow(page, candidates, since)
		out.Concat(kept)
		f.logger.Debug("fallback page scanned",
			zap.Int("page", pages), zap.Int("rows", page.Len()), zap.Int("kept", kept.Len()))

		if !anyNewer && out.Len() > 0 {
			break
		}
		if pages >= f.maxPages {
			f.logger.Warn("fallback stopped at max pages", zap.Int("max_pages", f.maxPages))
			break
		}
		if page.Len() < f.pageSize {
			break
		}
	}
	return &WindowResult{Dataset: out, Since: since, Column: column, Strategy: StrategyFallback, Pages: pages}, nil
}

// inWindow keeps rows where any candidate date column parses to a time at or
// after since. A page carrying none of the candidate columns is kept whole.
func inWindow(page *dataset.Dataset, candidates []string, since time.Time) (*dataset.Dataset, bool) {
	var present []string
	for _, c := range candidates {
		if page.Has(c) {
			present = append(present, c)
		}
	}
	if len(present) == 0 {
		return page, false
	}

	anyNewer := false
	kept := page.Filter(func(r int) bool {
		for _, c := range present {
			if t, ok := page.Time(r, c); ok && !t.Before(since) {
				anyNewer = true
				return true
			}
		}
		return false
	})
	return kept, anyNewer
}
