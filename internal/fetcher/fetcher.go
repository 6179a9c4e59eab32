package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chi311/internal/dataset"
	"chi311/internal/socrata"

	"go.uber.org/zap"
)

const (
	// DefaultPageSize is the $limit used for each page of a multi-page pull.
	DefaultPageSize = 50000
	// DefaultMaxPages caps blind pagination when no server-side date filter works.
	DefaultMaxPages = 30

	probeRows = 5
)

// Fetcher pulls pages from the Socrata resource sequentially and materializes
// them into one Dataset.
type Fetcher struct {
	client   *socrata.Client
	cache    *Cache
	logger   *zap.Logger
	pageSize int
	maxPages int
	now      func() time.Time
}

type Option func(*Fetcher)

func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

func WithPageSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxPages = n
		}
	}
}

// WithClock overrides the time source used to compute window cutoffs.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFetcher returns a Fetcher. client may be nil when only local sources are used.
func NewFetcher(client *socrata.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   client,
		cache:    NewCache(),
		logger:   zap.NewNop(),
		pageSize: DefaultPageSize,
		maxPages: DefaultMaxPages,
		now:      time.Now,
	}
	for _, apply := range opts {
		if apply != nil {
			apply(f)
		}
	}
	return f
}

func (f *Fetcher) Client() *socrata.Client {
	return f.client
}

func (f *Fetcher) Logger() *zap.Logger {
	return f.logger
}

func (f *Fetcher) check(ctx context.Context, op string) error {
	if ctx == nil {
		return fmt.Errorf("%s: nil context", op)
	}
	if f == nil {
		return fmt.Errorf("%s: nil Fetcher", op)
	}
	if f.client == nil {
		return fmt.Errorf("%s: nil Socrata client (use NewFetcher)", op)
	}
	return nil
}

// Limit returns the first n rows of the resource. Pulls larger than one page
// are paged with $offset in :id order so pages do not overlap.
func (f *Fetcher) Limit(ctx context.Context, n int) (*dataset.Dataset, error) {
	if err := f.check(ctx, "Limit"); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("Limit: n must be > 0 (got %d)", n)
	}

	out := dataset.New()
	order := ""
	if n > f.pageSize {
		order = ":id"
	}
	for out.Len() < n {
		size := min(f.pageSize, n-out.Len())
		page, err := f.client.Get(ctx, socrata.Query{Limit: size, Offset: out.Len(), Order: order})
		if err != nil {
			return nil, err
		}
		out.Concat(page)
		f.logger.Debug("page fetched", zap.Int("rows", page.Len()), zap.Int("total", out.Len()))
		if page.Len() < size {
			break
		}
	}
	return out, nil
}

// Columns returns the resource's column names, learned from a one-row sample.
// The result is cached for the Fetcher's lifetime.
func (f *Fetcher) Columns(ctx context.Context) ([]string, error) {
	if err := f.check(ctx, "Columns"); err != nil {
		return nil, err
	}
	if cols, ok := f.cache.Columns(f.client.ResourceURL); ok {
		return cols, nil
	}
	sample, err := f.client.Get(ctx, socrata.Query{Limit: 1})
	if err != nil {
		return nil, err
	}
	cols := sample.Columns()
	f.cache.SetColumns(f.client.ResourceURL, cols)
	return cols, nil
}

// isStatusError reports whether err is an HTTP-status rejection the window
// strategy may route around by trying another candidate column.
func isStatusError(err error) bool {
	var fe *socrata.FetchError
	return errors.As(err, &fe) && fe.Stage == socrata.StageStatus && !socrata.IsUnauthorized(err)
}
