package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"chi311/internal/config"
	"chi311/internal/fetcher"
	"chi311/internal/output"
	"chi311/internal/socrata"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Step markers written for downstream orchestration.
const (
	MarkerExplore = ".STEP1_DONE"
	MarkerCheck   = ".STEP2_DONE"
	MarkerIngest  = ".INGEST_DONE"
)

// Pipeline flags printed on success.
const (
	FlagReady       = "READY_TO_PROCEED"
	FlagChecksReady = "STEP2_READY_TO_PROCEED"
	FlagChecksAttn  = "STEP2_ATTENTION_NEEDED"
	FlagDataReady   = "DATA_READY_TO_PROCEED"
)

func exitCodeForRun(fatal, attention bool) int {
	// Exit code contract:
	// 0 = run succeeded, every check passed
	// 1 = attention needed (a check warned or failed)
	// 3 = fatal error (config, fetch or write failure)
	if fatal {
		return 3
	}
	if attention {
		return 1
	}
	return 0
}

type Engine struct {
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
	runID  func() string
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithOutput redirects the engine's stdout and stderr writers.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(e *Engine) {
		if stdout != nil {
			e.stdout = stdout
		}
		if stderr != nil {
			e.stderr = stderr
		}
	}
}

// WithClock sets the reference time for future-date checks and time windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithRunID(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.runID = fn
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: zap.NewNop(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
		runID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// run is the per-invocation state shared by every command.
type run struct {
	id     string
	cfg    *config.Config
	logger *zap.Logger
}

func (e *Engine) start(cfg *config.Config, command string) *run {
	id := e.runID()
	return &run{
		id:     id,
		cfg:    cfg,
		logger: e.logger.With(zap.String("run_id", id), zap.String("command", command)),
	}
}

// fatalf reports a fatal error prefixed with the failing stage.
func (e *Engine) fatalf(r *run, stage string, err error) int {
	r.logger.Error("run failed", zap.String("stage", stage), zap.Error(err))
	fmt.Fprintf(e.stderr, "Error during %s: %v\n", stage, err)
	return exitCodeForRun(true, false)
}

// newFetcher builds the fetcher for cfg. File sources never touch the network,
// so they get a fetcher without a Socrata client and need no token.
func (e *Engine) newFetcher(ctx context.Context, r *run) (*fetcher.Fetcher, error) {
	cfg := r.cfg
	opts := []fetcher.Option{
		fetcher.WithLogger(r.logger),
		fetcher.WithPageSize(cfg.Fetch.PageSize),
		fetcher.WithMaxPages(cfg.Fetch.MaxPages),
		fetcher.WithClock(e.now),
	}
	if cfg.Source.Kind != config.SourceAPI {
		return fetcher.NewFetcher(nil, opts...), nil
	}

	token, src, err := socrata.ResolveAppToken(cfg.Source.AppToken)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("app token resolved", zap.String("token_source", string(src)))

	client, err := socrata.NewClient(ctx, token,
		socrata.WithVerbose(cfg.Runtime.Verbose, r.logger),
		socrata.WithAccessToken(cfg.Source.AccessToken),
		socrata.WithResourceURL(cfg.Source.APIURL),
		socrata.WithRateLimit(cfg.Fetch.RateLimit),
		socrata.WithTimeout(cfg.Fetch.Timeout),
	)
	if err != nil {
		return nil, err
	}
	return fetcher.NewFetcher(client, opts...), nil
}

// load fetches the dataset described by cfg. windowed selects the day-count
// window when cfg.Fetch.Days is set.
func (e *Engine) load(ctx context.Context, r *run, windowed bool) (*fetcher.Loaded, error) {
	f, err := e.newFetcher(ctx, r)
	if err != nil {
		return nil, err
	}
	req := fetcher.Request{
		Limit:        r.cfg.Fetch.Limit,
		CreatedField: r.cfg.Fetch.CreatedField,
		Path:         r.cfg.Source.Path,
	}
	if windowed {
		req.Days = r.cfg.Fetch.Days
	}

	start := time.Now()
	loaded, err := f.Load(ctx, r.cfg.Source.Kind, req)
	if err != nil {
		return nil, err
	}
	r.logger.Info("dataset loaded",
		zap.String("source", loaded.Label),
		zap.Int("rows", loaded.Dataset.Len()),
		zap.Int("columns", len(loaded.Dataset.Columns())),
		zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)),
	)
	return loaded, nil
}

// Peek loads the configured source and prints its shape.
func (e *Engine) Peek(ctx context.Context, cfg *config.Config) int {
	r := e.start(cfg, "peek")
	loaded, err := e.load(ctx, r, false)
	if err != nil {
		return e.fatalf(r, "fetch", err)
	}
	if err := output.WritePeek(e.stdout, loaded.Label, loaded.Dataset); err != nil {
		return e.fatalf(r, "write", err)
	}
	return exitCodeForRun(false, false)
}
