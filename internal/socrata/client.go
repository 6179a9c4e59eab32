package socrata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chi311/internal/dataset"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultResourceURL is the Chicago 311 Service Requests resource (JSON).
const DefaultResourceURL = "https://data.cityofchicago.org/resource/v6vf-nfxy.json"

const (
	appTokenHeader = "X-App-Token"
	defaultTimeout = 120 * time.Second
	maxErrorBody   = 800
)

type Client struct {
	HTTP        *http.Client
	ResourceURL string

	limiter *rate.Limiter
	logger  *zap.Logger
}

type options struct {
	verbose     bool
	logger      *zap.Logger
	accessToken string
	resourceURL string
	rps         float64
	timeout     time.Duration
}

type Option func(*options)

// WithVerbose logs one line per request and response (including latency)
// at debug level on logger.
func WithVerbose(enabled bool, logger *zap.Logger) Option {
	return func(o *options) {
		o.verbose = enabled
		o.logger = logger
	}
}

// WithAccessToken authenticates with a Socrata OAuth 2.0 access token in
// addition to the app token.
func WithAccessToken(token string) Option {
	return func(o *options) { o.accessToken = strings.TrimSpace(token) }
}

// WithResourceURL overrides the resource endpoint.
func WithResourceURL(u string) Option {
	return func(o *options) { o.resourceURL = strings.TrimSpace(u) }
}

// WithRateLimit paces requests to at most rps per second. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(o *options) { o.rps = rps }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// loggingRoundTripper wraps an underlying transport and emits one line per
// request and response (including latency) when verbose logging is enabled.
type loggingRoundTripper struct {
	base   http.RoundTripper
	logger *zap.Logger
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	t.logger.Debug("socrata request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start).Truncate(time.Millisecond)
	if err != nil {
		t.logger.Debug("socrata error", zap.Duration("elapsed", dur), zap.Error(err))
	} else {
		t.logger.Debug("socrata response", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", dur))
	}
	return resp, err
}

// appTokenTransport sets the X-App-Token header on every request.
type appTokenTransport struct {
	base  http.RoundTripper
	token string
}

func (t *appTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set(appTokenHeader, t.token)
	return t.base.RoundTrip(r)
}

func NewClient(ctx context.Context, appToken string, opts ...Option) (*Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("socrata client: ctx is nil")
	}

	o := &options{resourceURL: DefaultResourceURL, timeout: defaultTimeout}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.resourceURL == "" {
		o.resourceURL = DefaultResourceURL
	}
	if _, err := url.Parse(o.resourceURL); err != nil {
		return nil, fmt.Errorf("socrata client: invalid resource url: %w", err)
	}

	transport := http.DefaultTransport
	if o.verbose {
		transport = &loggingRoundTripper{base: transport, logger: o.logger}
	}
	if tok := strings.TrimSpace(appToken); tok != "" {
		transport = &appTokenTransport{base: transport, token: tok}
	}
	if o.accessToken != "" {
		// Socrata expects "Authorization: OAuth <token>".
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.accessToken, TokenType: "OAuth"})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if o.rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.rps), 1)
	}

	return &Client{
		HTTP:        &http.Client{Transport: transport, Timeout: o.timeout},
		ResourceURL: o.resourceURL,
		limiter:     limiter,
		logger:      o.logger,
	}, nil
}

// Get issues one GET against the resource endpoint and decodes the JSON array
// response into a Dataset.
func (c *Client) Get(ctx context.Context, q Query) (*dataset.Dataset, error) {
	if ctx == nil {
		return nil, fmt.Errorf("socrata get: ctx is nil")
	}
	if c == nil || c.HTTP == nil {
		return nil, fmt.Errorf("socrata get: client is nil (use NewClient)")
	}

	u, err := url.Parse(c.ResourceURL)
	if err != nil {
		return nil, &FetchError{Stage: StageRequest, URL: c.ResourceURL, Err: err}
	}
	u.RawQuery = q.Values().Encode()
	endpoint := u.String()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Stage: StageRequest, URL: endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Stage: StageRequest, URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &FetchError{Stage: StageRequest, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &FetchError{
			Stage:      StageStatus,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	d, err := dataset.DecodeJSON(resp.Body)
	if err != nil {
		return nil, &FetchError{Stage: StageDecode, URL: endpoint, Err: err}
	}
	return d, nil
}
