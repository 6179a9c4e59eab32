package fetcher_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"chi311/internal/fetcher"
	"chi311/internal/socrata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const socrataTime = "2006-01-02T15:04:05.000"

// fakeSocrata serves rows in stored order and understands the subset of SoQL
// the fetcher emits: $limit, $offset and "<col>[::floating_timestamp] >= '<ts>'".
type fakeSocrata struct {
	rows []map[string]string
	// textColumns reject uncast comparisons with a SoQL type mismatch.
	textColumns map[string]bool
	// badColumns reject every $where.
	badColumns map[string]bool
	status     int

	mu       sync.Mutex
	requests []url.Values
}

func (s *fakeSocrata) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	s.requests = append(s.requests, q)
	s.mu.Unlock()

	if s.status != 0 {
		w.WriteHeader(s.status)
		return
	}

	rows := s.rows
	if where := q.Get("$where"); where != "" {
		parts := strings.SplitN(where, " >= ", 2)
		col := parts[0]
		cast := strings.HasSuffix(col, "::floating_timestamp")
		col = strings.TrimSuffix(col, "::floating_timestamp")
		if s.badColumns[col] {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"No such column: ` + col + `"}`))
			return
		}
		if s.textColumns[col] && !cast {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errorCode":"query.compiler.malformed","message":"Type mismatch for op$>=, is text"}`))
			return
		}
		since, err := time.Parse(time.RFC3339, strings.Trim(parts[1], "'"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var kept []map[string]string
		for _, row := range rows {
			t, err := time.Parse(socrataTime, row[col])
			if err == nil && !t.Before(since) {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	offset, _ := strconv.Atoi(q.Get("$offset"))
	limit := 1000
	if l := q.Get("$limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}
	if offset > len(rows) {
		offset = len(rows)
	}
	end := min(offset+limit, len(rows))
	page := rows[offset:end]
	if page == nil {
		page = []map[string]string{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

func (s *fakeSocrata) count(match func(url.Values) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, q := range s.requests {
		if match(q) {
			n++
		}
	}
	return n
}

func srRow(id string, daysAgo int) map[string]string {
	return map[string]string{
		"sr_number":    id,
		"created_date": testNow.AddDate(0, 0, -daysAgo).Format(socrataTime),
	}
}

func newTestFetcher(t *testing.T, fake *fakeSocrata, opts ...fetcher.Option) *fetcher.Fetcher {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := socrata.NewClient(context.Background(), "dummy", socrata.WithResourceURL(server.URL))
	require.NoError(t, err)
	opts = append([]fetcher.Option{fetcher.WithClock(func() time.Time { return testNow })}, opts...)
	return fetcher.NewFetcher(client, opts...)
}

func TestLimit_SinglePage(t *testing.T) {
	fake := &fakeSocrata{rows: []map[string]string{srRow("1", 1), srRow("2", 2), srRow("3", 3)}}
	f := newTestFetcher(t, fake)

	d, err := f.Limit(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
	require.Len(t, fake.requests, 1)
	assert.Equal(t, "2", fake.requests[0].Get("$limit"))
	assert.Empty(t, fake.requests[0].Get("$offset"))
}

func TestLimit_PaginatesInIDOrder(t *testing.T) {
	var rows []map[string]string
	for i := 0; i < 5; i++ {
		rows = append(rows, srRow(strconv.Itoa(i), i))
	}
	fake := &fakeSocrata{rows: rows}
	f := newTestFetcher(t, fake, fetcher.WithPageSize(2))

	d, err := f.Limit(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, d.Len())
	assert.Equal(t, 3, fake.count(func(q url.Values) bool { return q.Get("$order") == ":id" }))
}

func TestLimit_StopsOnShortPage(t *testing.T) {
	fake := &fakeSocrata{rows: []map[string]string{srRow("1", 1), srRow("2", 2), srRow("3", 3)}}
	f := newTestFetcher(t, fake, fetcher.WithPageSize(2))

	d, err := f.Limit(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())
	assert.Len(t, fake.requests, 2)
}

func TestLimit_RejectsNonPositive(t *testing.T) {
	f := newTestFetcher(t, &fakeSocrata{})
	_, err := f.Limit(context.Background(), 0)
	require.Error(t, err)
}

func windowRows() []map[string]string {
	return []map[string]string{
		srRow("a", 1), srRow("b", 2), srRow("c", 3), srRow("d", 4), srRow("e", 5),
		srRow("old1", 20), srRow("old2", 21), srRow("old3", 22),
	}
}

func TestWindow_ServerSideFilter(t *testing.T) {
	fake := &fakeSocrata{rows: windowRows()}
	f := newTestFetcher(t, fake, fetcher.WithPageSize(2))

	res, err := f.Window(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Equal(t, fetcher.StrategyWhere, res.Strategy)
	assert.Equal(t, "created_date", res.Column)
	assert.Equal(t, 5, res.Dataset.Len())
	assert.Equal(t, time.Date(2025, 5, 22, 12, 0, 0, 0, time.UTC), res.Since)
}

func TestWindow_EmptyWindowKeepsSchema(t *testing.T) {
	fake := &fakeSocrata{rows: []map[string]string{srRow("old1", 200), srRow("old2", 300)}}
	f := newTestFetcher(t, fake)

	res, err := f.Window(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Equal(t, fetcher.StrategyWhere, res.Strategy)
	assert.Equal(t, 0, res.Dataset.Len())
	assert.Equal(t, []string{"created_date", "sr_number"}, res.Dataset.Columns())
}

func TestWindow_CastRetryOnTypeMismatch(t *testing.T) {
	fake := &fakeSocrata{rows: windowRows(), textColumns: map[string]bool{"created_date": true}}
	f := newTestFetcher(t, fake)

	res, err := f.Window(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Equal(t, fetcher.StrategyWhereCast, res.Strategy)
	assert.Equal(t, 5, res.Dataset.Len())
	assert.Positive(t, fake.count(func(q url.Values) bool {
		return q.Get("$order") == "created_date::floating_timestamp"
	}))
}

func TestWindow_FallbackStopsPastWindow(t *testing.T) {
	fake := &fakeSocrata{rows: windowRows(), badColumns: map[string]bool{"created_date": true}}
	f := newTestFetcher(t, fake, fetcher.WithPageSize(2))

	res, err := f.Window(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Equal(t, fetcher.StrategyFallback, res.Strategy)
	assert.Equal(t, 5, res.Dataset.Len())
	// [a b] [c d] [e old1] [old2 old3] -> stops after the first page with nothing in window.
	assert.Equal(t, 4, res.Pages)
	assert.Equal(t, "created_date", res.Column)
	assert.Positive(t, fake.count(func(q url.Values) bool {
		return q.Get("$where") == "" && q.Get("$order") == "created_date DESC"
	}))
}

func TestWindow_FallbackHonoursMaxPages(t *testing.T) {
	fake := &fakeSocrata{rows: windowRows(), badColumns: map[string]bool{"created_date": true}}
	f := newTestFetcher(t, fake, fetcher.WithPageSize(2), fetcher.WithMaxPages(1))

	res, err := f.Window(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 2, res.Dataset.Len())
}

func TestWindow_CreatedFieldMustExist(t *testing.T) {
	f := newTestFetcher(t, &fakeSocrata{rows: windowRows()})

	_, err := f.Window(context.Background(), 10, "requested_datetime")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestWindow_NoDateColumn(t *testing.T) {
	f := newTestFetcher(t, &fakeSocrata{rows: []map[string]string{{"sr_number": "1"}}})

	_, err := f.Window(context.Background(), 10, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no suitable date column")
}

func TestWindow_UnauthorizedSurfacesFetchError(t *testing.T) {
	f := newTestFetcher(t, &fakeSocrata{status: http.StatusForbidden})

	_, err := f.Window(context.Background(), 10, "")
	require.Error(t, err)
	assert.True(t, socrata.IsUnauthorized(err))
}

func TestColumns_Cached(t *testing.T) {
	fake := &fakeSocrata{rows: windowRows()}
	f := newTestFetcher(t, fake)

	for i := 0; i < 2; i++ {
		cols, err := f.Columns(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"created_date", "sr_number"}, cols)
	}
	assert.Len(t, fake.requests, 1)
}

func TestLoad_Sources(t *testing.T) {
	assert.Equal(t, []string{"api", "csv"}, fetcher.SourceNames())

	t.Run("api limit", func(t *testing.T) {
		f := newTestFetcher(t, &fakeSocrata{rows: windowRows()})
		got, err := f.Load(context.Background(), "api", fetcher.Request{Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, "API (limit=3)", got.Label)
		assert.Equal(t, 3, got.Dataset.Len())
		assert.Nil(t, got.Window)
	})

	t.Run("api window", func(t *testing.T) {
		f := newTestFetcher(t, &fakeSocrata{rows: windowRows()})
		got, err := f.Load(context.Background(), "api", fetcher.Request{Days: 10})
		require.NoError(t, err)
		assert.Equal(t, "API (last 10 days)", got.Label)
		require.NotNil(t, got.Window)
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chi311.csv")
		require.NoError(t, os.WriteFile(path, []byte("sr_number,status\nSR1,Open\nSR2,\n"), 0o644))

		got, err := fetcher.NewFetcher(nil).Load(context.Background(), "csv", fetcher.Request{Path: path})
		require.NoError(t, err)
		assert.Equal(t, "CSV ("+path+")", got.Label)
		assert.Equal(t, 2, got.Dataset.Len())
		assert.True(t, got.Dataset.IsNull(1, "status"))
	})

	t.Run("csv missing path", func(t *testing.T) {
		_, err := fetcher.NewFetcher(nil).Load(context.Background(), "csv", fetcher.Request{})
		require.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := fetcher.NewFetcher(nil).Load(context.Background(), "ftp", fetcher.Request{})
		require.Error(t, err)
	})
}
