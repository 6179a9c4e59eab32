package fetcher

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"chi311/internal/dataset"
)

// Request describes what to load. Days > 0 selects a time-window pull;
// otherwise Limit bounds the row count. Path is used by file sources.
type Request struct {
	Limit        int
	Days         int
	CreatedField string
	Path         string
}

// Loaded is a dataset plus a human-readable description of where it came from.
type Loaded struct {
	Dataset *dataset.Dataset
	Label   string
	// Window is set for time-window API pulls.
	Window *WindowResult
}

type Source interface {
	Name() string
	Load(ctx context.Context, req Request, f *Fetcher) (*Loaded, error)
}

var (
	sourceRegistry = make(map[string]Source)
	sourceMu       sync.RWMutex
)

func RegisterSource(s Source) {
	if s == nil {
		panic("source is nil")
	}
	name := s.Name()
	if name == "" {
		panic("source name is empty")
	}

	sourceMu.Lock()
	defer sourceMu.Unlock()
	if _, exists := sourceRegistry[name]; exists {
		panic(fmt.Sprintf("source %s already registered", name))
	}
	sourceRegistry[name] = s
}

func ResolveSource(name string) (Source, bool) {
	sourceMu.RLock()
	defer sourceMu.RUnlock()
	s, ok := sourceRegistry[name]
	return s, ok
}

// SourceNames returns the registered source names, sorted.
func SourceNames() []string {
	sourceMu.RLock()
	defer sourceMu.RUnlock()

	names := make([]string, 0, len(sourceRegistry))
	for n := range sourceRegistry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load resolves the named source and loads req from it.
func (f *Fetcher) Load(ctx context.Context, source string, req Request) (*Loaded, error) {
	if ctx == nil {
		return nil, fmt.Errorf("Load: nil context")
	}
	s, ok := ResolveSource(source)
	if !ok {
		return nil, fmt.Errorf("unsupported source: %s (must be one of: %s)", source, strings.Join(SourceNames(), ", "))
	}
	return s.Load(ctx, req, f)
}

type apiSource struct{}

func (apiSource) Name() string { return "api" }

func (apiSource) Load(ctx context.Context, req Request, f *Fetcher) (*Loaded, error) {
	if req.Days > 0 {
		res, err := f.Window(ctx, req.Days, req.CreatedField)
		if err != nil {
			return nil, err
		}
		return &Loaded{Dataset: res.Dataset, Label: fmt.Sprintf("API (last %d days)", req.Days), Window: res}, nil
	}
	d, err := f.Limit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	return &Loaded{Dataset: d, Label: fmt.Sprintf("API (limit=%d)", req.Limit)}, nil
}

// csvSource reads a local export. Limit and Days do not apply.
type csvSource struct{}

func (csvSource) Name() string { return "csv" }

func (csvSource) Load(_ context.Context, req Request, _ *Fetcher) (*Loaded, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("CSV path missing. Use --path data/chi311.csv")
	}
	if _, err := os.Stat(req.Path); err != nil {
		return nil, fmt.Errorf("CSV path missing. Use --path data/chi311.csv: %w", err)
	}
	d, err := dataset.LoadCSV(req.Path)
	if err != nil {
		return nil, err
	}
	return &Loaded{Dataset: d, Label: fmt.Sprintf("CSV (%s)", req.Path)}, nil
}

func init() {
	RegisterSource(apiSource{})
	RegisterSource(csvSource{})
}
