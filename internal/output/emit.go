package output

import (
	"fmt"
	"io"
	"sync"

	"chi311/internal/rules"
)

// EmitSink writes additional structured outputs.
//
// Formats:
//   - json: aggregates rule results and writes a single JSON array on Close
//   - ndjson: streams Event values (one JSON object per line)
type EmitSink struct {
	writer  io.Writer
	format  string // "json" | "ndjson"
	mu      sync.Mutex
	results []rules.Result
}

func NewEmitSink(w io.Writer, format string) (*EmitSink, error) {
	if w == nil {
		return nil, fmt.Errorf("emit sink writer must not be nil")
	}
	if err := checkStructuredFormat(format); err != nil {
		return nil, err
	}
	return &EmitSink{writer: w, format: format}, nil
}

func (s *EmitSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == FormatNDJSON {
		return writeNDJSON(s.writer, v)
	}
	if r, ok := v.(rules.Result); ok {
		s.results = append(s.results, r)
	}
	return nil
}

func (s *EmitSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == FormatJSON {
		return writeJSONArray(s.writer, s.results)
	}
	return nil
}
