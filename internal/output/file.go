package output

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"chi311/internal/rules"
)

// FileSink buffers structured results and writes them to path on Close.
// The file is replaced atomically, so a failed run never leaves a partial file.
type FileSink struct {
	path    string
	format  string
	mu      sync.Mutex
	buf     bytes.Buffer
	results []rules.Result
}

func NewFileSink(path string, format string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("output path required")
	}

	// Infer format if not provided
	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".json":
			format = FormatJSON
		case ".ndjson", ".jsonl":
			format = FormatNDJSON
		default:
			return nil, fmt.Errorf("cannot infer output format from file extension %q", ext)
		}
	}

	if format != FormatJSON && format != FormatNDJSON {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	return &FileSink{path: path, format: format}, nil
}

func (s *FileSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == FormatNDJSON {
		return writeNDJSON(&s.buf, v)
	}
	if r, ok := v.(rules.Result); ok {
		s.results = append(s.results, r)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == FormatJSON {
		if err := writeJSONArray(&s.buf, s.results); err != nil {
			return err
		}
	}
	return WriteFileAtomic(s.path, s.buf.Bytes())
}
