package output

import (
	"encoding/json"
	"fmt"
	"io"

	"chi311/internal/rules"
)

const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
)

type flusher interface {
	Flush() error
}

func flushIfPossible(w io.Writer) error {
	f, ok := w.(flusher)
	if !ok {
		return nil
	}
	return f.Flush()
}

// writeNDJSON encodes one line for v. Values that are neither an Event nor a
// Result are ignored.
func writeNDJSON(w io.Writer, v any) error {
	var e Event
	switch t := v.(type) {
	case Event:
		e = t
	case rules.Result:
		e = eventFromResult(t)
	default:
		return nil
	}
	if err := json.NewEncoder(w).Encode(e); err != nil {
		return err
	}
	return flushIfPossible(w)
}

// writeJSONArray writes the aggregated results as one indented array.
func writeJSONArray(w io.Writer, results []rules.Result) error {
	if results == nil {
		results = []rules.Result{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return err
	}
	return flushIfPossible(w)
}

func checkStructuredFormat(format string) error {
	if format != FormatJSON && format != FormatNDJSON {
		return fmt.Errorf("unsupported emit format: %s", format)
	}
	return nil
}
