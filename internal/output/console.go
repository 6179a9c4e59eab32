package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"chi311/internal/rules"

	"github.com/fatih/color"
)

type ConsoleSink struct {
	writer          io.Writer
	format          string // "text", "json", "ndjson"
	mu              sync.Mutex
	results         []rules.Result // For JSON array output
	allowedStatuses map[rules.Status]bool
	colorize        bool
}

func NewConsoleSink(w io.Writer, format string, filterStatuses []string) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = FormatText
	}

	s := &ConsoleSink{
		writer:   w,
		format:   format,
		colorize: w == os.Stdout && !color.NoColor,
	}

	if len(filterStatuses) > 0 {
		s.allowedStatuses = make(map[rules.Status]bool)
		for _, st := range filterStatuses {
			if parsed, ok := rules.ParseStatus(st); ok {
				s.allowedStatuses[parsed] = true
			}
		}
	}

	return s
}

// WithColor forces status tags to be coloured (or not) regardless of terminal detection.
func (s *ConsoleSink) WithColor(on bool) *ConsoleSink {
	s.colorize = on
	return s
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	if len(s.allowedStatuses) > 0 {
		if r, ok := v.(rules.Result); ok {
			if !s.allowedStatuses[r.Status] {
				return nil
			}
		}
	}

	switch s.format {
	case FormatJSON:
		r, ok := v.(rules.Result)
		if !ok {
			// Ignore non-result events in JSON console mode.
			return nil
		}
		s.results = append(s.results, r)
		return nil
	case FormatNDJSON:
		return writeNDJSON(s.writer, v)
	case FormatText:
		r, ok := v.(rules.Result)
		if !ok {
			return nil
		}
		if _, err := fmt.Fprintln(s.writer, s.textLine(r)); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

// textLine renders "[STATUS] Check (rule-id) - message".
func (s *ConsoleSink) textLine(r rules.Result) string {
	var b strings.Builder
	b.WriteString(StatusTag(r.Status, s.colorize))
	b.WriteString(" ")
	name := r.Check
	if name == "" {
		name = r.RuleID
	}
	b.WriteString(name)
	if r.Check != "" && r.RuleID != "" {
		fmt.Fprintf(&b, " (%s)", r.RuleID)
	}
	if r.Message != "" {
		b.WriteString(" - ")
		b.WriteString(r.Message)
	}
	return b.String()
}

var statusColors = map[rules.Status]color.Attribute{
	rules.StatusPass:  color.FgGreen,
	rules.StatusInfo:  color.FgCyan,
	rules.StatusWarn:  color.FgYellow,
	rules.StatusFail:  color.FgRed,
	rules.StatusError: color.FgMagenta,
}

// StatusTag renders "[STATUS]", optionally coloured by severity.
func StatusTag(st rules.Status, colorize bool) string {
	tag := "[" + string(st) + "]"
	attr, ok := statusColors[st]
	if !colorize || !ok {
		return tag
	}
	c := color.New(attr, color.Bold)
	c.EnableColor()
	return c.Sprint(tag)
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case FormatJSON:
		return writeJSONArray(s.writer, s.results)
	case FormatText, FormatNDJSON:
		return nil
	}
	return fmt.Errorf("unsupported console format: %s", s.format)
}
