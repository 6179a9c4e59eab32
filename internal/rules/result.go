package rules

import "strings"

type Status string

const (
	StatusPass  Status = "PASS"
	StatusInfo  Status = "INFO"
	StatusWarn  Status = "WARN"
	StatusFail  Status = "FAIL"
	StatusError Status = "ERROR"
)

// Rank orders statuses by severity. Unknown statuses rank below PASS.
func (s Status) Rank() int {
	switch s {
	case StatusPass:
		return 1
	case StatusInfo:
		return 2
	case StatusWarn:
		return 3
	case StatusFail:
		return 4
	case StatusError:
		return 5
	}
	return 0
}

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if st.Rank() == 0 {
		return "", false
	}
	return st, true
}

type Result struct {
	RuleID string `json:"rule_id"`
	// Check is the human-readable check name shown in reports.
	Check   string `json:"check"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	// Evidence contains simple key-value string pairs supporting the result.
	Evidence map[string]string `json:"evidence,omitempty"`
	// Metadata contains structured data supporting the result (e.g. counts, rates).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Overall folds results into one gate status: FAIL if any result failed or
// errored, else WARN if any warned, else PASS. INFO never escalates.
func Overall(results []Result) Status {
	overall := StatusPass
	for _, r := range results {
		switch r.Status {
		case StatusFail, StatusError:
			return StatusFail
		case StatusWarn:
			overall = StatusWarn
		}
	}
	return overall
}
