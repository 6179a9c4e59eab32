package output

import "chi311/internal/rules"

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line):
// - run.started
// - rule.result
// - run.finished
//
// JSON mode remains an aggregate of rules.Result values.
type Event struct {
	Type   string `json:"type"`
	RunID  string `json:"run_id,omitempty"`
	Source string `json:"source,omitempty"`
	*rules.Result
	Rows     int          `json:"rows,omitempty"`
	Rules    int          `json:"rules,omitempty"`
	Overall  rules.Status `json:"overall,omitempty"`
	ExitCode int          `json:"exit_code,omitempty"`
}

const (
	EventRunStarted  = "run.started"
	EventRuleResult  = "rule.result"
	EventRunFinished = "run.finished"
)

func eventFromResult(r rules.Result) Event {
	return Event{Type: EventRuleResult, Result: &r}
}
