package rules

func NewResult(ruleID, check string, status Status, message string) Result {
	res := Result{
		RuleID: ruleID,
		Check:  check,
		Status: status,
	}
	if message != "" {
		res.Message = message
	}
	return res
}

func PassResult(ruleID, check, message string) Result {
	return NewResult(ruleID, check, StatusPass, message)
}

func InfoResult(ruleID, check, message string) Result {
	return NewResult(ruleID, check, StatusInfo, message)
}

func WarnResult(ruleID, check, message string) Result {
	return NewResult(ruleID, check, StatusWarn, message)
}

func FailResult(ruleID, check, message string) Result {
	return NewResult(ruleID, check, StatusFail, message)
}

func ErrorResult(ruleID, check, message string) Result {
	return NewResult(ruleID, check, StatusError, message)
}

// WithMetadata returns r with metadata attached.
func (r Result) WithMetadata(metadata map[string]any) Result {
	r.Metadata = metadata
	return r
}

// StatusIf returns bad when cond holds, otherwise PASS.
func StatusIf(cond bool, bad Status) Status {
	if cond {
		return bad
	}
	return StatusPass
}
