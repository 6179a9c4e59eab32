package socrata

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingToken is returned when no app token could be resolved.
var ErrMissingToken = errors.New("socrata app token is required (set SOCRATA_APP_TOKEN)")

type Stage string

const (
	StageAuth    Stage = "auth"
	StageRequest Stage = "request"
	StageStatus  Stage = "status"
	StageDecode  Stage = "decode"
)

// FetchError reports a network, authentication, HTTP-status or decoding failure.
type FetchError struct {
	Stage      Stage
	URL        string
	StatusCode int
	// Message is the (truncated) response body for non-2xx responses.
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString("fetch")
	if e.Stage != "" {
		b.WriteString(" (" + string(e.Stage) + ")")
	}
	b.WriteString(":")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " HTTP %d", e.StatusCode)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, " from %s", e.URL)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTypeMismatch reports whether Socrata rejected a $where comparison because
// the column is not a timestamp (text dates).
func IsTypeMismatch(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	msg := fe.Message
	return strings.Contains(msg, "type-mismatch") ||
		strings.Contains(msg, "Type mismatch") ||
		strings.Contains(msg, "op$>=")
}

// IsUnauthorized reports whether the endpoint rejected the credentials.
func IsUnauthorized(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	return fe.StatusCode == 401 || fe.StatusCode == 403
}
