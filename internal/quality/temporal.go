package quality

import (
	"time"

	"chi311/internal/dataset"
)

// Temporal holds the three date-ordering counters. A counter is only
// meaningful when its Has* flag is set; otherwise the column was not found or
// held no parseable timestamp.
type Temporal struct {
	CreatedColumn string `json:"created_column,omitempty"`
	ClosedColumn  string `json:"closed_column,omitempty"`

	HasFutureCreated       bool `json:"has_future_created"`
	HasFutureClosed        bool `json:"has_future_closed"`
	HasClosedBeforeCreated bool `json:"has_closed_before_created"`

	FutureCreated       int `json:"future_created"`
	FutureClosed        int `json:"future_closed"`
	ClosedBeforeCreated int `json:"closed_before_created"`
}

// TemporalAnomalies compares each row's created/closed timestamps against now
// and against each other. Unparseable timestamps count as null and never trip
// a counter.
func TemporalAnomalies(d *dataset.Dataset, createdCol, closedCol string, now time.Time) Temporal {
	res := Temporal{}
	hasCreated := createdCol != "" && d.Has(createdCol)
	hasClosed := closedCol != "" && d.Has(closedCol)
	if hasCreated {
		res.CreatedColumn = createdCol
	}
	if hasClosed {
		res.ClosedColumn = closedCol
	}

	var anyCreated, anyClosed bool
	for r := 0; r < d.Len(); r++ {
		var created, closed time.Time
		var okCreated, okClosed bool
		if hasCreated {
			created, okCreated = d.Time(r, createdCol)
			anyCreated = anyCreated || okCreated
			if okCreated && created.After(now) {
				res.FutureCreated++
			}
		}
		if hasClosed {
			closed, okClosed = d.Time(r, closedCol)
			anyClosed = anyClosed || okClosed
			if okClosed && closed.After(now) {
				res.FutureClosed++
			}
		}
		if okCreated && okClosed && closed.Before(created) {
			res.ClosedBeforeCreated++
		}
	}

	// A column with no parseable timestamp cannot be judged.
	res.HasFutureCreated = anyCreated
	res.HasFutureClosed = anyClosed
	res.HasClosedBeforeCreated = anyCreated && anyClosed
	return res
}
