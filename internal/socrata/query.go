package socrata

import (
	"net/url"
	"strconv"
	"time"
)

// Query is a SoQL query expressed through the resource endpoint's $-parameters.
// Zero fields are omitted.
type Query struct {
	Limit  int
	Offset int
	Where  string
	Order  string
}

func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("$limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("$offset", strconv.Itoa(q.Offset))
	}
	if q.Where != "" {
		v.Set("$where", q.Where)
	}
	if q.Order != "" {
		v.Set("$order", q.Order)
	}
	return v
}

// SinceClause compares column against a UTC cutoff with second precision.
// When cast is true the column is cast to floating_timestamp first, which
// text-typed date columns need.
func SinceClause(column string, since time.Time, cast bool) (where, order string) {
	col := column
	if cast {
		col = column + "::floating_timestamp"
	}
	return col + " >= '" + since.UTC().Format("2006-01-02T15:04:05Z") + "'", col
}
