package quality

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"chi311/internal/dataset"
)

// ValueCount is one distinct value and how often it occurs.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts is ordered by Count descending; ties keep first-seen order.
type ValueCounts []ValueCount

// Get returns the count for value.
func (v ValueCounts) Get(value string) int {
	for _, c := range v {
		if c.Value == value {
			return c.Count
		}
	}
	return 0
}

// Total sums every count.
func (v ValueCounts) Total() int {
	n := 0
	for _, c := range v {
		n += c.Count
	}
	return n
}

// Top returns at most n entries.
func (v ValueCounts) Top(n int) ValueCounts {
	if n < 0 || n >= len(v) {
		return v
	}
	return v[:n]
}

// Tabulate counts the distinct non-null values of a column.
func Tabulate(d *dataset.Dataset, column string) ValueCounts {
	if column == "" || !d.Has(column) {
		return nil
	}
	var keys []string
	counts := make(map[string]int)
	for r := 0; r < d.Len(); r++ {
		v, ok := d.String(r, column)
		if !ok {
			continue
		}
		tally(&keys, counts, v)
	}
	return ranked(keys, counts)
}

func tally(keys *[]string, counts map[string]int, v string) {
	if _, ok := counts[v]; !ok {
		*keys = append(*keys, v)
	}
	counts[v]++
}

func ranked(keys []string, counts map[string]int) ValueCounts {
	out := make(ValueCounts, len(keys))
	for i, k := range keys {
		out[i] = ValueCount{Value: k, Count: counts[k]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Format renders the counts as a JSON object in rank order, e.g.
// {"false": 990, "true": 10}. A positive nulls is appended as "null".
func (v ValueCounts) Format(nulls int) string {
	var b strings.Builder
	b.WriteString("{")
	for i, c := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(c.Value)
		b.Write(key)
		b.WriteString(": " + strconv.Itoa(c.Count))
	}
	if nulls > 0 {
		if len(v) > 0 {
			b.WriteString(", ")
		}
		b.WriteString(`"null": ` + strconv.Itoa(nulls))
	}
	b.WriteString("}")
	return b.String()
}
