package rules

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

var (
	registry = make(map[string]Rule)
	mu       sync.RWMutex
)

func Register(r Rule) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[r.ID()]; exists {
		panic(fmt.Sprintf("rule %s already registered", r.ID()))
	}
	// Every rule gets the max_status option.
	registry[r.ID()] = &StatusCapWrapper{Rule: r}
}

func List() []Rule {
	mu.RLock()
	defer mu.RUnlock()
	return sortedLocked()
}

func sortedLocked() []Rule {
	all := make([]Rule, 0, len(registry))
	for _, r := range registry {
		all = append(all, r)
	}
	sortRules(all)
	return all
}

// sortRules orders rules by position, then ID.
func sortRules(rs []Rule) {
	sort.SliceStable(rs, func(i, j int) bool {
		pi, pj := position(rs[i]), position(rs[j])
		if pi != pj {
			return pi < pj
		}
		return rs[i].ID() < rs[j].ID()
	})
}

func position(r Rule) int {
	if w, ok := r.(*StatusCapWrapper); ok {
		r = w.Rule
	}
	if p, ok := r.(PositionedRule); ok {
		return p.Position()
	}
	return math.MaxInt
}

// Lookup returns one registered rule by ID.
func Lookup(id string) (Rule, bool) {
	mu.RLock()
	defer mu.RUnlock()
	r, ok := registry[strings.TrimSpace(id)]
	return r, ok
}

// Resolve selects rules by a comma-separated ID list, in listing order. An empty
// selector selects every rule. A trailing "*" matches IDs by prefix (e.g. "completeness-*").
func Resolve(selector string) ([]Rule, error) {
	mu.RLock()
	defer mu.RUnlock()

	if strings.TrimSpace(selector) == "" {
		return sortedLocked(), nil
	}

	seen := make(map[string]bool)
	var selected []Rule
	for _, id := range strings.Split(selector, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if prefix, ok := strings.CutSuffix(id, "*"); ok {
			matched := false
			for _, r := range sortedLocked() {
				if strings.HasPrefix(r.ID(), prefix) {
					matched = true
					if !seen[r.ID()] {
						seen[r.ID()] = true
						selected = append(selected, r)
					}
				}
			}
			if !matched {
				return nil, fmt.Errorf("no rules match: %s", id)
			}
			continue
		}
		r, ok := registry[id]
		if !ok {
			return nil, fmt.Errorf("rule not found: %s", id)
		}
		if !seen[id] {
			seen[id] = true
			selected = append(selected, r)
		}
	}
	sortRules(selected)
	return selected, nil
}
