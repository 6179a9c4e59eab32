package checks

import (
	"fmt"
	"strconv"
	"strings"
)

// rateOption reads a fraction in [0, 1] from opts, falling back to def.
func rateOption(opts map[string]string, name string, def float64) (float64, error) {
	v, ok := opts[name]
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %s", name, v)
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("%s must be between 0 and 1 (got %s)", name, v)
	}
	return f, nil
}

func formatRate(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// percent renders a fraction with two decimals, e.g. 0.1634 -> "16.34%".
func percent(r float64) string {
	return fmt.Sprintf("%.2f%%", r*100)
}
