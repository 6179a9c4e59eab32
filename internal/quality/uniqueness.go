package quality

import "chi311/internal/dataset"

// Uniqueness is the duplicate-identifier result for one column.
type Uniqueness struct {
	Column     string `json:"column"`
	Available  bool   `json:"available"`
	Duplicates int    `json:"duplicates"`
	Groups     int    `json:"groups"`
}

// Duplicates groups rows by the identifier column. Duplicates is the number of
// rows beyond the first in every group larger than one; Groups is how many
// such groups exist. Null identifiers are left to the missing-value check.
func Duplicates(d *dataset.Dataset, column string) Uniqueness {
	res := Uniqueness{Column: column}
	if column == "" || !d.Has(column) {
		return res
	}
	res.Available = true

	seen := make(map[string]int)
	for r := 0; r < d.Len(); r++ {
		v, ok := d.String(r, column)
		if !ok {
			continue
		}
		seen[v]++
		switch seen[v] {
		case 1:
		case 2:
			res.Groups++
			res.Duplicates++
		default:
			res.Duplicates++
		}
	}
	return res
}
