package quality

import "chi311/internal/dataset"

// CoordinateSystem names the column pair a spatial result was computed from.
type CoordinateSystem string

const (
	SystemNone   CoordinateSystem = ""
	SystemLatLon CoordinateSystem = "lat/lon"
	SystemXY     CoordinateSystem = "x/y"
)

// Spatial is the placeholder-coordinate count.
type Spatial struct {
	System    CoordinateSystem `json:"system"`
	Anomalies int              `json:"anomalies"`
}

// Available reports whether any coordinate pair was found.
func (s Spatial) Available() bool { return s.System != SystemNone }

// SpatialAnomalies counts rows whose coordinates are placeholders. The lat/lon
// pair is used when both columns exist, otherwise the projected x/y pair. A row
// is anomalous when either member of the pair is null, non-numeric or exactly zero.
func SpatialAnomalies(d *dataset.Dataset, cols dataset.ResolvedColumns) Spatial {
	a, okA := cols.Get(dataset.FieldLat)
	b, okB := cols.Get(dataset.FieldLon)
	system := SystemLatLon
	if !okA || !okB {
		a, okA = cols.Get(dataset.FieldX)
		b, okB = cols.Get(dataset.FieldY)
		system = SystemXY
	}
	if !okA || !okB {
		return Spatial{}
	}

	res := Spatial{System: system}
	for r := 0; r < d.Len(); r++ {
		if placeholder(d, r, a) || placeholder(d, r, b) {
			res.Anomalies++
		}
	}
	return res
}

func placeholder(d *dataset.Dataset, row int, column string) bool {
	f, ok := d.Float(row, column)
	return !ok || f == 0
}
