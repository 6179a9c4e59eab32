package quality

import (
	"math"
	"sort"
	"strings"

	"chi311/internal/dataset"
)

const (
	// DefaultTopN is the leaderboard length for the information-only tables.
	DefaultTopN = 5
	// DefaultClusterPrecision is the number of decimals coordinates are rounded
	// to before grouping (about 100 m at Chicago's latitude).
	DefaultClusterPrecision = 3
)

// Cluster is a rounded coordinate bucket.
type Cluster struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Count int     `json:"count"`
}

// InfoOnly is the "information only" call-centre heuristic. Such calls are
// often filed against the call centre's own address, so one address or one
// coordinate bucket dominating them signals placeholder locations.
type InfoOnly struct {
	Available    bool        `json:"available"`
	Count        int         `json:"count"`
	TopAddresses ValueCounts `json:"top_addresses,omitempty"`
	TopClusters  []Cluster   `json:"top_clusters,omitempty"`
}

// Dominance is the share of information-only calls filed at the top address.
func (i InfoOnly) Dominance() float64 {
	if i.Count == 0 || len(i.TopAddresses) == 0 {
		return 0
	}
	return float64(i.TopAddresses[0].Count) / float64(i.Count)
}

// InfoOnlyOptions tunes the heuristic. Zero values select the defaults.
type InfoOnlyOptions struct {
	TopN      int
	Precision int
}

func (o InfoOnlyOptions) withDefaults() InfoOnlyOptions {
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.Precision <= 0 {
		o.Precision = DefaultClusterPrecision
	}
	return o
}

// IsInformationOnly matches request types naming both "information" and "only",
// case-insensitively (e.g. "311 INFORMATION ONLY CALL").
func IsInformationOnly(srType string) bool {
	s := strings.ToLower(srType)
	return strings.Contains(s, "information") && strings.Contains(s, "only")
}

// InformationOnly filters information-only rows and ranks them by exact street
// address and by coordinates rounded to opts.Precision decimals. Rows with a null
// address or coordinate are left out of the respective leaderboard.
func InformationOnly(d *dataset.Dataset, cols dataset.ResolvedColumns, opts InfoOnlyOptions) InfoOnly {
	opts = opts.withDefaults()
	typeCol, ok := cols.Get(dataset.FieldType)
	if !ok {
		return InfoOnly{}
	}
	res := InfoOnly{Available: true}

	info := d.Filter(func(r int) bool {
		v, ok := d.String(r, typeCol)
		return ok && IsInformationOnly(v)
	})
	res.Count = info.Len()
	if res.Count == 0 {
		return res
	}

	if addrCol, ok := cols.Get(dataset.FieldAddress); ok {
		res.TopAddresses = Tabulate(info, addrCol).Top(opts.TopN)
	}

	latCol, okLat := cols.Get(dataset.FieldLat)
	lonCol, okLon := cols.Get(dataset.FieldLon)
	if okLat && okLon {
		res.TopClusters = clusters(info, latCol, lonCol, opts)
	}
	return res
}

func clusters(d *dataset.Dataset, latCol, lonCol string, opts InfoOnlyOptions) []Cluster {
	type key struct{ lat, lon float64 }
	var order []key
	counts := make(map[key]int)
	scale := math.Pow(10, float64(opts.Precision))

	for r := 0; r < d.Len(); r++ {
		lat, ok1 := d.Float(r, latCol)
		lon, ok2 := d.Float(r, lonCol)
		if !ok1 || !ok2 || math.IsNaN(lat) || math.IsNaN(lon) {
			continue
		}
		k := key{math.Round(lat*scale) / scale, math.Round(lon*scale) / scale}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	out := make([]Cluster, len(order))
	for i, k := range order {
		out[i] = Cluster{Lat: k.lat, Lon: k.lon, Count: counts[k]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > opts.TopN {
		out = out[:opts.TopN]
	}
	return out
}
