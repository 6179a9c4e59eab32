package dataset

// Field is a logical column. Public 311 exports have renamed columns over the
// years, so each Field maps to a list of physical names and resolves to the
// first one present.
type Field string

const (
	FieldSRNumber    Field = "sr_number"
	FieldCreatedDate Field = "created_date"
	FieldClosedDate  Field = "closed_date"
	FieldType        Field = "type"
	FieldStatus      Field = "status"
	FieldLegacy      Field = "legacy"
	FieldAddress     Field = "address"
	FieldLat         Field = "lat"
	FieldLon         Field = "lon"
	FieldX           Field = "x"
	FieldY           Field = "y"
)

var candidates = map[Field][]string{
	FieldSRNumber:    {"sr_number", "service_request_number", "srnumber", "sr_no"},
	FieldCreatedDate: {"created_date", "creation_date", "date_created", "open_date", "sr_created_date", "requested_datetime"},
	FieldClosedDate:  {"closed_date", "completion_date", "date_closed", "status_date", "closed_datetime", "closed_date_time"},
	FieldType:        {"service_request_type", "sr_type", "type_of_service_request", "type", "sr_short_description"},
	FieldStatus:      {"status", "sr_status", "current_status"},
	FieldLegacy:      {"legacy_record", "is_legacy_record", "legacy"},
	FieldAddress:     {"street_address", "address", "request_address", "location_address"},
	FieldLat:         {"latitude", "lat", "location_latitude"},
	FieldLon:         {"longitude", "lon", "location_longitude"},
	FieldX:           {"x_coordinate", "xcoord", "x_coordinate_state_plane"},
	FieldY:           {"y_coordinate", "ycoord", "y_coordinate_state_plane"},
}

// AllFields lists every logical field in a stable order.
var AllFields = []Field{
	FieldSRNumber, FieldCreatedDate, FieldClosedDate, FieldType, FieldStatus,
	FieldLegacy, FieldAddress, FieldLat, FieldLon, FieldX, FieldY,
}

// DateColumnCandidates are the physical columns treated as timestamps by the
// ingestion job, most authoritative first.
var DateColumnCandidates = []string{
	"requested_datetime",
	"last_modified_date",
	"closed_date",
	"created_date",
	"creation_date",
	"open_date",
	"sr_created_date",
	"date_created",
}

// Candidates returns the physical column names tried for f.
func Candidates(f Field) []string {
	out := make([]string, len(candidates[f]))
	copy(out, candidates[f])
	return out
}

// Resolve returns the first physical column present for f.
func (d *Dataset) Resolve(f Field) (string, bool) {
	for _, c := range candidates[f] {
		if d.Has(c) {
			return c, true
		}
	}
	return "", false
}

// ResolvedColumns maps logical fields to the physical columns found in a dataset.
// Fields with no matching column are absent from the map.
type ResolvedColumns map[Field]string

// ResolveAll resolves every logical field once.
func (d *Dataset) ResolveAll() ResolvedColumns {
	out := make(ResolvedColumns, len(AllFields))
	for _, f := range AllFields {
		if c, ok := d.Resolve(f); ok {
			out[f] = c
		}
	}
	return out
}

// Get returns the physical column for f.
func (rc ResolvedColumns) Get(f Field) (string, bool) {
	c, ok := rc[f]
	return c, ok
}
