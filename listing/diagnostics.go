package listing

import (
	"encoding/json"
	"sort"
)

// FieldStatus is the per-field progress within a reconciliation pass.
// Within one pass a field only advances; any failure resets the field
// (not the record) to StatusRequiredUnsatisfied for the next pass.
type FieldStatus int

const (
	// StatusUnknown means the field has not been attempted yet.
	StatusUnknown FieldStatus = iota
	// StatusRequiredUnsatisfied means the field's label exists on this
	// render but no commit has been verified.
	StatusRequiredUnsatisfied
	// StatusCommitted means a value was written this pass but not yet
	// verified by read-back.
	StatusCommitted
	// StatusVerified means the read-back matched under the field's
	// comparator.
	StatusVerified
)

func (s FieldStatus) String() string {
	switch s {
	case StatusRequiredUnsatisfied:
		return "required-unsatisfied"
	case StatusCommitted:
		return "committed"
	case StatusVerified:
		return "verified"
	}
	return "unknown"
}

// MarshalJSON encodes the status as its string form.
func (s FieldStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Diagnostics is the snapshot captured when a record finishes, listing
// which sub-checks passed. It is the caller-facing explanation of a
// FAILED record and the journal payload of every record.
type Diagnostics struct {
	DOMSuccess        bool                   `json:"dom_success"`
	AssetAttached     bool                   `json:"asset_attached"`
	SelectsConfirmed  bool                   `json:"selects_confirmed"`
	SaveConfirmed     bool                   `json:"save_confirmed"`
	NavigationConfirm bool                   `json:"navigation_confirmed"`
	Fields            map[string]FieldStatus `json:"fields"`
	Attempts          int                    `json:"attempts"`
	Stability         int                    `json:"stability"`
}

// Failed returns the names of unsatisfied checks, field commits
// included, in deterministic order. Empty means every check passed.
func (d Diagnostics) Failed() []string {
	var out []string
	if !d.DOMSuccess {
		out = append(out, "dom-success")
	}
	if !d.AssetAttached {
		out = append(out, "asset-attached")
	}
	if !d.SelectsConfirmed {
		out = append(out, "selects-confirmed")
	}

	var fields []string
	for name, st := range d.Fields {
		if st != StatusVerified && st != StatusUnknown {
			fields = append(fields, "field:"+name)
		}
	}
	sort.Strings(fields)
	out = append(out, fields...)

	if !d.SaveConfirmed {
		out = append(out, "save-confirmed")
	}
	if !d.NavigationConfirm {
		out = append(out, "navigation-confirmed")
	}
	return out
}

// OK reports whether every check passed.
func (d Diagnostics) OK() bool {
	return len(d.Failed()) == 0
}
