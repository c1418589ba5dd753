package convergence

import "strings"

// KeySeparator defines the delimiter used between target key segments.
const KeySeparator = "::"

// Target identifies one cache entry to refresh. Zone is optional: a target
// without a zone matches records in any zone.
type Target struct {
	Name    string `json:"name"`
	Region  string `json:"region"`
	Account string `json:"account"`
	Zone    string `json:"zone,omitempty"`
}

// Key builds a stable identifier for the target, suitable for map keys and
// diagnostics. Segments are joined with KeySeparator; the zone segment is
// omitted when the target has no zone.
func (t Target) Key() string {
	parts := []string{t.Name, t.Region, t.Account}
	if t.Zone != "" {
		parts = append(parts, t.Zone)
	}
	return strings.Join(parts, KeySeparator)
}

// Fields returns the request fields for a force-refresh call. Empty fields
// are stripped so the remote service never sees blank values.
func (t Target) Fields() map[string]string {
	fields := map[string]string{
		"name":    t.Name,
		"region":  t.Region,
		"account": t.Account,
	}
	if t.Zone != "" {
		fields["zone"] = t.Zone
	}
	return fields
}

// MatchesDetails reports whether a pending-update record's details describe
// this target. Every non-empty target field must be present in details with
// an equal value; extra detail fields are ignored. The comparison is spelled
// out field by field so the optional-zone rule stays visible: a target
// without a zone never rejects a record over its zone.
func (t Target) MatchesDetails(details map[string]string) bool {
	if details["name"] != t.Name {
		return false
	}
	if details["region"] != t.Region {
		return false
	}
	if details["account"] != t.Account {
		return false
	}
	if t.Zone != "" && details["zone"] != t.Zone {
		return false
	}
	return true
}
