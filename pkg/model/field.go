package model

import (
	"fmt"
	"strings"
)

// Field selects which parts of an entity a query projects into its result.
// Fields combine as a bit set.
type Field uint

const (
	// FieldEvents exposes the entity's full event list.
	FieldEvents Field = 1 << iota
	// FieldRelatedEntities exposes the entity's relation map.
	FieldRelatedEntities
	// FieldPrimaryFilters exposes the entity's primary filters.
	FieldPrimaryFilters
	// FieldOtherInfo exposes the entity's free-form attributes.
	FieldOtherInfo
	// FieldLastEventOnly exposes only the most recent event. Ignored when
	// FieldEvents is also set.
	FieldLastEventOnly
)

// AllFields is the default projection: everything except the
// last-event-only shortcut, which FieldEvents subsumes.
const AllFields = FieldEvents | FieldRelatedEntities | FieldPrimaryFilters | FieldOtherInfo

// Has reports whether f includes the given field.
func (f Field) Has(field Field) bool {
	return f&field != 0
}

// ParseFields converts a comma-separated field list (as accepted by the
// REST API) into a Field set. An empty string yields zero, which queries
// treat as "all fields".
func ParseFields(s string) (Field, error) {
	var fields Field
	if s == "" {
		return fields, nil
	}
	for _, name := range strings.Split(s, ",") {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "EVENTS":
			fields |= FieldEvents
		case "RELATED_ENTITIES", "RELATEDENTITIES":
			fields |= FieldRelatedEntities
		case "PRIMARY_FILTERS", "PRIMARYFILTERS":
			fields |= FieldPrimaryFilters
		case "OTHER_INFO", "OTHERINFO":
			fields |= FieldOtherInfo
		case "LAST_EVENT_ONLY", "LASTEVENTONLY":
			fields |= FieldLastEventOnly
		case "":
		default:
			return 0, fmt.Errorf("unknown field %q", name)
		}
	}
	return fields, nil
}
