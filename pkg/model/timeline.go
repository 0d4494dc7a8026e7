package model

import (
	"reflect"
	"sort"
)

// Entity is one unit of application history: a typed, identified record
// carrying timestamped events, references to other entities, and free-form
// attributes. Entities are ingested incrementally; any subset of fields may
// be present on a fragment and is merged into the stored record.
type Entity struct {
	ID              string              `json:"entity"`
	Type            string              `json:"entitytype"`
	StartTime       *int64              `json:"starttime,omitempty"`
	DomainID        string              `json:"domain,omitempty"`
	Events          []Event             `json:"events,omitempty"`
	RelatedEntities map[string][]string `json:"relatedentities,omitempty"`
	PrimaryFilters  map[string][]any    `json:"primaryfilters,omitempty"`
	OtherInfo       map[string]any      `json:"otherinfo,omitempty"`
}

// Event is a single timestamped occurrence attached to an entity.
// Events are immutable once appended to an entity.
type Event struct {
	Timestamp int64          `json:"timestamp"`
	Type      string         `json:"eventtype"`
	Info      map[string]any `json:"eventinfo,omitempty"`
}

// EntityEvents groups the events returned for one entity by a timeline
// query, preserving the entity's timestamp-descending order.
type EntityEvents struct {
	EntityID   string  `json:"entity"`
	EntityType string  `json:"entitytype"`
	Events     []Event `json:"events"`
}

// Domain is an access-control scope. Readers and Writers hold the
// owner-supplied ACL specifications consumed by the access checker.
type Domain struct {
	ID           string `json:"id"`
	Description  string `json:"description,omitempty"`
	Owner        string `json:"owner,omitempty"`
	Readers      string `json:"readers,omitempty"`
	Writers      string `json:"writers,omitempty"`
	CreatedTime  int64  `json:"createdtime,omitempty"`
	ModifiedTime int64  `json:"modifiedtime,omitempty"`
}

// EntityList wraps the entities returned by a query.
type EntityList struct {
	Entities []*Entity `json:"entities"`
}

// EventsList wraps per-entity event groups returned by a timeline query.
type EventsList struct {
	Events []EntityEvents `json:"events"`
}

// DomainList wraps the domains returned for one owner.
type DomainList struct {
	Domains []*Domain `json:"domains"`
}

// NameValue is a single filter term: a name matched against an entity's
// primary filters or other info.
type NameValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Compare orders entities for presentation: by type, then id, then start
// time descending. Returns a negative number, zero, or a positive number as
// e sorts before, equal to, or after other.
func (e *Entity) Compare(other *Entity) int {
	if c := compareStrings(e.Type, other.Type); c != 0 {
		return c
	}
	if c := compareStrings(e.ID, other.ID); c != 0 {
		return c
	}
	return compareInt64(startTimeOf(other), startTimeOf(e))
}

// AddEvents appends events and restores the timestamp-descending order.
// Duplicates are kept; the store's merge rule is append plus sort.
func (e *Entity) AddEvents(events []Event) {
	e.Events = append(e.Events, events...)
	SortEvents(e.Events)
}

// AddRelatedEntity records a reference to another entity, ignoring the
// call if the reference is already present.
func (e *Entity) AddRelatedEntity(entityType, entityID string) {
	if e.RelatedEntities == nil {
		e.RelatedEntities = make(map[string][]string)
	}
	for _, id := range e.RelatedEntities[entityType] {
		if id == entityID {
			return
		}
	}
	e.RelatedEntities[entityType] = append(e.RelatedEntities[entityType], entityID)
}

// AddPrimaryFilter adds one value to the named filter set. Values compare
// by deep equality, so re-adding an existing value is a no-op.
func (e *Entity) AddPrimaryFilter(name string, value any) {
	if e.PrimaryFilters == nil {
		e.PrimaryFilters = make(map[string][]any)
	}
	for _, v := range e.PrimaryFilters[name] {
		if reflect.DeepEqual(v, value) {
			return
		}
	}
	e.PrimaryFilters[name] = append(e.PrimaryFilters[name], value)
}

// MatchPrimaryFilter reports whether the named filter set contains the
// filter's value.
func (e *Entity) MatchPrimaryFilter(filter NameValue) bool {
	values, ok := e.PrimaryFilters[filter.Name]
	if !ok {
		return false
	}
	for _, v := range values {
		if reflect.DeepEqual(v, filter.Value) {
			return true
		}
	}
	return false
}

// MatchOtherInfo reports whether the other-info attribute with the
// filter's name equals the filter's value.
func (e *Entity) MatchOtherInfo(filter NameValue) bool {
	v, ok := e.OtherInfo[filter.Name]
	if !ok {
		return false
	}
	return reflect.DeepEqual(v, filter.Value)
}

// SortEvents orders events by timestamp descending, breaking ties by event
// type so the order is stable across merges.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Timestamp != events[j].Timestamp {
			return events[i].Timestamp > events[j].Timestamp
		}
		return events[i].Type < events[j].Type
	})
}

// SortEntities orders entities by their presentation order.
func SortEntities(entities []*Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Compare(entities[j]) < 0
	})
}

// Clone returns a deep copy of the event.
func (ev Event) Clone() Event {
	return Event{
		Timestamp: ev.Timestamp,
		Type:      ev.Type,
		Info:      CloneInfo(ev.Info),
	}
}

// CloneEvents deep-copies a slice of events.
func CloneEvents(events []Event) []Event {
	if events == nil {
		return nil
	}
	out := make([]Event, len(events))
	for i, ev := range events {
		out[i] = ev.Clone()
	}
	return out
}

// CloneInfo deep-copies a free-form attribute map. Values are copied
// shallowly; stored values are scalars after normalization.
func CloneInfo(info map[string]any) map[string]any {
	if info == nil {
		return nil
	}
	out := make(map[string]any, len(info))
	for k, v := range info {
		out[k] = v
	}
	return out
}

// Clone returns a copy of the domain record.
func (d *Domain) Clone() *Domain {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}

func startTimeOf(e *Entity) int64 {
	if e.StartTime == nil {
		return 0
	}
	return *e.StartTime
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
