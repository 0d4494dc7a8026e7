package store

import (
	"iter"
	"math"

	"github.com/chroniclehq/chronicle/pkg/model"
)

// EntityQuery describes one entity scan. Nil pointer fields take their
// defaults: Limit the store's default limit, WindowStart negative infinity,
// WindowEnd positive infinity. A zero Fields value projects all fields.
type EntityQuery struct {
	EntityType       string
	Limit            *int64
	WindowStart      *int64
	WindowEnd        *int64
	FromID           string
	FromTS           *int64
	PrimaryFilter    *model.NameValue
	SecondaryFilters []model.NameValue
	Fields           model.Field
}

// GetEntities scans entities of the query's type in key order, applying the
// window, snapshot, filter and ACL predicates, and stops as soon as the
// limit is reached. When FromID is set, the scan resumes strictly after
// that entity's key; an unresolvable cursor yields an empty result. The
// surviving entities are field-projected copies, re-sorted into the
// presentation order. Returns nil when the store is stopped.
func (s *MemoryStore) GetEntities(q EntityQuery, checkACL CheckACL) *model.EntityList {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.log.Info("store stopped, returning nil entities")
		return nil
	}

	limit := s.defaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}
	windowStart := int64(math.MinInt64)
	if q.WindowStart != nil {
		windowStart = *q.WindowStart
	}
	windowEnd := int64(math.MaxInt64)
	if q.WindowEnd != nil {
		windowEnd = *q.WindowEnd
	}
	fields := q.Fields
	if fields == 0 {
		fields = model.AllFields
	}

	var candidates iter.Seq[*model.Entity]
	if q.FromID != "" {
		first, ok := s.entities.Get(EntityKey{ID: q.FromID, Type: q.EntityType})
		if !ok {
			return &model.EntityList{Entities: []*model.Entity{}}
		}
		candidates = s.entities.ValuesFrom(first)
	} else {
		candidates = s.entities.Values()
	}

	var selected []*model.Entity
	for entity := range candidates {
		if int64(len(selected)) >= limit {
			break
		}
		if entity.Type != q.EntityType {
			continue
		}
		// Stored entities always carry a start time.
		if *entity.StartTime <= windowStart {
			continue
		}
		if *entity.StartTime > windowEnd {
			continue
		}
		if q.FromTS != nil {
			insertTime, ok := s.insertTimes.Get(EntityKey{ID: entity.ID, Type: entity.Type})
			if ok && insertTime > *q.FromTS {
				continue
			}
		}
		if q.PrimaryFilter != nil && !entity.MatchPrimaryFilter(*q.PrimaryFilter) {
			continue
		}
		if !matchSecondaryFilters(entity, q.SecondaryFilters) {
			continue
		}
		if entity.DomainID == "" {
			entity.DomainID = s.defaultDomainID
		}
		if checkACL == nil || checkACL(entity) {
			selected = append(selected, entity)
		}
	}

	projected := make([]*model.Entity, 0, len(selected))
	for _, entity := range selected {
		projected = append(projected, maskFields(entity, fields))
	}
	model.SortEntities(projected)
	return &model.EntityList{Entities: projected}
}

// GetEntity returns a field-projected copy of one entity, or nil if it does
// not exist or the store is stopped.
func (s *MemoryStore) GetEntity(entityID, entityType string, fields model.Field) *model.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.log.Info("store stopped, returning nil entity")
		return nil
	}
	if fields == 0 {
		fields = model.AllFields
	}
	entity, ok := s.entities.Get(EntityKey{ID: entityID, Type: entityType})
	if !ok {
		return nil
	}
	return maskFields(entity, fields)
}

// GetEntityTimelines returns, for each requested id that exists, the
// entity's events filtered by the timestamp window and optional event-type
// set. The limit caps events per entity; since an entity's events are kept
// timestamp-descending, the cap retains the most recent qualifying events.
// Absent ids are skipped without error. Returns nil when the store is
// stopped.
func (s *MemoryStore) GetEntityTimelines(entityType string, entityIDs []string,
	limit, windowStart, windowEnd *int64, eventTypes []string) *model.EventsList {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.log.Info("store stopped, returning nil timelines")
		return nil
	}

	list := &model.EventsList{Events: []model.EntityEvents{}}
	if entityIDs == nil {
		return list
	}
	perEntityLimit := s.defaultLimit
	if limit != nil {
		perEntityLimit = *limit
	}
	start := int64(math.MinInt64)
	if windowStart != nil {
		start = *windowStart
	}
	end := int64(math.MaxInt64)
	if windowEnd != nil {
		end = *windowEnd
	}
	var typeSet map[string]struct{}
	if eventTypes != nil {
		typeSet = make(map[string]struct{}, len(eventTypes))
		for _, t := range eventTypes {
			typeSet[t] = struct{}{}
		}
	}

	for _, entityID := range entityIDs {
		entity, ok := s.entities.Get(EntityKey{ID: entityID, Type: entityType})
		if !ok {
			continue
		}
		events := model.EntityEvents{
			EntityID:   entityID,
			EntityType: entityType,
			Events:     []model.Event{},
		}
		for _, ev := range entity.Events {
			if int64(len(events.Events)) >= perEntityLimit {
				break
			}
			if ev.Timestamp <= start {
				continue
			}
			if ev.Timestamp > end {
				continue
			}
			if typeSet != nil {
				if _, ok := typeSet[ev.Type]; !ok {
					continue
				}
			}
			events.Events = append(events.Events, ev.Clone())
		}
		list.Events = append(list.Events, events)
	}
	return list
}

func matchSecondaryFilters(entity *model.Entity, filters []model.NameValue) bool {
	for _, filter := range filters {
		if !entity.MatchPrimaryFilter(filter) && !entity.MatchOtherInfo(filter) {
			return false
		}
	}
	return true
}

// maskFields produces an independent copy of the entity exposing only the
// requested fields. The base attributes are always present. An entity with
// no events projected with FieldLastEventOnly simply comes back with no
// events.
func maskFields(entity *model.Entity, fields model.Field) *model.Entity {
	out := &model.Entity{
		ID:        entity.ID,
		Type:      entity.Type,
		StartTime: cloneStartTime(entity.StartTime),
		DomainID:  entity.DomainID,
	}
	switch {
	case fields.Has(model.FieldEvents):
		out.Events = model.CloneEvents(entity.Events)
	case fields.Has(model.FieldLastEventOnly):
		if len(entity.Events) > 0 {
			out.Events = []model.Event{entity.Events[0].Clone()}
		}
	}
	if fields.Has(model.FieldRelatedEntities) {
		out.RelatedEntities = cloneRelated(entity.RelatedEntities)
	}
	if fields.Has(model.FieldPrimaryFilters) {
		out.PrimaryFilters = cloneFilters(entity.PrimaryFilters)
	}
	if fields.Has(model.FieldOtherInfo) {
		out.OtherInfo = model.CloneInfo(entity.OtherInfo)
	}
	return out
}

func cloneRelated(related map[string][]string) map[string][]string {
	if related == nil {
		return nil
	}
	out := make(map[string][]string, len(related))
	for t, ids := range related {
		out[t] = append([]string(nil), ids...)
	}
	return out
}

func cloneFilters(filters map[string][]any) map[string][]any {
	if filters == nil {
		return nil
	}
	out := make(map[string][]any, len(filters))
	for name, values := range filters {
		out[name] = append([]any(nil), values...)
	}
	return out
}
