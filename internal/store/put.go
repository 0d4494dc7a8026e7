package store

import (
	"math"

	"github.com/chroniclehq/chronicle/pkg/model"
)

// Put merges a batch of entity fragments into the store and returns the
// per-entity errors accumulated across the whole batch. A rejected fragment
// never aborts the rest of the batch.
//
// For each fragment, keyed by (id, type): a fresh entity must carry a
// domain id (NO_DOMAIN otherwise, nothing persisted); events are appended
// and re-sorted; a missing start time is derived from the minimum event
// timestamp or the entity is rolled back (NO_START_TIME); primary filters
// merge with union semantics and other info with replace semantics, both
// normalized; finally relation targets in the same domain gain a
// back-reference, targets in another domain produce FORBIDDEN_RELATION, and
// missing targets are created as stubs inheriting the source's start time
// and domain.
func (s *MemoryStore) Put(fragments []*model.Entity) *model.PutResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	response := &model.PutResponse{}
	if s.stopped {
		s.log.Info("store stopped, rejecting put")
		response.AddError("", "", model.ErrorIOException)
		return response
	}

	for _, fragment := range fragments {
		key := EntityKey{ID: fragment.ID, Type: fragment.Type}
		stored, ok := s.entities.Get(key)
		dirty := false
		if !ok {
			if fragment.DomainID == "" {
				response.AddError(key.ID, key.Type, model.ErrorNoDomain)
				continue
			}
			stored = &model.Entity{
				ID:        fragment.ID,
				Type:      fragment.Type,
				StartTime: cloneStartTime(fragment.StartTime),
				DomainID:  fragment.DomainID,
			}
			s.insertTimes.Put(key, s.now())
			dirty = true
		}

		if fragment.Events != nil {
			stored.AddEvents(model.CloneEvents(fragment.Events))
			dirty = true
		}

		if stored.StartTime == nil {
			if len(stored.Events) == 0 {
				response.AddError(key.ID, key.Type, model.ErrorNoStartTime)
				s.entities.Remove(key)
				s.insertTimes.Remove(key)
				continue
			}
			min := stored.Events[0].Timestamp
			for _, ev := range stored.Events[1:] {
				if ev.Timestamp < min {
					min = ev.Timestamp
				}
			}
			stored.StartTime = &min
			dirty = true
		}

		for name, values := range fragment.PrimaryFilters {
			for _, v := range values {
				stored.AddPrimaryFilter(name, NormalizeValue(v))
				dirty = true
			}
		}
		for name, v := range fragment.OtherInfo {
			if stored.OtherInfo == nil {
				stored.OtherInfo = make(map[string]any)
			}
			stored.OtherInfo[name] = NormalizeValue(v)
			dirty = true
		}

		if dirty {
			s.entities.Put(key, stored)
		}

		for relatedType, relatedIDs := range fragment.RelatedEntities {
			for _, relatedID := range relatedIDs {
				relatedKey := EntityKey{ID: relatedID, Type: relatedType}
				target, ok := s.entities.Get(relatedKey)
				if ok {
					if target.DomainID == stored.DomainID {
						target.AddRelatedEntity(stored.Type, stored.ID)
						s.entities.Put(relatedKey, target)
					} else {
						// The entity itself is kept; only the relation is
						// dropped.
						response.AddError(stored.ID, stored.Type, model.ErrorForbiddenRelation)
					}
					continue
				}
				stub := &model.Entity{
					ID:        relatedID,
					Type:      relatedType,
					StartTime: cloneStartTime(stored.StartTime),
					DomainID:  stored.DomainID,
				}
				stub.AddRelatedEntity(stored.Type, stored.ID)
				s.entities.Put(relatedKey, stub)
				s.insertTimes.Put(relatedKey, s.now())
			}
		}
	}
	return response
}

// NormalizeValue narrows integral attribute values that fit a signed 32-bit
// range, keeping stored representations compact. Everything else, including
// integers outside that range, passes through unchanged. Applied only to
// primary-filter and other-info values, never to events or identifiers.
func NormalizeValue(v any) any {
	switch n := v.(type) {
	case int64:
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return int32(n)
		}
	case int:
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return int32(n)
		}
	case float64:
		// JSON numbers decode as float64; narrow the integral ones so
		// values stored via the API compare equal to values stored
		// directly.
		if n == math.Trunc(n) && n >= math.MinInt32 && n <= math.MaxInt32 {
			return int32(n)
		}
	}
	return v
}

func cloneStartTime(t *int64) *int64 {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
