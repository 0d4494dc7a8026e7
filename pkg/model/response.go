package model

// ErrorCode classifies why an entity fragment was rejected during a put.
type ErrorCode string

const (
	// ErrorNoDomain means a fresh entity arrived without a domain id; the
	// entity was discarded.
	ErrorNoDomain ErrorCode = "NO_DOMAIN"
	// ErrorNoStartTime means the entity had neither an explicit start time
	// nor events to derive one from; the entity was discarded.
	ErrorNoStartTime ErrorCode = "NO_START_TIME"
	// ErrorForbiddenRelation means a relation target lives in a different
	// domain; the relation was dropped but the entity itself was stored.
	ErrorForbiddenRelation ErrorCode = "FORBIDDEN_RELATION"
	// ErrorIOException means the store was stopped; nothing was processed.
	ErrorIOException ErrorCode = "IO_EXCEPTION"
)

// PutError attributes one rejection to the entity that caused it.
type PutError struct {
	EntityID   string    `json:"entity"`
	EntityType string    `json:"entitytype"`
	ErrorCode  ErrorCode `json:"errorcode"`
}

// PutResponse reports the per-entity errors accumulated across one put
// batch. Entities without an error were merged into the store.
type PutResponse struct {
	Errors []PutError `json:"errors"`
}

// AddError appends one rejection to the response.
func (r *PutResponse) AddError(entityID, entityType string, code ErrorCode) {
	r.Errors = append(r.Errors, PutError{
		EntityID:   entityID,
		EntityType: entityType,
		ErrorCode:  code,
	})
}
