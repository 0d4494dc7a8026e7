// Package handlers exposes the timeline store over HTTP. Write access
// control and ACL-aware filtering happen here; the store itself only
// enforces the injected read predicate.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/chroniclehq/chronicle/internal/acl"
	"github.com/chroniclehq/chronicle/internal/auth"
	"github.com/chroniclehq/chronicle/internal/logging"
	"github.com/chroniclehq/chronicle/internal/metrics"
	"github.com/chroniclehq/chronicle/internal/store"
	"github.com/chroniclehq/chronicle/pkg/model"
)

// TimelineHandler serves the timeline REST endpoints.
type TimelineHandler struct {
	store *store.MemoryStore
	// scanACL resolves domains through the store's in-lock lookup and is
	// only handed into entity scans; readACL takes the store lock itself
	// and backs point reads done from handler code.
	scanACL *acl.Checker
	readACL *acl.Checker
	log     *logging.Logger
}

// NewTimelineHandler constructs a handler over the store and checkers.
func NewTimelineHandler(s *store.MemoryStore, scanACL, readACL *acl.Checker, log *logging.Logger) *TimelineHandler {
	return &TimelineHandler{store: s, scanACL: scanACL, readACL: readACL, log: log}
}

// PutEntities handles POST /api/v1/timeline.
func (h *TimelineHandler) PutEntities(w http.ResponseWriter, r *http.Request) {
	var batch model.EntityList
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	timer := prometheus.NewTimer(metrics.PutDuration)
	response := h.store.Put(batch.Entities)
	timer.ObserveDuration()

	metrics.EntitiesPutTotal.Add(float64(len(batch.Entities)))
	for _, putErr := range response.Errors {
		metrics.PutErrorsTotal.WithLabelValues(string(putErr.ErrorCode)).Inc()
	}
	if len(response.Errors) > 0 {
		h.log.WarnContext(r.Context(), "put batch had rejected fragments",
			"fragments", len(batch.Entities), "errors", len(response.Errors))
	}
	writeJSON(w, http.StatusOK, response)
}

// GetEntities handles GET /api/v1/timeline/{type}.
func (h *TimelineHandler) GetEntities(w http.ResponseWriter, r *http.Request) {
	query := store.EntityQuery{
		EntityType: r.PathValue("type"),
		FromID:     r.URL.Query().Get("fromId"),
	}

	var err error
	if query.Limit, err = parseInt64Param(r, "limit"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if query.WindowStart, err = parseInt64Param(r, "windowStart"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if query.WindowEnd, err = parseInt64Param(r, "windowEnd"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if query.FromTS, err = parseInt64Param(r, "fromTs"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if raw := r.URL.Query().Get("primaryFilter"); raw != "" {
		if query.PrimaryFilter, err = parseNameValue(raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}
	for _, raw := range r.URL.Query()["secondaryFilter"] {
		filter, err := parseNameValue(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		query.SecondaryFilters = append(query.SecondaryFilters, *filter)
	}
	if query.Fields, err = model.ParseFields(r.URL.Query().Get("fields")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	timer := prometheus.NewTimer(metrics.QueryDuration.WithLabelValues("entities"))
	defer timer.ObserveDuration()
	metrics.QueriesTotal.WithLabelValues("entities").Inc()

	list := h.store.GetEntities(query, h.scanACL.ReadCheck(auth.Caller(r.Context())))
	if list == nil {
		writeError(w, http.StatusServiceUnavailable, "store_stopped", "timeline store is stopped")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetEntity handles GET /api/v1/timeline/{type}/{id}.
func (h *TimelineHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	fields, err := model.ParseFields(r.URL.Query().Get("fields"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	metrics.QueriesTotal.WithLabelValues("entity").Inc()
	entity := h.store.GetEntity(r.PathValue("id"), r.PathValue("type"), fields)
	if entity == nil {
		if h.store.Stopped() {
			writeError(w, http.StatusServiceUnavailable, "store_stopped", "timeline store is stopped")
			return
		}
		writeError(w, http.StatusNotFound, "not_found", "entity not found")
		return
	}
	if !h.readACL.Readable(auth.Caller(r.Context()), entity.DomainID) {
		writeError(w, http.StatusForbidden, "forbidden", "caller may not read this entity's domain")
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

// GetEntityTimelines handles GET /api/v1/timeline/{type}/events.
func (h *TimelineHandler) GetEntityTimelines(w http.ResponseWriter, r *http.Request) {
	entityType := r.PathValue("type")
	entityIDs := splitCSVParam(r, "entityId")
	if len(entityIDs) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "entityId parameter is required")
		return
	}

	limit, err := parseInt64Param(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	windowStart, err := parseInt64Param(r, "windowStart")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	windowEnd, err := parseInt64Param(r, "windowEnd")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	eventTypes := splitCSVParam(r, "eventType")

	caller := auth.Caller(r.Context())
	// Ids the caller may not read are dropped up front, exactly as absent
	// ids are: the response carries no trace of them.
	readable := make([]string, 0, len(entityIDs))
	for _, id := range entityIDs {
		entity := h.store.GetEntity(id, entityType, model.FieldLastEventOnly)
		if entity == nil {
			continue
		}
		if h.readACL.Readable(caller, entity.DomainID) {
			readable = append(readable, id)
		}
	}

	timer := prometheus.NewTimer(metrics.QueryDuration.WithLabelValues("timelines"))
	defer timer.ObserveDuration()
	metrics.QueriesTotal.WithLabelValues("timelines").Inc()

	list := h.store.GetEntityTimelines(entityType, readable, limit, windowStart, windowEnd, eventTypes)
	if list == nil {
		writeError(w, http.StatusServiceUnavailable, "store_stopped", "timeline store is stopped")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Health handles GET /healthz.
func (h *TimelineHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"stopped": h.store.Stopped(),
	})
}
