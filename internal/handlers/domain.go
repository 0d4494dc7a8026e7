package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chroniclehq/chronicle/internal/auth"
	"github.com/chroniclehq/chronicle/internal/metrics"
	"github.com/chroniclehq/chronicle/internal/store"
	"github.com/chroniclehq/chronicle/pkg/model"
)

// PutDomain handles PUT /api/v1/domain. The caller becomes (or must
// already be) the domain's owner.
func (h *TimelineHandler) PutDomain(w http.ResponseWriter, r *http.Request) {
	var domain model.Domain
	if err := json.NewDecoder(r.Body).Decode(&domain); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if domain.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "domain id is required")
		return
	}

	caller := auth.Caller(r.Context())
	if caller == "" {
		writeError(w, http.StatusForbidden, "forbidden", "an authenticated caller is required to own a domain")
		return
	}
	if existing := h.store.GetDomain(domain.ID); existing != nil && existing.Owner != caller {
		writeError(w, http.StatusForbidden, "forbidden", "only the owner may modify a domain")
		return
	}
	domain.Owner = caller

	if err := h.store.PutDomain(&domain); err != nil {
		if errors.Is(err, store.ErrStopped) {
			writeError(w, http.StatusServiceUnavailable, "store_stopped", "timeline store is stopped")
			return
		}
		writeError(w, http.StatusInternalServerError, "put_failed", err.Error())
		return
	}
	metrics.DomainWritesTotal.Inc()
	writeJSON(w, http.StatusOK, h.store.GetDomain(domain.ID))
}

// GetDomain handles GET /api/v1/domain/{id}.
func (h *TimelineHandler) GetDomain(w http.ResponseWriter, r *http.Request) {
	metrics.QueriesTotal.WithLabelValues("domain").Inc()
	domain := h.store.GetDomain(r.PathValue("id"))
	if domain == nil {
		if h.store.Stopped() {
			writeError(w, http.StatusServiceUnavailable, "store_stopped", "timeline store is stopped")
			return
		}
		writeError(w, http.StatusNotFound, "not_found", "domain not found")
		return
	}
	writeJSON(w, http.StatusOK, domain)
}

// GetDomains handles GET /api/v1/domain. Without an owner parameter the
// caller's own domains are listed.
func (h *TimelineHandler) GetDomains(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		owner = auth.Caller(r.Context())
	}
	if owner == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "owner parameter is required for anonymous callers")
		return
	}

	metrics.QueriesTotal.WithLabelValues("domains").Inc()
	list := h.store.GetDomains(owner)
	if list == nil {
		writeError(w, http.StatusServiceUnavailable, "store_stopped", "timeline store is stopped")
		return
	}
	writeJSON(w, http.StatusOK, list)
}
