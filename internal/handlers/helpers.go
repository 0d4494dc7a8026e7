package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/chroniclehq/chronicle/internal/store"
	"github.com/chroniclehq/chronicle/pkg/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	type errorBody struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// parseInt64Param reads an optional int64 query parameter, returning nil
// when the parameter is absent.
func parseInt64Param(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parameter %s must be an integer: %w", name, err)
	}
	return &v, nil
}

// parseNameValue splits a "name:value" filter term. The value part is
// decoded as JSON when possible so numeric and boolean filters compare
// against stored values; it falls back to the raw string. Decoded values
// are normalized the same way ingestion normalizes stored values.
func parseNameValue(raw string) (*model.NameValue, error) {
	name, value, ok := strings.Cut(raw, ":")
	if !ok || name == "" {
		return nil, fmt.Errorf("filter %q is not in name:value form", raw)
	}
	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		decoded = value
	}
	return &model.NameValue{Name: name, Value: store.NormalizeValue(decoded)}, nil
}

// splitCSVParam reads a query parameter that may be repeated and/or
// comma-separated, returning nil when absent.
func splitCSVParam(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
