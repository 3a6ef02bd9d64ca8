package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/logger"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("writing response: %v", err)
	}
}

// writeError maps err to a status code. Internal errors do not expose
// their description.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	resp := errorResponse{Error: code}
	if status < http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		resp.Description = err.Error()
	} else {
		logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, resp)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidPath),
		errors.Is(err, domain.ErrInvalidTarget),
		errors.Is(err, domain.ErrInvalidDocument):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrRendererUnavailable):
		return http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "bad_gateway"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return false
	}
	return true
}
