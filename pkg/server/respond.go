package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/devicelab-dev/element-resolver/pkg/core"
	"github.com/devicelab-dev/element-resolver/pkg/logger"
)

var errBadRequest = core.NewResolveError(core.ErrCategoryInput, "invalid_request", "invalid request body")

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Warn("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var re *core.ResolveError
	if !errors.As(err, &re) {
		logger.Error("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]errorBody{
			"error": {Code: "internal", Message: err.Error()},
		})
		return
	}
	writeJSON(w, statusOf(re), map[string]errorBody{
		"error": {Code: re.Code, Message: re.Error(), Details: re.Details},
	})
}

func statusOf(re *core.ResolveError) int {
	switch {
	case errors.Is(re, core.ErrNodeNotFound), errors.Is(re, core.ErrJobNotFound):
		return http.StatusNotFound
	}
	switch re.Category {
	case core.ErrCategoryInput, core.ErrCategoryConfig:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON request body into v, bounded by the configured limit.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := r.Body
	if s.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, s.maxBody)
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errBadRequest.WithCause(err)
	}
	return nil
}
