package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finboard/internal/log"
	"finboard/internal/validator"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeInputError answers 422 with per-field messages for validation
// failures and 400 for anything else the client sent wrong.
func writeInputError(w http.ResponseWriter, err error) {
	var verr *validator.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: verr.Fields})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// writeInternalError logs err with the request logger and answers 500
// without leaking details.
func writeInternalError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogError(r.Context(), "Request failed", err, operation, log.NewFields().WithErrorType(log.ErrorTypeInternal))
	writeError(w, http.StatusInternalServerError, "internal error")
}
