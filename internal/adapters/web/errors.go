package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"inventory-api/internal/core"
)

// envelope is the uniform response body for every endpoint.
type envelope struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeSuccess writes a success envelope with the given HTTP status.
func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Status: "success", Data: data})
}

// writeError maps a service error to an HTTP status and writes an error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorStatus(w, r, statusFor(err), err.Error())
}

func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Status:    "error",
		Message:   message,
		RequestID: requestIDFromContext(r.Context()),
	})
}

// statusFor translates the service error taxonomy to HTTP statuses.
func statusFor(err error) int {
	var (
		validation   *core.ValidationError
		notFound     *core.NotFoundError
		state        *core.StateError
		insufficient *core.InsufficientStockError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &state):
		return http.StatusConflict
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes the request body into v, treating an empty body as success.
// Used by endpoints whose body is entirely optional.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	return err
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeErrorStatus(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeErrorStatus(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
