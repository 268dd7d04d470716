// Package httputil holds the JSON response helpers shared by the
// results API handlers.
package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/banshee-data/kurbeln/internal/monitoring"
)

type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes v as the JSON body with the given status code.
// Results change with every update run, so responses are not cached.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("failed to encode json response: %v", err)
	}
}

// WriteJSONError writes {"error": msg} with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, format string, args ...any) {
	WriteJSON(w, status, errorBody{Error: fmt.Sprintf(format, args...)})
}

// BadRequest writes a 400 with the given message.
func BadRequest(w http.ResponseWriter, format string, args ...any) {
	WriteJSONError(w, http.StatusBadRequest, format, args...)
}

// NotFound writes a 404 with the given message.
func NotFound(w http.ResponseWriter, format string, args ...any) {
	WriteJSONError(w, http.StatusNotFound, format, args...)
}

// InternalServerError logs err and writes a 500 that does not leak it.
func InternalServerError(w http.ResponseWriter, r *http.Request, err error) {
	monitoring.Logf("%s %s: %v", r.Method, r.URL.Path, err)
	WriteJSONError(w, http.StatusInternalServerError, "internal error")
}

// AllowMethods reports whether r uses one of methods. Otherwise it writes
// a 405 with an Allow header and returns false.
func AllowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteJSONError(w, http.StatusMethodNotAllowed, "method %s not allowed", r.Method)
	return false
}
