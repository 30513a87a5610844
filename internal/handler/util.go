package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/foxtrail/planner/internal/middleware"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"message": message,
	})
}

// decodeRequest reads a JSON body into v and checks its validation tags. An
// empty body leaves v at its zero value.
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.New("invalid request body")
	}
	return middleware.ValidateRequest(v)
}
