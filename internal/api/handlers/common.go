package handlers

import (
	"encoding/json"
	"net/http"
)

// SessionHeader carries the caller's session key on every request.
const SessionHeader = "X-Session-ID"

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeWarning reports a condition that blocks the operation but is the
// caller's to fix (missing credentials, missing input). The operation
// simply does not proceed.
func writeWarning(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"warning": msg})
}

// writeError reports an API-call failure as-is. No retry happens server
// side; the caller may repeat the action.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func sessionID(r *http.Request) string {
	return r.Header.Get(SessionHeader)
}
