package apiserver

import (
	"fmt"
	"net/http"
)

// handleMethodNotAllowed handles 405 responses.
func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)

	response := map[string]string{
		"error":   "METHOD_NOT_ALLOWED",
		"message": fmt.Sprintf("method %s not allowed for %s", r.Method, r.URL.Path),
	}

	_ = writeJSON(w, response)
}
