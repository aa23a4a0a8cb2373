package api

import (
	"net/http"

	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/http/response"
)

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
