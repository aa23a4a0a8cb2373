package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/http/response"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/service"
)

// WatchEventsRequest wraps a batch of player events for one media item.
type WatchEventsRequest struct {
	Events []service.PlayerEvent `json:"events"`
}

// handleWatchEvents ingests a batch of player events for a media item.
// Per-event failures are reported in the response body, not as an HTTP
// error, so a client can retry only what was rejected.
func (s *Server) handleWatchEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	mediaID := chi.URLParam(r, "mediaID")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}
	if mediaID == "" {
		response.BadRequest(w, "Media ID is required", s.logger)
		return
	}

	var req WatchEventsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	result, err := s.watchService.HandleEvents(ctx, userID, mediaID, req.Events)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleGetProgress retrieves watch progress for a media item.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	mediaID := chi.URLParam(r, "mediaID")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}
	if mediaID == "" {
		response.BadRequest(w, "Media ID is required", s.logger)
		return
	}

	view, err := s.watchService.GetProgress(ctx, userID, mediaID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, view, s.logger)
}

// handleResetProgress deletes watch progress for a media item.
func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	mediaID := chi.URLParam(r, "mediaID")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}
	if mediaID == "" {
		response.BadRequest(w, "Media ID is required", s.logger)
		return
	}

	if err := s.watchService.ResetProgress(ctx, userID, mediaID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleContinueWatching lists the user's in-progress media.
func (s *Server) handleContinueWatching(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	views, err := s.watchService.ContinueWatching(ctx, userID, limit)
	if err != nil {
		s.logger.Error("Failed to list continue watching", "error", err, "user_id", userID)
		response.InternalError(w, "Failed to retrieve progress", s.logger)
		return
	}

	response.Success(w, views, s.logger)
}

// handleStream upgrades to an SSE stream of the user's progress events.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	s.sseHandler.Serve(w, r, userID)
}
