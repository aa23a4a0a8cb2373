package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/domain"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/store"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/tracker"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/util"
)

// Player event types accepted by HandleEvents.
const (
	EventMetadata   = "metadata"
	EventPlay       = "play"
	EventPause      = "pause"
	EventTimeUpdate = "timeupdate"
	EventSeekStart  = "seekstart"
	EventSeekEnd    = "seekend"
	EventEnded      = "ended"
)

// PlayerEvent is one raw signal from a media player.
type PlayerEvent struct {
	ID           string  `json:"id" validate:"required"`
	Type         string  `json:"type" validate:"required,oneof=metadata play pause timeupdate seekstart seekend ended"`
	Position     float64 `json:"position" validate:"gte=0"`
	Duration     float64 `json:"duration,omitempty" validate:"gte=0"`
	PlaybackRate float64 `json:"playback_rate,omitempty" validate:"gte=0,lte=16"`
}

// EventFailure reports one rejected event from a batch.
type EventFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// EventBatchResult reports per-event outcomes so clients can retry
// only what failed.
type EventBatchResult struct {
	Acknowledged []string       `json:"acknowledged"`
	Failed       []EventFailure `json:"failed"`
	Progress     *ProgressView  `json:"progress"`
}

// ProgressView is the client-facing shape of a progress record.
type ProgressView struct {
	MediaID        string            `json:"media_id"`
	Intervals      []domain.Interval `json:"intervals"`
	ResumePosition float64           `json:"resume_position"`
	Duration       float64           `json:"duration"`
	Coverage       float64           `json:"coverage"`
	TotalWatched   float64           `json:"total_watched"`
	IsComplete     bool              `json:"is_complete"`
}

// WatchService ingests player events, keeps live tracking sessions,
// and schedules debounced persistence.
type WatchService struct {
	store    *store.Store
	saver    *Saver
	logger   *slog.Logger
	sessions *util.SyncMap[string, *tracker.Session]

	// Serializes session creation so two concurrent batches for the
	// same (user, media) pair hydrate exactly once.
	hydrateMu sync.Mutex
}

// NewWatchService creates a watch service.
func NewWatchService(st *store.Store, saver *Saver, logger *slog.Logger) *WatchService {
	return &WatchService{
		store:    st,
		saver:    saver,
		logger:   logger,
		sessions: util.NewSyncMap[string, *tracker.Session](),
	}
}

// HandleEvents applies a batch of player events to the (user, media)
// session. Events are applied in order; invalid ones are reported in
// the result and skipped, they never abort the batch. A successful
// batch schedules a debounced save of the merged state.
func (s *WatchService) HandleEvents(ctx context.Context, userID, mediaID string, events []PlayerEvent) (*EventBatchResult, error) {
	if len(events) == 0 {
		return nil, store.ErrInvalidInput.WithMessage("event batch is empty")
	}

	session, err := s.getSession(ctx, userID, mediaID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	result := &EventBatchResult{}
	for _, ev := range events {
		if err := s.applyEvent(session, ev); err != nil {
			result.Failed = append(result.Failed, EventFailure{ID: ev.ID, Error: err.Error()})
			continue
		}
		result.Acknowledged = append(result.Acknowledged, ev.ID)
	}

	if len(result.Acknowledged) > 0 {
		// Latest snapshot wins; the saver coalesces the burst.
		s.saver.Schedule(session.Snapshot(), session.ApplyRemote)
	}

	snap := session.Snapshot()
	result.Progress = newProgressView(snap)

	s.logger.Debug("processed player events",
		"user_id", userID,
		"media_id", mediaID,
		"acknowledged", len(result.Acknowledged),
		"failed", len(result.Failed),
		"coverage", snap.Coverage)

	return result, nil
}

// applyEvent validates and dispatches one event to the session.
func (s *WatchService) applyEvent(session *tracker.Session, ev PlayerEvent) error {
	if err := validate.Struct(ev); err != nil {
		return formatValidationError(err)
	}

	switch ev.Type {
	case EventMetadata:
		session.MetadataReady(ev.Duration)
	case EventPlay:
		session.Play(ev.Position)
	case EventPause:
		session.Pause(ev.Position)
	case EventTimeUpdate:
		session.Position(ev.Position, ev.PlaybackRate)
	case EventSeekStart:
		session.SeekStart(ev.Position)
	case EventSeekEnd:
		session.SeekEnd(ev.Position)
	case EventEnded:
		if ev.Duration > 0 {
			session.MetadataReady(ev.Duration)
		}
		session.Ended()
	default:
		// Unreachable given the oneof rule, kept for defense in depth.
		return store.ErrInvalidInput.WithMessage("unknown event type: " + ev.Type)
	}
	return nil
}

// GetProgress returns the current progress for a (user, media) pair.
// A live session is authoritative over the persisted record because the
// debounce window means storage can lag by a second.
func (s *WatchService) GetProgress(ctx context.Context, userID, mediaID string) (*ProgressView, error) {
	if session, ok := s.sessions.Load(domain.ProgressID(userID, mediaID)); ok {
		return newProgressView(session.Snapshot()), nil
	}

	rec, err := s.store.GetWatchProgress(ctx, userID, mediaID)
	if err != nil {
		return nil, err
	}
	return newProgressView(rec), nil
}

// ContinueWatching lists the user's in-progress media, most recently
// watched first.
func (s *WatchService) ContinueWatching(ctx context.Context, userID string, limit int) ([]*ProgressView, error) {
	if limit <= 0 {
		limit = 10 // Default limit
	}

	records, err := s.store.GetContinueWatching(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get continue watching: %w", err)
	}

	views := make([]*ProgressView, 0, len(records))
	for _, rec := range records {
		views = append(views, newProgressView(rec))
	}
	return views, nil
}

// ResetProgress deletes the stored record and discards the live
// session and any pending save.
func (s *WatchService) ResetProgress(ctx context.Context, userID, mediaID string) error {
	s.saver.Cancel(userID, mediaID)
	s.sessions.Delete(domain.ProgressID(userID, mediaID))

	if err := s.store.DeleteWatchProgress(ctx, userID, mediaID); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}

	s.logger.Info("reset watch progress", "user_id", userID, "media_id", mediaID)
	return nil
}

// Flush persists all pending progress immediately. Called on shutdown.
func (s *WatchService) Flush(ctx context.Context) {
	s.saver.Flush(ctx)
}

// getSession returns the live session for a pair, hydrating it from
// storage on first use.
func (s *WatchService) getSession(ctx context.Context, userID, mediaID string) (*tracker.Session, error) {
	key := domain.ProgressID(userID, mediaID)
	if session, ok := s.sessions.Load(key); ok {
		return session, nil
	}

	s.hydrateMu.Lock()
	defer s.hydrateMu.Unlock()

	// Re-check after acquiring the lock.
	if session, ok := s.sessions.Load(key); ok {
		return session, nil
	}

	session := tracker.NewSession(userID, mediaID)

	rec, err := s.store.GetWatchProgress(ctx, userID, mediaID)
	switch {
	case errors.Is(err, store.ErrProgressNotFound):
		// First time watching, nothing to hydrate.
	case err != nil:
		return nil, err
	default:
		session.Hydrate(rec)
	}

	s.sessions.Store(key, session)
	return session, nil
}

// newProgressView maps a record to its client-facing shape.
func newProgressView(rec *domain.WatchProgress) *ProgressView {
	return &ProgressView{
		MediaID:        rec.MediaID,
		Intervals:      rec.Intervals,
		ResumePosition: rec.LastPosition,
		Duration:       rec.Duration,
		Coverage:       rec.Coverage,
		TotalWatched:   domain.TotalWatched(rec.Intervals),
		IsComplete:     rec.IsComplete,
	}
}
