package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/domain"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/store"
)

const saveTimeout = 5 * time.Second

// Saver writes progress records to the store on a debounce: rapid
// updates to the same (user, media) pair coalesce into one write, with
// the latest snapshot winning. Each schedule re-arms the timer, so a
// burst of events costs a single store transaction.
type Saver struct {
	store  *store.Store
	logger *slog.Logger
	delay  time.Duration

	mu      sync.Mutex
	pending map[string]*pendingSave
}

type pendingSave struct {
	timer    *time.Timer
	progress *domain.WatchProgress
	onSaved  func(*domain.WatchProgress)
}

// NewSaver creates a saver that flushes delay after the last schedule.
func NewSaver(st *store.Store, logger *slog.Logger, delay time.Duration) *Saver {
	if delay <= 0 {
		delay = time.Second
	}
	return &Saver{
		store:   st,
		logger:  logger,
		delay:   delay,
		pending: make(map[string]*pendingSave),
	}
}

// Schedule queues progress for a debounced write. A pending write for
// the same key is replaced by this snapshot and its timer re-armed.
// onSaved, if non-nil, is called with the merged record after a
// successful write; it runs on the saver's goroutine.
func (s *Saver) Schedule(progress *domain.WatchProgress, onSaved func(*domain.WatchProgress)) {
	key := domain.ProgressID(progress.UserID, progress.MediaID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[key]; ok {
		p.progress = progress
		p.onSaved = onSaved
		p.timer.Reset(s.delay)
		return
	}

	s.pending[key] = &pendingSave{
		progress: progress,
		onSaved:  onSaved,
		timer: time.AfterFunc(s.delay, func() {
			s.flushKey(key)
		}),
	}
}

// Cancel drops any pending write for a (user, media) pair. Used when
// progress is being reset so a stale snapshot does not resurrect it.
func (s *Saver) Cancel(userID, mediaID string) {
	key := domain.ProgressID(userID, mediaID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[key]; ok {
		p.timer.Stop()
		delete(s.pending, key)
	}
}

// Flush writes all pending records immediately. Called on shutdown so
// the debounce window never loses progress.
func (s *Saver) Flush(ctx context.Context) {
	s.mu.Lock()
	drained := make([]*pendingSave, 0, len(s.pending))
	for key, p := range s.pending {
		p.timer.Stop()
		drained = append(drained, p)
		delete(s.pending, key)
	}
	s.mu.Unlock()

	for _, p := range drained {
		s.save(ctx, p)
	}
}

func (s *Saver) flushKey(key string) {
	s.mu.Lock()
	p, ok := s.pending[key]
	if ok {
		delete(s.pending, key)
	}
	s.mu.Unlock()

	if !ok {
		// Raced with Flush or Cancel.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	s.save(ctx, p)
}

// save performs the actual write. A failed save is logged and dropped;
// the next player event reschedules, so progress self-heals.
func (s *Saver) save(ctx context.Context, p *pendingSave) {
	if err := s.store.UpsertWatchProgress(ctx, p.progress); err != nil {
		s.logger.Error("failed to save watch progress",
			"user_id", p.progress.UserID,
			"media_id", p.progress.MediaID,
			"error", err)
		return
	}

	if p.onSaved == nil {
		return
	}

	// Re-read so the callback sees what the merge produced, including
	// intervals contributed by other writers.
	merged, err := s.store.GetWatchProgress(ctx, p.progress.UserID, p.progress.MediaID)
	if err != nil {
		s.logger.Warn("failed to read back merged progress",
			"user_id", p.progress.UserID,
			"media_id", p.progress.MediaID,
			"error", err)
		return
	}
	p.onSaved(merged)
}
