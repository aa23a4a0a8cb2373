package tracker

import (
	"sync"

	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/domain"
)

// Session is the live tracking state for one (user, media) viewing
// session: a Detector plus the authoritative merged interval set.
// Player signals for a session form a single ordered stream; the
// mutex only guards against HTTP delivery hopping goroutines, not
// concurrent producers.
type Session struct {
	mu       sync.Mutex
	detector *Detector
	progress *domain.WatchProgress
}

// NewSession creates an empty session.
func NewSession(userID, mediaID string) *Session {
	return &Session{
		detector: NewDetector(),
		progress: domain.NewWatchProgress(userID, mediaID),
	}
}

// Hydrate seeds the session from a persisted record. Malformed
// intervals in the record are dropped (corrupt storage degrades to
// missing progress, never a failed session start).
func (s *Session) Hydrate(rec *domain.WatchProgress) {
	if rec == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Sanitize()
	s.progress.MergeRecord(rec)
}

// ApplyRemote folds in a record written concurrently by another
// device. Same merge path as Hydrate; last write wins on scalars.
func (s *Session) ApplyRemote(rec *domain.WatchProgress) {
	s.Hydrate(rec)
}

// MetadataReady records the media duration once the player knows it.
func (s *Session) MetadataReady(duration float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.progress.Duration
	s.progress.SetDuration(duration)
	return s.progress.Duration != before
}

// Play opens a watched segment at pos.
func (s *Session) Play(pos float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.detector.Play(pos)
	s.progress.SetLastPosition(pos)
	return true
}

// Pause closes the open segment at pos and merges it.
func (s *Session) Pause(pos float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seg, ok := s.detector.Pause(pos); ok {
		s.progress.AddInterval(seg)
	}
	s.progress.SetLastPosition(pos)
	return true
}

// Position handles a position tick; a detected jump closes and merges
// the pre-jump segment.
func (s *Session) Position(pos, rate float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	if seg, ok := s.detector.Position(pos, rate); ok {
		changed = s.progress.AddInterval(seg)
	}
	s.progress.SetLastPosition(pos)
	return changed
}

// SeekStart finalizes the in-flight segment before the jump.
func (s *Session) SeekStart(pos float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seg, ok := s.detector.SeekStart(pos); ok {
		return s.progress.AddInterval(seg)
	}
	return false
}

// SeekEnd lands the seek and moves the resume marker.
func (s *Session) SeekEnd(pos float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.detector.SeekEnd(pos)
	s.progress.SetLastPosition(pos)
	return true
}

// Ended closes the session's open segment at end of media, crediting
// the remainder up to the known duration.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	duration := s.progress.Duration
	seg, ok := s.detector.End(duration)
	changed := ok && s.progress.AddInterval(seg)
	if duration > 0 {
		s.progress.SetLastPosition(duration)
	}
	return changed
}

// Snapshot returns a deep copy of the current progress record, safe to
// hand to storage or serialization while the session keeps mutating.
func (s *Session) Snapshot() *domain.WatchProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *s.progress
	cp.Intervals = make([]domain.Interval, len(s.progress.Intervals))
	copy(cp.Intervals, s.progress.Intervals)
	return &cp
}

// Coverage returns the current unique-coverage percentage.
func (s *Session) Coverage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Coverage
}

// ResumePosition returns the position a player should seek to when
// the user comes back.
func (s *Session) ResumePosition() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.LastPosition
}
