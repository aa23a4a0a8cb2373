package domain

import "time"

// completionThreshold marks media as finished once unique coverage
// reaches 99% - credits and outros shouldn't keep an item on the
// continue watching shelf forever.
const completionThreshold = 99.0

// WatchProgress is the persisted progress record for one (user, media)
// pair. Intervals is always held in normal form (see Normalize);
// Coverage and IsComplete are derived from Intervals and Duration on
// every mutation and never trusted from input.
type WatchProgress struct {
	UserID       string     `json:"user_id"`
	MediaID      string     `json:"media_id"`
	Intervals    []Interval `json:"intervals"`
	LastPosition float64    `json:"last_position"`
	Duration     float64    `json:"duration"`
	Coverage     float64    `json:"coverage"`
	IsComplete   bool       `json:"is_complete"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ProgressID builds the composite key "userID:mediaID".
func ProgressID(userID, mediaID string) string {
	return userID + ":" + mediaID
}

// NewWatchProgress creates an empty progress record.
func NewWatchProgress(userID, mediaID string) *WatchProgress {
	return &WatchProgress{
		UserID:    userID,
		MediaID:   mediaID,
		UpdatedAt: time.Now(),
	}
}

// AddInterval merges a closed segment into the record and recomputes
// derived fields. Returns false for invalid segments (start >= end),
// which are dropped without touching the record.
func (p *WatchProgress) AddInterval(iv Interval) bool {
	if !iv.Valid() {
		return false
	}
	p.Intervals = Merge(p.Intervals, iv)
	p.recalculate()
	p.UpdatedAt = time.Now()
	return true
}

// SetDuration records the media duration once known and recomputes
// coverage. A zero or negative duration is ignored.
func (p *WatchProgress) SetDuration(duration float64) {
	if duration <= 0 || duration == p.Duration {
		return
	}
	p.Duration = duration
	p.recalculate()
	p.UpdatedAt = time.Now()
}

// SetLastPosition moves the resume marker.
func (p *WatchProgress) SetLastPosition(pos float64) {
	if pos < 0 {
		return
	}
	p.LastPosition = pos
	p.UpdatedAt = time.Now()
}

// MergeRecord folds another record for the same (user, media) pair
// into this one: intervals are unioned through the normal merge path,
// scalar fields follow the freshest record (last write wins). Used for
// store upserts and for re-hydrating a live session when another
// device writes concurrently.
func (p *WatchProgress) MergeRecord(other *WatchProgress) {
	if other == nil {
		return
	}
	for _, iv := range other.Intervals {
		if iv.Valid() {
			p.Intervals = Merge(p.Intervals, iv)
		}
	}
	if other.UpdatedAt.After(p.UpdatedAt) {
		p.LastPosition = other.LastPosition
		p.UpdatedAt = other.UpdatedAt
	}
	if p.Duration <= 0 && other.Duration > 0 {
		p.Duration = other.Duration
	}
	p.recalculate()
}

// Sanitize drops malformed intervals and restores normal form. Called
// on records loaded from storage so a corrupt document degrades to
// "no prior progress" for the broken parts instead of failing the
// session (the remaining fields stay usable).
func (p *WatchProgress) Sanitize() {
	p.Intervals = Normalize(p.Intervals)
	if p.LastPosition < 0 {
		p.LastPosition = 0
	}
	if p.Duration < 0 {
		p.Duration = 0
	}
	p.recalculate()
}

// recalculate refreshes the derived coverage and completion fields.
func (p *WatchProgress) recalculate() {
	p.Coverage = Coverage(p.Intervals, p.Duration)
	p.IsComplete = p.Coverage >= completionThreshold
}
