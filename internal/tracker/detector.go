// Package tracker turns raw playback signals into merged watched
// intervals. The Detector closes contiguous watched segments at
// boundary events (pause, seek, end of media, detected jump); the
// Session owns the canonical interval set for one viewing session.
package tracker

import "github.com/LakshmiPriyank/Progress-Tracker-Application/internal/domain"

// JumpThreshold is the forward position delta, in seconds at 1x speed,
// beyond which a single tick is treated as a skip rather than normal
// playback. Scaled by the reported playback rate so fast-forward by
// rate change doesn't trip it.
const JumpThreshold = 1.5

// State is the playback cursor state.
type State int

const (
	// StateIdle means playback is stopped or paused; no segment is open.
	StateIdle State = iota
	// StatePlaying means a watched segment is open and extending.
	StatePlaying
	// StateSeeking means the user is scrubbing; the previous segment
	// has been finalized and no new one opens until the seek ends.
	StateSeeking
)

// String implements fmt.Stringer for log output.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateSeeking:
		return "seeking"
	default:
		return "unknown"
	}
}

// Detector is the single-segment playback cursor. It consumes ordered
// player signals and emits closed (start, end) segments at boundaries.
// Position-update ticks arrive at high frequency, so nothing is merged
// per tick; the merge cost is paid once per closed segment.
//
// Detector is not safe for concurrent use; the owning Session
// serializes access.
type Detector struct {
	state        State
	segmentStart float64
	lastObserved float64
	// wasPlaying remembers whether a segment was open when the seek
	// started, so seek-end knows whether to reopen the cursor.
	wasPlaying bool
}

// NewDetector creates a detector in the idle state.
func NewDetector() *Detector {
	return &Detector{}
}

// State returns the current cursor state.
func (d *Detector) State() State {
	return d.state
}

// LastObserved returns the most recent position seen.
func (d *Detector) LastObserved() float64 {
	return d.lastObserved
}

// Play opens a segment at pos. A play signal while already playing is
// a no-op: valid event ordering shouldn't produce one, but a repeated
// signal must not reset the open segment's start.
func (d *Detector) Play(pos float64) {
	if d.state == StatePlaying {
		return
	}
	d.state = StatePlaying
	d.segmentStart = pos
	d.lastObserved = pos
}

// Pause closes the open segment at pos. The returned bool is false
// when no segment was open or the segment has no positive length
// (pause immediately after play).
func (d *Detector) Pause(pos float64) (domain.Interval, bool) {
	if d.state == StateSeeking {
		// Paused mid-scrub: the segment was already finalized at
		// seek-start, just remember not to reopen on seek-end.
		d.wasPlaying = false
		d.lastObserved = pos
		return domain.Interval{}, false
	}
	if d.state != StatePlaying {
		return domain.Interval{}, false
	}

	d.state = StateIdle
	d.lastObserved = pos
	seg := domain.Interval{Start: d.segmentStart, End: pos}
	return seg, seg.Valid()
}

// End closes the open segment at end of media. The remainder up to
// duration is credited even when the last reported tick lags it.
func (d *Detector) End(duration float64) (domain.Interval, bool) {
	if d.state != StatePlaying {
		d.state = StateIdle
		return domain.Interval{}, false
	}

	d.state = StateIdle
	d.lastObserved = duration
	seg := domain.Interval{Start: d.segmentStart, End: duration}
	return seg, seg.Valid()
}

// Position handles a high-frequency position tick. While playing, a
// forward delta larger than JumpThreshold*rate is treated as a skip:
// the open segment is finalized at the last observed position and the
// cursor restarts at pos. Otherwise the open segment extends
// implicitly. lastObserved is always updated.
//
// rate is the current playback speed; values <= 0 are treated as 1x.
func (d *Detector) Position(pos, rate float64) (domain.Interval, bool) {
	if d.state != StatePlaying {
		d.lastObserved = pos
		return domain.Interval{}, false
	}
	if rate <= 0 {
		rate = 1
	}

	delta := pos - d.lastObserved
	if delta > JumpThreshold*rate {
		seg := domain.Interval{Start: d.segmentStart, End: d.lastObserved}
		d.segmentStart = pos
		d.lastObserved = pos
		return seg, seg.Valid()
	}

	d.lastObserved = pos
	return domain.Interval{}, false
}

// SeekStart finalizes the open segment before the jump, independent of
// the jump-threshold heuristic, and enters the seeking state.
func (d *Detector) SeekStart(pos float64) (domain.Interval, bool) {
	wasPlaying := d.state == StatePlaying
	seg := domain.Interval{Start: d.segmentStart, End: d.lastObserved}

	d.wasPlaying = wasPlaying
	d.state = StateSeeking

	if !wasPlaying {
		return domain.Interval{}, false
	}
	return seg, seg.Valid()
}

// SeekEnd leaves the seeking state. If playback was running before
// the seek the cursor reopens at the landing position; if it was
// paused only the resume marker moves.
func (d *Detector) SeekEnd(pos float64) {
	if d.state != StateSeeking {
		d.lastObserved = pos
		return
	}

	d.lastObserved = pos
	if d.wasPlaying {
		d.state = StatePlaying
		d.segmentStart = pos
		return
	}
	d.state = StateIdle
}
