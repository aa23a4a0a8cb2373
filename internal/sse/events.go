// Package sse implements Server-Sent Events so other devices watching
// the same account can re-hydrate progress as soon as it is saved.
package sse

import (
	"time"

	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/domain"
)

// EventType represents the type of SSE event.
type EventType string

const (
	// EventProgressUpdated is sent after a progress record is saved.
	EventProgressUpdated EventType = "progress.updated"
	// EventProgressDeleted is sent after a progress record is reset.
	EventProgressDeleted EventType = "progress.deleted"
	// EventHeartbeat is a connection keepalive.
	EventHeartbeat EventType = "heartbeat"
)

// Event is an SSE event to be sent to clients.
// The Data field is the payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// Events are only delivered to clients of this user.
	// Empty string means broadcast to all.
	UserID string `json:"-"`
}

// ProgressUpdatedEventData is the payload for progress.updated events.
// It carries the full merged record so receivers can re-hydrate without
// a follow-up fetch.
type ProgressUpdatedEventData struct {
	Progress *domain.WatchProgress `json:"progress"`
}

// ProgressDeletedEventData is the payload for progress.deleted events.
type ProgressDeletedEventData struct {
	MediaID   string    `json:"media_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// HeartbeatEventData is the payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewProgressUpdatedEvent creates a progress.updated event scoped to the
// record's owner.
func NewProgressUpdatedEvent(progress *domain.WatchProgress) Event {
	return Event{
		Type:      EventProgressUpdated,
		Data:      ProgressUpdatedEventData{Progress: progress},
		Timestamp: time.Now(),
		UserID:    progress.UserID,
	}
}

// NewProgressDeletedEvent creates a progress.deleted event scoped to the
// record's owner.
func NewProgressDeletedEvent(userID, mediaID string) Event {
	return Event{
		Type: EventProgressDeleted,
		Data: ProgressDeletedEventData{
			MediaID:   mediaID,
			DeletedAt: time.Now(),
		},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: time.Now()},
		Timestamp: time.Now(),
	}
}
