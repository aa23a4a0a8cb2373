package sse

import (
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/store"
)

// Bridge translates store change events into SSE events so the store
// stays ignorant of the transport. It implements store.EventEmitter.
type Bridge struct {
	manager *Manager
}

// NewBridge creates a bridge that forwards store events to manager.
func NewBridge(manager *Manager) *Bridge {
	return &Bridge{manager: manager}
}

// Emit implements store.EventEmitter. Unknown event types are ignored.
func (b *Bridge) Emit(event any) {
	switch e := event.(type) {
	case store.ProgressUpdated:
		b.manager.Emit(NewProgressUpdatedEvent(e.Progress))
	case store.ProgressDeleted:
		b.manager.Emit(NewProgressDeletedEvent(e.UserID, e.MediaID))
	}
}
