// Package store persists watch progress records in an embedded Badger
// database. Values are JSON documents; keys are prefixed composite
// strings so per-user lookups are a single prefix scan.
package store

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// EventEmitter broadcasts store changes without the store depending on
// the transport (SSE today). Writes are fire-and-forget.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter discards events. Used by tests and offline tooling.
type NoopEmitter struct{}

// Emit implements EventEmitter.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter returns a no-op emitter.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// Store wraps a Badger database instance.
type Store struct {
	db      *badger.DB
	logger  *slog.Logger
	emitter EventEmitter
}

// New opens (or creates) the database at path.
func New(path string, logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Badger's own logging is noisy
	opts.SyncWrites = true       // progress records are small, durability wins
	opts.CompactL0OnClose = true // faster startup next time

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("database opened", "path", path)
	}

	return &Store{
		db:      db,
		logger:  logger,
		emitter: emitter,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing database")
	}
	return s.db.Close()
}

// emit broadcasts a change event if an emitter is wired.
func (s *Store) emit(event any) {
	if s.emitter != nil {
		s.emitter.Emit(event)
	}
}

// warn logs at warn level when a logger is wired.
func (s *Store) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
