package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

const progressPrefix = "progress:"

// ErrProgressNotFound is returned when no record exists for a
// (user, media) pair.
var ErrProgressNotFound = ErrNotFound.WithMessage("watch progress not found")

// ProgressUpdated is emitted through the EventEmitter after every
// successful upsert so connected clients can re-hydrate.
type ProgressUpdated struct {
	Progress *domain.WatchProgress
}

// ProgressDeleted is emitted after a reset.
type ProgressDeleted struct {
	UserID  string
	MediaID string
}

func progressKey(userID, mediaID string) []byte {
	return []byte(progressPrefix + domain.ProgressID(userID, mediaID))
}

// GetWatchProgress retrieves the record for a (user, media) pair.
// A stored document that fails to decode is treated as no prior
// progress (logged, not surfaced): a corrupt record must not prevent
// the session from starting.
func (s *Store) GetWatchProgress(ctx context.Context, userID, mediaID string) (*domain.WatchProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var progress domain.WatchProgress
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(progressKey(userID, mediaID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrProgressNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &progress); err != nil {
				s.warn("corrupt progress record, treating as absent",
					"user_id", userID, "media_id", mediaID, "error", err)
				return ErrProgressNotFound
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Drop malformed intervals individually; the rest stays usable.
	progress.Sanitize()
	return &progress, nil
}

// UpsertWatchProgress writes a record with merge semantics: inside one
// transaction the stored intervals are unioned with the incoming ones
// and scalar fields follow the freshest writer. Two devices writing
// concurrently lose no watched spans; the resume marker is
// last-write-wins.
func (s *Store) UpsertWatchProgress(ctx context.Context, progress *domain.WatchProgress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if progress.UserID == "" || progress.MediaID == "" {
		return ErrInvalidInput.WithMessage("progress record missing user or media ID")
	}

	key := progressKey(progress.UserID, progress.MediaID)

	var merged *domain.WatchProgress
	err := s.db.Update(func(txn *badger.Txn) error {
		record := *progress
		record.Intervals = slices.Clone(progress.Intervals)

		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// First write for this pair.
		case err != nil:
			return err
		default:
			var existing domain.WatchProgress
			if verr := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); verr != nil {
				// Corrupt stored value: replace rather than fail.
				s.warn("replacing corrupt progress record",
					"user_id", record.UserID, "media_id", record.MediaID, "error", verr)
			} else {
				existing.Sanitize()
				record.MergeRecord(&existing)
			}
		}

		record.Sanitize()
		data, err := json.Marshal(&record)
		if err != nil {
			return fmt.Errorf("marshal progress: %w", err)
		}
		merged = &record
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	s.emit(ProgressUpdated{Progress: merged})
	return nil
}

// DeleteWatchProgress removes the record for a (user, media) pair.
// Deleting an absent record is not an error.
func (s *Store) DeleteWatchProgress(ctx context.Context, userID, mediaID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(progressKey(userID, mediaID))
	})
	if err != nil {
		return err
	}

	s.emit(ProgressDeleted{UserID: userID, MediaID: mediaID})
	return nil
}

// GetProgressForUser retrieves every record for a user via prefix
// scan. Corrupt documents are skipped.
func (s *Store) GetProgressForUser(ctx context.Context, userID string) ([]*domain.WatchProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(progressPrefix + userID + ":")
	var results []*domain.WatchProgress

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var progress domain.WatchProgress
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &progress)
			})
			if err != nil {
				s.warn("skipping corrupt progress record", "user_id", userID, "error", err)
				continue
			}
			progress.Sanitize()
			results = append(results, &progress)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetContinueWatching returns the user's in-progress media, most
// recently watched first: started, not yet complete.
func (s *Store) GetContinueWatching(ctx context.Context, userID string, limit int) ([]*domain.WatchProgress, error) {
	all, err := s.GetProgressForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var result []*domain.WatchProgress
	for _, p := range all {
		if p.IsComplete || len(p.Intervals) == 0 {
			continue
		}
		result = append(result, p)
	}

	slices.SortFunc(result, func(a, b *domain.WatchProgress) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
