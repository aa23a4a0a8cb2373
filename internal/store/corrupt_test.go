package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// White-box: writes raw garbage at a progress key to verify the
// corrupt-record fallback paths.
func newRawStore(t *testing.T) *Store {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "progress-store-corrupt-*")
	require.NoError(t, err)

	s, err := New(filepath.Join(tmpDir, "db"), nil, NewNoopEmitter())
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
		os.RemoveAll(tmpDir)
	})
	return s
}

func TestGetWatchProgress_CorruptRecordTreatedAsAbsent(t *testing.T) {
	s := newRawStore(t)

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(progressKey("user-1", "media-1"), []byte("{not json"))
	})
	require.NoError(t, err)

	_, err = s.GetWatchProgress(context.Background(), "user-1", "media-1")
	assert.ErrorIs(t, err, ErrProgressNotFound)
}

func TestUpsertWatchProgress_ReplacesCorruptRecord(t *testing.T) {
	s := newRawStore(t)
	ctx := context.Background()

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(progressKey("user-1", "media-1"), []byte("\x00\x01garbage"))
	})
	require.NoError(t, err)

	p := domain.NewWatchProgress("user-1", "media-1")
	p.SetDuration(100)
	p.AddInterval(domain.Interval{Start: 0, End: 10})
	require.NoError(t, s.UpsertWatchProgress(ctx, p))

	got, err := s.GetWatchProgress(ctx, "user-1", "media-1")
	require.NoError(t, err)
	require.Len(t, got.Intervals, 1)
	assert.Equal(t, domain.Interval{Start: 0, End: 10}, got.Intervals[0])
}

func TestGetProgressForUser_SkipsCorruptRecords(t *testing.T) {
	s := newRawStore(t)
	ctx := context.Background()

	good := domain.NewWatchProgress("user-1", "media-good")
	good.SetDuration(100)
	good.AddInterval(domain.Interval{Start: 0, End: 10})
	require.NoError(t, s.UpsertWatchProgress(ctx, good))

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(progressKey("user-1", "media-bad"), []byte("broken"))
	})
	require.NoError(t, err)

	got, err := s.GetProgressForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "media-good", got[0].MediaID)
}
