package retention

import (
	"context"
	"io"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptev/internal/domain"
	"laptev/internal/log"
	"laptev/internal/store"
)

func newSweeper(t *testing.T, now time.Time, retention time.Duration, opts ...Option) (*Sweeper, *store.RecordingFileStore, *store.SessionStore) {
	t.Helper()
	backend, err := log.NewWriter(io.Discard, "DEBUG")
	require.NoError(t, err)
	clock := func() time.Time { return now }
	recs := store.NewRecordingFileStore(t.TempDir())
	sess := store.NewSessionStore(time.Minute, store.WithClock(clock))
	opts = append([]Option{WithClock(clock)}, opts...)
	return New(recs, sess, retention, backend.GetLogger("retention"), opts...), recs, sess
}

func TestSweepRecordings(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s, recs, _ := newSweeper(t, now, 72*time.Hour)
	ctx := context.Background()

	old := domain.RecordingID(now.Add(-73 * time.Hour).Unix())
	fresh := domain.RecordingID(now.Add(-71 * time.Hour).Unix())
	require.NoError(t, recs.Put(ctx, old, []byte("t"), []byte("v")))
	require.NoError(t, recs.Put(ctx, fresh, []byte("t"), []byte("v")))

	n, err := s.SweepRecordings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ids, err := recs.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.RecordingID{fresh}, ids)

	s.SetRetention(0)
	n, err = s.SweepRecordings(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweepSessions(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s, _, sess := newSweeper(t, now, time.Hour)
	require.NoError(t, sess.Upsert(domain.SessionIdentity{Addr: netip.MustParseAddr("10.0.0.1")}, domain.SessionKey{1}))
	assert.Zero(t, s.SweepSessions())
	assert.Equal(t, 1, sess.Len())
}

func TestStartHalt(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s, recs, _ := newSweeper(t, now, time.Hour, WithIntervals(10*time.Millisecond, 10*time.Millisecond))
	ctx := context.Background()
	old := domain.RecordingID(now.Add(-2 * time.Hour).Unix())
	require.NoError(t, recs.Put(ctx, old, []byte("t"), []byte("v")))

	s.Start()
	require.Eventually(t, func() bool {
		ids, err := recs.List(ctx)
		return err == nil && len(ids) == 0
	}, 5*time.Second, 10*time.Millisecond)
	s.Halt()
}
