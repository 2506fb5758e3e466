// Package retention runs the host's periodic cleanup: recordings older than
// the retention period and expired sessions.
package retention

import (
	"context"
	"sync/atomic"
	"time"

	"gopkg.in/op/go-logging.v1"

	"laptev/internal/domain"
	"laptev/internal/instrument"
	"laptev/internal/store"
	"laptev/internal/worker"
)

const (
	DefaultRecordingInterval = time.Hour
	DefaultSessionInterval   = time.Minute
)

// Sweeper owns the cleanup goroutine.
type Sweeper struct {
	worker.Worker

	recordings domain.RecordingStore
	sessions   *store.SessionStore
	retention  atomic.Int64

	recordingInterval time.Duration
	sessionInterval   time.Duration
	now               func() time.Time
	log               *logging.Logger
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithIntervals overrides the recording and session sweep periods.
func WithIntervals(recordings, sessions time.Duration) Option {
	return func(s *Sweeper) {
		s.recordingInterval = recordings
		s.sessionInterval = sessions
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// New builds a Sweeper. Recordings whose id is older than retention are
// removed; a non-positive retention keeps everything.
func New(recordings domain.RecordingStore, sessions *store.SessionStore, retention time.Duration, log *logging.Logger, opts ...Option) *Sweeper {
	s := &Sweeper{
		recordings:        recordings,
		sessions:          sessions,
		recordingInterval: DefaultRecordingInterval,
		sessionInterval:   DefaultSessionInterval,
		now:               time.Now,
		log:               log,
	}
	s.retention.Store(int64(retention))
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetRetention changes the retention period from the next sweep on.
func (s *Sweeper) SetRetention(d time.Duration) { s.retention.Store(int64(d)) }

// Start launches the sweep loop. Halt stops it.
func (s *Sweeper) Start() {
	s.Go(s.run)
}

func (s *Sweeper) run() {
	ctx := s.Context()
	recTick := time.NewTicker(s.recordingInterval)
	defer recTick.Stop()
	sessTick := time.NewTicker(s.sessionInterval)
	defer sessTick.Stop()

	s.sweepRecordingsAndLog(ctx)
	for {
		select {
		case <-s.HaltCh():
			s.log.Debug("sweeper halting")
			return
		case <-recTick.C:
			s.sweepRecordingsAndLog(ctx)
		case <-sessTick.C:
			s.SweepSessions()
		}
	}
}

func (s *Sweeper) sweepRecordingsAndLog(ctx context.Context) {
	n, err := s.SweepRecordings(ctx)
	if err != nil && ctx.Err() == nil {
		s.log.Errorf("retention sweep: %v", err)
	}
	if n > 0 {
		s.log.Noticef("retention sweep removed %d recording(s)", n)
	}
}

// SweepRecordings removes every recording older than the retention period
// once.
func (s *Sweeper) SweepRecordings(ctx context.Context) (int, error) {
	retention := time.Duration(s.retention.Load())
	if retention <= 0 {
		return 0, nil
	}
	n, err := s.recordings.ExpireBefore(ctx, s.now().Add(-retention))
	instrument.RecordingsExpired(n)
	return n, err
}

// SweepSessions removes expired sessions once.
func (s *Sweeper) SweepSessions() int {
	n := s.sessions.Sweep()
	instrument.SessionsExpired(n)
	instrument.Sessions(s.sessions.Len())
	if n > 0 {
		s.log.Debugf("expired %d session(s)", n)
	}
	return n
}
