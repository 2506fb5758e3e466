package store

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"laptev/internal/crypto"
	"laptev/internal/domain"
	"laptev/internal/protocol/envelope"
)

// SessionState is one negotiated session as seen by the host.
type SessionState struct {
	CreatedAt      time.Time
	Cipher         *envelope.Cipher
	Authenticated  bool
	FailedAttempts int
}

// SessionStore maps viewer identities to their sessions. A single RWMutex
// guards the whole table.
type SessionStore struct {
	mu          sync.RWMutex
	sessions    map[domain.SessionIdentity]*SessionState
	lifetime    time.Duration
	maxAttempts int
	now         func() time.Time

	// decoy is evaluated in place of a real session cipher when a proof
	// cannot be checked, so every failed proof costs one Open.
	decoy *envelope.Cipher
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithClock replaces time.Now. Tests use it to drive expiry.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

// WithMaxAttempts bounds failed password proofs per session; 0 means no
// bound.
func WithMaxAttempts(n int) SessionOption {
	return func(s *SessionStore) { s.maxAttempts = n }
}

// NewSessionStore returns an empty store whose entries live for lifetime.
// A non-positive lifetime disables expiry.
func NewSessionStore(lifetime time.Duration, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		sessions: make(map[domain.SessionIdentity]*SessionState),
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	s.decoy = newDecoy()
	return s
}

// newDecoy keys a throwaway cipher. It panics if the system random source or
// the cipher construction fails, since the store cannot run without it.
func newDecoy() *envelope.Cipher {
	var k domain.SessionKey
	defer crypto.WipeKey((*[32]byte)(&k))
	if _, err := rand.Read(k[:]); err != nil {
		panic(fmt.Sprintf("store: reading decoy key: %v", err))
	}
	c, err := envelope.NewCipher(k)
	if err != nil {
		panic(fmt.Sprintf("store: decoy cipher: %v", err))
	}
	return c
}

// Configure swaps the lifetime and attempt bound. Existing entries are
// judged against the new lifetime from the next lookup on.
func (s *SessionStore) Configure(lifetime time.Duration, maxAttempts int) {
	s.mu.Lock()
	s.lifetime = lifetime
	s.maxAttempts = maxAttempts
	s.mu.Unlock()
}

// Upsert installs a fresh, unauthenticated session for id, replacing any
// previous one. Expired entries are swept first. key is wiped on return.
func (s *SessionStore) Upsert(id domain.SessionIdentity, key domain.SessionKey) error {
	defer crypto.WipeKey((*[32]byte)(&key))

	c, err := envelope.NewCipher(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	s.sessions[id] = &SessionState{CreatedAt: now, Cipher: c}
	return nil
}

// Get returns a copy of the live session for id.
func (s *SessionStore) Get(id domain.SessionIdentity) (SessionState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.liveLocked(id)
	if !ok {
		return SessionState{}, false
	}
	return *st, true
}

// Authenticated returns the cipher of an authenticated live session for id,
// or domain.ErrNotAuthenticated.
func (s *SessionStore) Authenticated(id domain.SessionIdentity) (*envelope.Cipher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.liveLocked(id)
	if !ok || !st.Authenticated {
		return nil, domain.ErrNotAuthenticated
	}
	return st.Cipher, nil
}

// Prove is the only way a session becomes authenticated. It runs check
// against the session cipher for id and marks the session authenticated when
// check returns true. A missing session, an exhausted attempt budget and a
// failed check all return domain.ErrAuthenticationFailed after the same amount
// of work. A failed check never evicts the session.
//
// check runs without the table lock held. Each attempt is charged before
// check runs, so concurrent proofs cannot exceed the budget, and a proof
// only counts if the session it was checked against is still the live one.
func (s *SessionStore) Prove(id domain.SessionIdentity, check func(*envelope.Cipher) bool) error {
	s.mu.Lock()
	st, ok := s.liveLocked(id)
	if ok && s.maxAttempts > 0 && st.FailedAttempts >= s.maxAttempts {
		ok = false
	}
	c := s.decoy
	if ok {
		c = st.Cipher
		st.FailedAttempts++
	}
	s.mu.Unlock()

	if passed := check(c); !passed || !ok {
		return domain.ErrAuthenticationFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, live := s.liveLocked(id); !live || cur != st {
		// Replaced by a handshake or expired while check ran.
		return domain.ErrAuthenticationFailed
	}
	st.FailedAttempts--
	st.Authenticated = true
	return nil
}

// Sweep removes every expired session and reports how many went.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

// Len reports the number of entries, expired or not.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) liveLocked(id domain.SessionIdentity) (*SessionState, bool) {
	st, ok := s.sessions[id]
	if !ok || s.expired(st, s.now()) {
		return nil, false
	}
	return st, true
}

func (s *SessionStore) sweepLocked(now time.Time) int {
	n := 0
	for id, st := range s.sessions {
		if s.expired(st, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// An entry created at T with lifetime L is gone from T+L on.
func (s *SessionStore) expired(st *SessionState, now time.Time) bool {
	return s.lifetime > 0 && now.Sub(st.CreatedAt) >= s.lifetime
}
