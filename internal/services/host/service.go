package host

import (
	"cmp"
	"context"
	"crypto/subtle"
	"errors"
	"slices"
	"sync/atomic"

	"gopkg.in/op/go-logging.v1"

	"laptev/internal/crypto"
	"laptev/internal/domain"
	"laptev/internal/instrument"
	"laptev/internal/protocol/envelope"
	"laptev/internal/protocol/index"
	"laptev/internal/protocol/keyexchange"
	"laptev/internal/store"
)

// Policy is the reloadable part of the host configuration.
type Policy struct {
	// Password is the pre-shared secret viewers must prove.
	Password []byte
	// SyncLimit caps the number of entries per Synchronize; 0 means no cap.
	SyncLimit int
}

// Service implements domain.HostService.
type Service struct {
	sessions   *store.SessionStore
	recordings domain.RecordingStore
	policy     atomic.Pointer[Policy]
	log        *logging.Logger
}

var _ domain.HostService = (*Service)(nil)

// New constructs the host service.
func New(sessions *store.SessionStore, recordings domain.RecordingStore, p Policy, log *logging.Logger) *Service {
	s := &Service{sessions: sessions, recordings: recordings, log: log}
	s.UpdatePolicy(p)
	return s
}

// UpdatePolicy swaps in p for subsequent requests.
func (s *Service) UpdatePolicy(p Policy) {
	p.Password = append([]byte(nil), p.Password...)
	s.policy.Store(&p)
}

// Status reports whether id holds an authenticated session.
func (s *Service) Status(id domain.SessionIdentity) (err error) {
	defer observe("status", &err)
	_, err = s.sessions.Authenticated(id)
	return err
}

// Handshake answers the viewer's ephemeral public key with the host's and
// installs a new unauthenticated session for id.
func (s *Service) Handshake(id domain.SessionIdentity, clientPublic []byte) (_ domain.X25519Public, err error) {
	defer observe("handshake", &err)

	hostPub, key, err := keyexchange.Respond(clientPublic)
	if err != nil {
		s.log.Noticef("%s: key exchange rejected: %v", id, err)
		return domain.X25519Public{}, err
	}
	if err := s.sessions.Upsert(id, key); err != nil {
		return domain.X25519Public{}, s.internal("handshake", id, err)
	}
	instrument.Handshake()
	instrument.Sessions(s.sessions.Len())
	s.log.Debugf("%s: session established, host key %s", id, crypto.Fingerprint(hostPub[:]))
	return hostPub, nil
}

// Authenticate opens proof with the session cipher of id and compares the
// plaintext with the configured password. Every failure mode returns
// domain.ErrAuthenticationFailed.
func (s *Service) Authenticate(id domain.SessionIdentity, proof []byte) (err error) {
	defer observe("authenticate", &err)

	password := s.policy.Load().Password
	err = s.sessions.Prove(id, func(c *envelope.Cipher) bool {
		pt, err := envelope.OpenBytes(proof, c)
		if err != nil {
			return false
		}
		defer crypto.Wipe(pt)
		return subtle.ConstantTimeCompare(pt, password) == 1
	})
	instrument.Authentication(err == nil)
	if err != nil {
		s.log.Warningf("%s: authentication failed", id)
		return err
	}
	s.log.Infof("%s: authenticated", id)
	return nil
}

// Synchronize returns the sealed recording index, newest first and capped
// at the configured limit.
func (s *Service) Synchronize(ctx context.Context, id domain.SessionIdentity) (_ []byte, err error) {
	defer observe("synchronize", &err)

	c, err := s.sessions.Authenticated(id)
	if err != nil {
		return nil, err
	}
	ids, err := s.recordings.List(ctx)
	if err != nil {
		return nil, s.internal("synchronize", id, err)
	}
	slices.SortFunc(ids, func(a, b domain.RecordingID) int { return cmp.Compare(b, a) })
	if limit := s.policy.Load().SyncLimit; limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	recs := make([]domain.Recording, 0, len(ids))
	for _, rid := range ids {
		thumb, err := s.recordings.Thumbnail(ctx, rid)
		if errors.Is(err, domain.ErrNotFound) {
			// Deleted or expired since List.
			continue
		}
		if err != nil {
			return nil, s.internal("synchronize", id, err)
		}
		recs = append(recs, domain.Recording{ID: rid, Thumbnail: thumb})
	}

	b, err := index.Encode(recs)
	if err != nil {
		return nil, s.internal("synchronize", id, err)
	}
	return s.seal(id, "synchronize", b, c)
}

// Download returns the sealed video bytes of rec.
func (s *Service) Download(ctx context.Context, id domain.SessionIdentity, rec domain.RecordingID) (_ []byte, err error) {
	defer observe("download", &err)

	c, err := s.sessions.Authenticated(id)
	if err != nil {
		return nil, err
	}
	video, err := s.recordings.Video(ctx, rec)
	if err != nil {
		return nil, s.internal("download", id, err)
	}
	return s.seal(id, "download", video, c)
}

// Delete removes both artifacts of rec.
func (s *Service) Delete(ctx context.Context, id domain.SessionIdentity, rec domain.RecordingID) (err error) {
	defer observe("delete", &err)

	if _, err := s.sessions.Authenticated(id); err != nil {
		return err
	}
	if err := s.recordings.Remove(ctx, rec); err != nil {
		return s.internal("delete", id, err)
	}
	s.log.Infof("%s: deleted recording %s", id, rec)
	return nil
}

func (s *Service) seal(id domain.SessionIdentity, op string, pt []byte, c *envelope.Cipher) ([]byte, error) {
	b, err := envelope.SealBytes(pt, c)
	if err != nil {
		return nil, s.internal(op, id, err)
	}
	return b, nil
}

// internal logs err and returns the bare domain.ErrInternal so no detail
// reaches the viewer.
func (s *Service) internal(op string, id domain.SessionIdentity, err error) error {
	s.log.Errorf("%s: %s: %v", id, op, err)
	return domain.ErrInternal
}

func observe(op string, err *error) {
	result := "ok"
	switch {
	case *err == nil:
	case errors.Is(*err, domain.ErrNotAuthenticated):
		result = "not_authenticated"
	case errors.Is(*err, domain.ErrAuthenticationFailed):
		result = "auth_failed"
	case errors.Is(*err, domain.ErrKeyExchangeFailed):
		result = "key_exchange_failed"
	default:
		result = "error"
	}
	instrument.Request(op, result)
}
