// Package stream carries the session protocol over raw TCP using the frame
// codec. Every request frame gets exactly one response frame; a connection
// may carry any number of them.
package stream

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/op/go-logging.v1"

	"laptev/internal/domain"
	"laptev/internal/protocol/frame"
	"laptev/internal/worker"
)

// DefaultIdleTimeout closes connections that send nothing for this long.
const DefaultIdleTimeout = 2 * time.Minute

// Server serves a domain.HostService on a net.Listener.
type Server struct {
	worker.Worker

	svc         domain.HostService
	log         *logging.Logger
	idleTimeout time.Duration

	mu     sync.Mutex
	ln     net.Listener
	conns  map[net.Conn]struct{}
	closed bool
}

// NewServer returns a server for svc. A non-positive idleTimeout selects
// DefaultIdleTimeout.
func NewServer(svc domain.HostService, log *logging.Logger, idleTimeout time.Duration) *Server {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Server{
		svc:         svc,
		log:         log,
		idleTimeout: idleTimeout,
		conns:       make(map[net.Conn]struct{}),
	}
}

// Serve starts accepting on ln in the background. Halt stops it.
func (s *Server) Serve(ln net.Listener) {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.Go(func() { s.acceptLoop(ln) })
}

// Halt closes the listener and every open connection, then waits for the
// connection goroutines.
func (s *Server) Halt() {
	s.mu.Lock()
	s.closed = true
	if s.ln != nil {
		_ = s.ln.Close()
	}
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.Worker.Halt()
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.HaltCh():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Errorf("accept: %v", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		s.Go(func() { s.serveConn(conn) })
	}
}

func (s *Server) serveConn(conn net.Conn) {
	connID := uuid.NewString()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()
	defer func() {
		if v := recover(); v != nil {
			s.log.Errorf("[%s] panic: %v", connID, v)
		}
	}()

	id, ok := domain.IdentityFromAddr(conn.RemoteAddr())
	if !ok {
		s.log.Warningf("[%s] unparsable remote address %v", connID, conn.RemoteAddr())
		return
	}
	s.log.Debugf("[%s] %s connected", connID, id)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		req, err := frame.ReadRequest(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.log.Infof("[%s] %s: bad frame: %v", connID, id, err)
				_ = frame.WriteResponse(conn, frame.Response{Status: frame.StatusBadRequest})
			}
			return
		}

		resp := s.dispatch(id, req)
		s.log.Infof("[%s] %s %s: status %d (%d bytes)", connID, id, req.Op, resp.Status, len(resp.Body))
		_ = conn.SetWriteDeadline(time.Now().Add(s.idleTimeout))
		if err := frame.WriteResponse(conn, resp); err != nil {
			s.log.Debugf("[%s] writing response: %v", connID, err)
			return
		}
	}
}

func (s *Server) dispatch(id domain.SessionIdentity, req frame.Request) frame.Response {
	ctx := s.Context()
	rec := domain.RecordingID(req.ID)

	var (
		body []byte
		err  error
	)
	switch req.Op {
	case frame.OpStatus:
		if err = s.svc.Status(id); err == nil {
			body = []byte("online")
		}
	case frame.OpHandshake:
		var pub domain.X25519Public
		if pub, err = s.svc.Handshake(id, req.Body); err == nil {
			body = pub[:]
		}
	case frame.OpAuthenticate:
		err = s.svc.Authenticate(id, req.Body)
	case frame.OpSynchronize:
		body, err = s.svc.Synchronize(ctx, id)
	case frame.OpDownload:
		body, err = s.svc.Download(ctx, id, rec)
	case frame.OpDelete:
		err = s.svc.Delete(ctx, id, rec)
	default:
		return frame.Response{Status: frame.StatusBadRequest}
	}
	if err != nil {
		return frame.Response{Status: StatusFor(err)}
	}
	return frame.Response{Status: frame.StatusOK, Body: body}
}

// StatusFor maps a service error onto a frame status.
func StatusFor(err error) frame.Status {
	switch {
	case err == nil:
		return frame.StatusOK
	case errors.Is(err, domain.ErrNotAuthenticated),
		errors.Is(err, domain.ErrAuthenticationFailed),
		errors.Is(err, domain.ErrKeyExchangeFailed):
		return frame.StatusForbidden
	case errors.Is(err, domain.ErrDecodeFailure):
		return frame.StatusBadRequest
	}
	return frame.StatusInternal
}
