package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elnormous/contenttype"
	"github.com/google/uuid"
	"gopkg.in/op/go-logging.v1"

	"laptev/internal/domain"
	"laptev/internal/protocol/frame"
)

const (
	// RequestIDHeader carries the per-request id in every response.
	RequestIDHeader = "X-Request-Id"

	maxProofSize = frame.MaxRequestBodySize
)

var octetStream = contenttype.NewMediaType("application/octet-stream")

// Handler serves a domain.HostService over HTTP.
type Handler struct {
	svc domain.HostService
	mux *http.ServeMux
	log *logging.Logger
}

// NewHandler builds the route table for svc.
func NewHandler(svc domain.HostService, log *logging.Logger) *Handler {
	h := &Handler{svc: svc, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleStatus)
	mux.HandleFunc("PUT /handshake/{step}", h.handleHandshake)
	mux.HandleFunc("GET /synchronize", h.handleSynchronize)
	mux.HandleFunc("GET /download/{id}", h.handleDownload)
	mux.HandleFunc("DELETE /delete/{id}", h.handleDelete)
	h.mux = mux

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	w.Header().Set(RequestIDHeader, reqID)
	defer func() {
		if v := recover(); v != nil {
			h.log.Errorf("[%s] %s %s: panic: %v", reqID, r.Method, r.URL.Path, v)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}()
	h.mux.ServeHTTP(w, r)
}

// identity derives the session identity from the connection, never from
// anything the caller sends.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (domain.SessionIdentity, bool) {
	id, ok := domain.IdentityFromRemoteAddr(r.RemoteAddr)
	if !ok {
		h.log.Warningf("[%s] unparsable remote address %q", reqID(w), r.RemoteAddr)
		w.WriteHeader(http.StatusBadRequest)
	}
	return id, ok
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := h.svc.Status(id); err != nil {
		h.fail(w, r, id, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "online")
}

func (h *Handler) handleHandshake(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	if !acceptsOctetStream(r) {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		return
	}

	switch r.PathValue("step") {
	case "0":
		// One byte over the key size is enough to detect an oversized key.
		body, err := io.ReadAll(io.LimitReader(r.Body, 33))
		if err != nil {
			h.fail(w, r, id, fmt.Errorf("%w: %v", domain.ErrKeyExchangeFailed, err))
			return
		}
		hostPub, err := h.svc.Handshake(id, body)
		if err != nil {
			h.fail(w, r, id, err)
			return
		}
		h.writeBytes(w, r, id, hostPub[:])
	case "1":
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxProofSize))
		if err != nil {
			h.fail(w, r, id, domain.ErrAuthenticationFailed)
			return
		}
		if err := h.svc.Authenticate(id, body); err != nil {
			h.fail(w, r, id, err)
			return
		}
		h.log.Infof("[%s] %s %s: ok", reqID(w), id, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleSynchronize(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	b, err := h.svc.Synchronize(r.Context(), id)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	h.writeBytes(w, r, id, b)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	rec, err := domain.ParseRecordingID(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, id, fmt.Errorf("%w: recording id: %v", domain.ErrDecodeFailure, err))
		return
	}
	b, err := h.svc.Download(r.Context(), id, rec)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	h.writeBytes(w, r, id, b)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	rec, err := domain.ParseRecordingID(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, id, fmt.Errorf("%w: recording id: %v", domain.ErrDecodeFailure, err))
		return
	}
	if err := h.svc.Delete(r.Context(), id, rec); err != nil {
		h.fail(w, r, id, err)
		return
	}
	h.log.Infof("[%s] %s %s %s: ok", reqID(w), id, r.Method, r.URL.Path)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeBytes(w http.ResponseWriter, r *http.Request, id domain.SessionIdentity, b []byte) {
	h.log.Infof("[%s] %s %s %s: ok (%d bytes)", reqID(w), id, r.Method, r.URL.Path, len(b))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		h.log.Debugf("[%s] writing response: %v", reqID(w), err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, id domain.SessionIdentity, err error) {
	code := StatusFor(err)
	h.log.Infof("[%s] %s %s %s: %d", reqID(w), id, r.Method, r.URL.Path, code)
	w.WriteHeader(code)
}

// StatusFor maps a service error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrNotAuthenticated),
		errors.Is(err, domain.ErrAuthenticationFailed),
		errors.Is(err, domain.ErrKeyExchangeFailed):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrDecodeFailure):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func acceptsOctetStream(r *http.Request) bool {
	if r.Header.Get("Content-Type") == "" {
		return true
	}
	mt, err := contenttype.GetMediaType(r)
	return err == nil && mt.Matches(octetStream)
}

func reqID(w http.ResponseWriter) string { return w.Header().Get(RequestIDHeader) }

// maxResponseSize bounds what the client reads from any response.
const maxResponseSize = frame.MaxBodySize
