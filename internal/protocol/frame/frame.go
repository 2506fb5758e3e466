// Package frame is the length-prefixed codec used by the raw stream
// transport.
//
// A request is op[1] || id u64-BE || len u32-BE || body and a response is
// status[1] || len u32-BE || body. The id is only meaningful for Download and
// Delete and is zero otherwise.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// MaxBodySize bounds a response body (a downloaded video).
	MaxBodySize = 256 << 20

	// MaxRequestBodySize bounds a request body. Requests carry at most a
	// public key or a password proof, and arrive before authentication.
	MaxRequestBodySize = 64 << 10
)

// Op selects the host operation a request frame invokes.
type Op uint8

const (
	OpStatus Op = iota
	OpHandshake
	OpAuthenticate
	OpSynchronize
	OpDownload
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpStatus:
		return "status"
	case OpHandshake:
		return "handshake"
	case OpAuthenticate:
		return "authenticate"
	case OpSynchronize:
		return "synchronize"
	case OpDownload:
		return "download"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Valid reports whether o names a known operation.
func (o Op) Valid() bool { return o <= OpDelete }

// Status is the outcome code of a response frame.
type Status uint8

const (
	StatusOK Status = iota
	StatusForbidden
	StatusBadRequest
	StatusInternal
)

var (
	ErrBodyTooLarge = errors.New("frame: body exceeds maximum size")
	ErrUnknownOp    = errors.New("frame: unknown operation")
)

// Request is one viewer to host frame.
type Request struct {
	Op   Op
	ID   uint64
	Body []byte
}

// Response is one host to viewer frame.
type Response struct {
	Status Status
	Body   []byte
}

const (
	requestHeader  = 1 + 8 + 4
	responseHeader = 1 + 4
)

// WriteRequest encodes r onto w in a single write.
func WriteRequest(w io.Writer, r Request) error {
	if len(r.Body) > MaxRequestBodySize {
		return ErrBodyTooLarge
	}
	buf := make([]byte, requestHeader+len(r.Body))
	buf[0] = byte(r.Op)
	binary.BigEndian.PutUint64(buf[1:9], r.ID)
	binary.BigEndian.PutUint32(buf[9:13], uint32(len(r.Body)))
	copy(buf[requestHeader:], r.Body)
	_, err := w.Write(buf)
	return err
}

// ReadRequest decodes one request frame. io.EOF is returned untouched when
// the peer closed cleanly between frames.
func ReadRequest(rd io.Reader) (Request, error) {
	var hdr [requestHeader]byte
	if _, err := io.ReadFull(rd, hdr[:]); err != nil {
		return Request{}, err
	}
	r := Request{Op: Op(hdr[0]), ID: binary.BigEndian.Uint64(hdr[1:9])}
	if !r.Op.Valid() {
		return Request{}, fmt.Errorf("%w: %d", ErrUnknownOp, hdr[0])
	}
	body, err := readBody(rd, binary.BigEndian.Uint32(hdr[9:13]), MaxRequestBodySize)
	if err != nil {
		return Request{}, err
	}
	r.Body = body
	return r, nil
}

// WriteResponse encodes r onto w in a single write.
func WriteResponse(w io.Writer, r Response) error {
	if len(r.Body) > MaxBodySize {
		return ErrBodyTooLarge
	}
	buf := make([]byte, responseHeader+len(r.Body))
	buf[0] = byte(r.Status)
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(r.Body)))
	copy(buf[responseHeader:], r.Body)
	_, err := w.Write(buf)
	return err
}

// ReadResponse decodes one response frame.
func ReadResponse(rd io.Reader) (Response, error) {
	var hdr [responseHeader]byte
	if _, err := io.ReadFull(rd, hdr[:]); err != nil {
		return Response{}, err
	}
	body, err := readBody(rd, binary.BigEndian.Uint32(hdr[1:5]), MaxBodySize)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: Status(hdr[0]), Body: body}, nil
}

func readBody(rd io.Reader, n, limit uint32) ([]byte, error) {
	if n > limit {
		return nil, ErrBodyTooLarge
	}
	if n == 0 {
		return nil, nil
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(rd, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return body, nil
}
