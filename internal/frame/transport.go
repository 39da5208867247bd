// Package frame implements the length-delimited framing used on the wire
// between two AMS peers: a 4-byte big-endian length prefix followed by
// exactly that many payload bytes, with no other per-frame metadata.
package frame

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// MaxFrameLength bounds a single frame's payload so a corrupt or hostile
// peer cannot make a reader allocate an unbounded buffer from a single
// 4-byte length prefix.
const MaxFrameLength = 64 << 20 // 64 MiB

// Transport is a bidirectional length-delimited frame stream over a
// net.Conn. It is not safe for concurrent use by multiple readers or
// multiple writers, but one reader and one writer may operate
// concurrently: ReadFrame is meant to be driven from a dedicated reader
// goroutine while WriteFrame is called from the owning session's loop.
type Transport struct {
	conn net.Conn
	r    *bufio.Reader
}

// New wraps conn in a Transport. conn is not closed by New; call Close
// when done.
func New(conn net.Conn) *Transport {
	return &Transport{conn: conn, r: bufio.NewReader(conn)}
}

// ReadFrame blocks until a complete frame is available, the connection
// hits EOF, or a read error occurs. EOF before or inside the length
// prefix returns io.EOF; EOF inside the payload returns
// io.ErrUnexpectedEOF.
func (t *Transport) ReadFrame() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(t.r, lenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxFrameLength {
		return nil, fmt.Errorf("frame: length %d exceeds maximum %d", n, MaxFrameLength)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(t.r, payload); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes the length prefix and payload as a single frame. The
// length is computed automatically; callers never prepend it themselves.
func (t *Transport) WriteFrame(payload []byte) error {
	if uint(len(payload)) > MaxFrameLength {
		return fmt.Errorf("frame: payload length %d exceeds maximum %d", len(payload), MaxFrameLength)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))

	// write the header and body as one Write where possible to avoid
	// exposing a partially written frame on a half-closed peer.
	buf := make([]byte, 0, 4+len(payload))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, payload...)
	_, err := t.conn.Write(buf)
	return err
}

// Close closes the underlying connection, unblocking any in-flight
// ReadFrame/WriteFrame call.
func (t *Transport) Close() error {
	return t.conn.Close()
}

// LocalAddr returns the local network address of the underlying conn.
func (t *Transport) LocalAddr() net.Addr { return t.conn.LocalAddr() }

// RemoteAddr returns the remote network address of the underlying conn.
func (t *Transport) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }
