// Package wire encodes and decodes the payload carried by the built-in
// transmit layer: a compact, self-describing binary representation of a
// Message that round-trips without depending on any particular peer's
// struct layout.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Message is a typed payload exchanged between two directly connected
// peers. ID is assigned by the sender's connection manager; Sender is the
// sender's own local address; Payload is an opaque application blob.
type Message struct {
	ID      uint64
	Sender  string
	Payload []byte
}

// field type tags. Each field is self-describing so a decoder never has
// to guess a length: a tag byte, then (for variable-length fields) a
// uint32 length prefix, then the raw bytes.
const (
	tagUint64 byte = 1
	tagString byte = 2
	tagBytes  byte = 3
)

// Marshal encodes m into a newly allocated buffer.
func Marshal(m Message) []byte {
	size := 1 + 8 + // id
		1 + 4 + len(m.Sender) + // sender
		1 + 4 + len(m.Payload) // payload
	buf := make([]byte, 0, size)

	buf = append(buf, tagUint64)
	buf = binary.BigEndian.AppendUint64(buf, m.ID)

	buf = append(buf, tagString)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(m.Sender)))
	buf = append(buf, m.Sender...)

	buf = append(buf, tagBytes)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(m.Payload)))
	buf = append(buf, m.Payload...)

	return buf
}

// Unmarshal decodes a Message previously produced by Marshal. It returns
// an error rather than panicking on any malformed or truncated input,
// since the bytes originate from a remote peer.
func Unmarshal(buf []byte) (Message, error) {
	var m Message

	tag, buf, err := readTag(buf)
	if err != nil {
		return m, err
	}
	if tag != tagUint64 {
		return m, fmt.Errorf("wire: expected id tag %d, got %d", tagUint64, tag)
	}
	if len(buf) < 8 {
		return m, fmt.Errorf("wire: truncated id field")
	}
	m.ID = binary.BigEndian.Uint64(buf)
	buf = buf[8:]

	tag, buf, err = readTag(buf)
	if err != nil {
		return m, err
	}
	if tag != tagString {
		return m, fmt.Errorf("wire: expected sender tag %d, got %d", tagString, tag)
	}
	s, buf, err := readLenPrefixed(buf)
	if err != nil {
		return m, err
	}
	m.Sender = string(s)

	tag, buf, err = readTag(buf)
	if err != nil {
		return m, err
	}
	if tag != tagBytes {
		return m, fmt.Errorf("wire: expected payload tag %d, got %d", tagBytes, tag)
	}
	p, buf, err := readLenPrefixed(buf)
	if err != nil {
		return m, err
	}
	// copy: buf aliases the caller's frame buffer, which may be reused.
	m.Payload = append([]byte(nil), p...)

	if len(buf) != 0 {
		return m, fmt.Errorf("wire: %d trailing bytes after message", len(buf))
	}

	return m, nil
}

func readTag(buf []byte) (byte, []byte, error) {
	if len(buf) < 1 {
		return 0, nil, fmt.Errorf("wire: truncated tag")
	}
	return buf[0], buf[1:], nil
}

func readLenPrefixed(buf []byte) ([]byte, []byte, error) {
	if len(buf) < 4 {
		return nil, nil, fmt.Errorf("wire: truncated length prefix")
	}
	n := binary.BigEndian.Uint32(buf)
	buf = buf[4:]
	if uint32(len(buf)) < n {
		return nil, nil, fmt.Errorf("wire: truncated field: want %d bytes, have %d", n, len(buf))
	}
	return buf[:n], buf[n:], nil
}
