package ams

import (
	"context"

	"github.com/javagedes/ams/internal/frame"
	"github.com/javagedes/ams/internal/wire"
)

// transmitSend is the transmit layer's own command type: a fully formed
// wire message (id and sender already assigned by the manager) ready to
// encode and send. This is distinct from sendMessageCmd, the
// manager-internal host command, which carries only a destination
// address and raw payload bytes.
type transmitSend struct {
	msg wire.Message
}

// transmitReceived is the controller event the transmit layer emits on a
// successfully decoded incoming frame. The session attaches the peer
// address (the layer itself is peer-agnostic) before forwarding it to
// the manager as a messageReceivedCmd.
type transmitReceived struct {
	id      uint64
	payload []byte
}

// transmitLayer is the minimum viable single-layer pipeline: the default
// "insecure" controller is (transmitLayer{},).
type transmitLayer struct{}

var _ Layer = (*transmitLayer)(nil)

// Initialize performs no handshake; the insecure pipeline talks
// application frames from the first byte.
func (t *transmitLayer) Initialize(_ context.Context, _ *frame.Transport) error {
	return nil
}

func (t *transmitLayer) Owns(cmd any) bool {
	_, ok := cmd.(transmitSend)
	return ok
}

func (t *transmitLayer) HandleCmd(cmd any) ([]byte, error) {
	send, ok := cmd.(transmitSend)
	if !ok {
		return nil, nil
	}
	return wire.Marshal(send.msg), nil
}

// HandleOutgoingFrame is a no-op: transmit is the outermost layer in the
// default pipeline, so nothing wraps its output besides framing.
func (t *transmitLayer) HandleOutgoingFrame(_ *[]byte) {}

// HandleIncomingFrame attempts to decode a Message; on success it emits
// a transmitReceived event. On decode failure it emits nothing and
// silently discards the frame.
func (t *transmitLayer) HandleIncomingFrame(payload *[]byte) (any, bool) {
	msg, err := wire.Unmarshal(*payload)
	if err != nil {
		return nil, false
	}
	return transmitReceived{id: msg.ID, payload: msg.Payload}, true
}
