package ams

import "time"

// Event is a host-facing notification emitted by the connection manager.
// Concrete types are ConnectionRequested, ConnectionEstablished,
// ConnectionRejected, ConnectionDisconnected, MessageReceived,
// MessageSent, and MessageFailed.
type Event interface {
	isEvent()
}

// ConnectionRequested is emitted for an inbound TCP accept before the
// session is spawned; the host must call Respond to accept or reject it.
// Respond is safe to call at most meaningfully once: later calls, and
// never calling it at all, are both safe no-ops — an abandoned accept
// decision is bounded by the manager's own shutdown rather than blocking
// it forever.
type ConnectionRequested struct {
	Peer    string
	Respond func(accept bool)
}

func (ConnectionRequested) isEvent() {}

// ConnectionEstablished reports a connection — inbound or outbound — is
// now live and in the peer table.
type ConnectionEstablished struct {
	Peer string
}

func (ConnectionEstablished) isEvent() {}

// ConnectionRejected reports an outbound Connect failed. Inbound
// refusals never produce this event: there is deliberately no way for a
// host to tell "I rejected it" apart from "nothing happened" for an
// inbound connection.
type ConnectionRejected struct {
	Peer string
}

func (ConnectionRejected) isEvent() {}

// ConnectionDisconnected reports a peer's session has terminated and has
// already been removed from the peer table. Exactly one is emitted per
// session that ends while the manager is running; sessions torn down by
// Shutdown emit none.
type ConnectionDisconnected struct {
	Peer string
}

func (ConnectionDisconnected) isEvent() {}

// MessageReceived reports a message decoded from an inbound frame.
type MessageReceived struct {
	Peer      string
	MessageID uint64
	Payload   []byte
	Timestamp time.Time
}

func (MessageReceived) isEvent() {}

// MessageSent reports a send was handed off to the session, not that it
// was acknowledged by the peer's TCP stack.
type MessageSent struct {
	Peer      string
	MessageID uint64
	Timestamp time.Time
}

func (MessageSent) isEvent() {}

// MessageFailed reports a send could not be handed off because no
// session exists for Peer.
type MessageFailed struct {
	Peer      string
	MessageID uint64
}

func (MessageFailed) isEvent() {}
