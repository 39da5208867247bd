package ams

import (
	"context"

	"github.com/javagedes/ams/internal/frame"
)

// Layer is a single, typed stage in a connection's frame-processing
// pipeline. A layer is owned exclusively by the session that holds its
// controller and is never touched from more than one goroutine.
//
// Command ownership is static: Owns reports whether cmd is a value of
// the type this layer's HandleCmd accepts, without side effects, so a
// Controller can find the one owning layer before invoking anything.
type Layer interface {
	// Initialize runs any in-band handshake the layer needs against tp
	// before the pipeline accepts application commands or frames. Layers
	// are initialized in pipeline order, each seeing tp in the state the
	// previous layer left it.
	Initialize(ctx context.Context, tp *frame.Transport) error

	// Owns reports whether cmd is a command type this layer handles.
	Owns(cmd any) bool

	// HandleCmd processes a command this layer owns, returning bytes to
	// emit (further wrapped by upstream layers) or nil if there's
	// nothing to send.
	HandleCmd(cmd any) ([]byte, error)

	// HandleOutgoingFrame wraps/transforms bytes produced by a lower
	// layer before they are sent further upstream (toward the wire).
	HandleOutgoingFrame(payload *[]byte)

	// HandleIncomingFrame inspects (and may unwrap) a received frame,
	// optionally producing one manager-facing event.
	HandleIncomingFrame(payload *[]byte) (event any, ok bool)
}
