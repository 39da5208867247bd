package ams

import (
	"context"
	"fmt"

	"github.com/javagedes/ams/internal/frame"
)

// Controller is an ordered tuple of layers (L1, ..., Ln) composed into
// one pipeline. L1 is outermost (closest to the wire), Ln innermost.
//
// Dispatch is by layer index rather than by a fixed arity: the owning
// layer for a command is located by position, outgoing bytes are wrapped
// walking back toward L1, and incoming frames are unwrapped walking in
// from Ln, so the same Controller type serves a pipeline of any length.
type Controller struct {
	layers []Layer
}

// NewController composes layers, outermost first, into a Controller.
func NewController(layers ...Layer) *Controller {
	c := &Controller{layers: layers}
	return c
}

// Initialize sequentially initializes L1, then L2, ..., then Ln against
// the same transport.
func (c *Controller) Initialize(ctx context.Context, tp *frame.Transport) error {
	for i, l := range c.layers {
		if err := l.Initialize(ctx, tp); err != nil {
			return fmt.Errorf("controller: layer %d initialize: %w", i, err)
		}
	}
	return nil
}

// ProcessCmd determines which layer owns cmd's type and invokes its
// HandleCmd. If bytes come back, HandleOutgoingFrame is invoked on every
// layer outward of the owner (index i-1 down to 0) so the wire sees a
// fully wrapped frame. If no layer owns cmd's type, ProcessCmd returns
// (nil, nil) — a command no layer owns is silently dropped.
func (c *Controller) ProcessCmd(cmd any) ([]byte, error) {
	ownerIdx := -1
	for i, l := range c.layers {
		if l.Owns(cmd) {
			ownerIdx = i
			break
		}
	}
	if ownerIdx == -1 {
		return nil, nil
	}

	payload, err := c.layers[ownerIdx].HandleCmd(cmd)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}

	for i := ownerIdx - 1; i >= 0; i-- {
		c.layers[i].HandleOutgoingFrame(&payload)
	}
	return payload, nil
}

// ProcessIncomingFrame threads a received frame through the layers from
// innermost (last) to outermost (first), collecting any manager events
// each layer emits, in the order they were produced.
func (c *Controller) ProcessIncomingFrame(payload []byte) []any {
	var events []any
	for i := len(c.layers) - 1; i >= 0; i-- {
		if ev, ok := c.layers[i].HandleIncomingFrame(&payload); ok {
			events = append(events, ev)
		}
	}
	return events
}
