// Package ams implements an embeddable peer-to-peer TCP messaging engine:
// a connection manager that owns a listener and a set of live peer
// sessions, each running a composable layer pipeline over a
// length-delimited framed transport.
package ams

import (
	"context"

	"github.com/pkg/errors"
)

// AMS is the host-facing handle returned by Bind. It is safe for
// concurrent use by multiple goroutines: Connect, SendMessage and
// Disconnect only enqueue a command.
type AMS struct {
	mgr *manager
}

// Bind starts a listener on addr and the connection manager task that
// owns it. ctx bounds the manager's lifetime in addition to Shutdown:
// cancelling ctx has the same effect as calling Shutdown.
func Bind(ctx context.Context, addr string) (*AMS, error) {
	mgr, err := startManager(ctx, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "ams: bind %s", addr)
	}
	return &AMS{mgr: mgr}, nil
}

// LocalAddr returns the address the listener actually bound to, useful
// when addr was given with an ephemeral port (":0").
func (a *AMS) LocalAddr() string {
	return a.mgr.localAddr()
}

// Connect enqueues an outbound connection attempt to addr. Success or
// failure is observed later via NextEvent (ConnectionEstablished or
// ConnectionRejected), not via this call's return.
func (a *AMS) Connect(ctx context.Context, addr string) error {
	return a.enqueue(ctx, connectCmd{addr: addr})
}

// SendMessage enqueues payload for delivery to peer. The assigned
// message id and MessageSent/MessageFailed outcome are observed via
// NextEvent.
func (a *AMS) SendMessage(ctx context.Context, peer string, payload []byte) error {
	return a.enqueue(ctx, sendMessageCmd{addr: peer, data: payload})
}

// Disconnect enqueues termination of the session for peer. Completion is
// observed as a ConnectionDisconnected event.
func (a *AMS) Disconnect(ctx context.Context, peer string) error {
	return a.enqueue(ctx, disconnectCmd{addr: peer})
}

// NextEvent blocks until the next event is available, ctx is cancelled,
// or the event stream has ended (after Shutdown). ok is false only on
// end-of-stream or ctx cancellation — callers that need to distinguish
// the two should check ctx themselves.
func (a *AMS) NextEvent(ctx context.Context) (Event, bool) {
	return a.mgr.events.Pop(ctx)
}

// Shutdown cancels the manager, cancels and joins every live session,
// and closes the event stream. It blocks until teardown is complete.
func (a *AMS) Shutdown(_ context.Context) error {
	a.mgr.shutdown()
	return nil
}

// enqueue delivers cmd to the manager's command channel, bounded by ctx.
// This is the only way a façade call can fail short of Bind: the channel
// is large (managerCmdChanCap) but not unbounded, so a façade call only
// ever fails when it cannot be enqueued.
func (a *AMS) enqueue(ctx context.Context, cmd managerCmd) error {
	select {
	case a.mgr.cmdCh <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
