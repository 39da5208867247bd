package ams

import (
	"context"
	"io"
	"sync"

	"github.com/javagedes/ams/internal/debug"
	"github.com/javagedes/ams/internal/frame"
)

// sessionHandle is what the manager holds for each live peer: a bounded
// command channel into the session, a cancellation signal, and a join
// signal. The manager exclusively owns these; dropping a handle without
// cancelling it first is a bug.
type sessionHandle struct {
	addr   string
	cmdCh  chan any
	cancel func()
	done   <-chan struct{}
}

// sessionCmdChanCap is the bounded capacity of a session's command
// channel. A slow session backs up its own command channel before it can
// back up the manager, giving a negligent peer a bounded blast radius.
const sessionCmdChanCap = 32

// spawnSession starts the per-peer session task: it initializes ctrl
// against tp, then loops, racing cancellation, host commands, and
// inbound frames. toManager is used both to forward controller-produced
// events and to self-report a disconnect on I/O failure.
func spawnSession(ctx context.Context, tp *frame.Transport, addr string, ctrl *Controller, toManager chan<- managerCmd) *sessionHandle {
	cmdCh := make(chan any, sessionCmdChanCap)
	done := make(chan struct{})
	sessionCtx, cancel := context.WithCancel(ctx)

	var cancelOnce sync.Once
	cancelFn := func() {
		cancelOnce.Do(cancel)
	}

	go runSession(sessionCtx, tp, addr, ctrl, cmdCh, toManager, done)

	return &sessionHandle{
		addr:   addr,
		cmdCh:  cmdCh,
		cancel: cancelFn,
		done:   done,
	}
}

type frameResult struct {
	payload []byte
	err     error
}

func runSession(ctx context.Context, tp *frame.Transport, addr string, ctrl *Controller, cmdCh <-chan any, toManager chan<- managerCmd, done chan<- struct{}) {
	defer close(done)

	if err := ctrl.Initialize(ctx, tp); err != nil {
		debug.Log(1, "session %s: controller initialize failed: %v", addr, err)
		tp.Close()
		sendDisconnect(ctx, toManager, addr)
		return
	}

	frameCh := make(chan frameResult)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			payload, err := tp.ReadFrame()
			select {
			case frameCh <- frameResult{payload: payload, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	// Teardown must close the transport (unblocking the reader's
	// in-flight Read) before waiting for the reader to exit, and only
	// then signal done — so it's a single deferred call, not a stack of
	// independent defers whose LIFO order would run the wait before the
	// close.
	defer func() {
		tp.Close()
		<-readerDone
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop

		case cmd := <-cmdCh:
			out, err := ctrl.ProcessCmd(cmd)
			if err != nil {
				debug.Log(1, "session %s: process cmd: %v", addr, err)
				continue
			}
			if out == nil {
				continue
			}
			if err := tp.WriteFrame(out); err != nil {
				debug.Log(1, "session %s: write failed: %v", addr, err)
				sendDisconnect(ctx, toManager, addr)
				continue
			}

		case fr := <-frameCh:
			if fr.err != nil {
				if fr.err != io.EOF {
					debug.Log(1, "session %s: read failed: %v", addr, fr.err)
				}
				sendDisconnect(ctx, toManager, addr)
				continue
			}
			for _, ev := range ctrl.ProcessIncomingFrame(fr.payload) {
				forwarded := forwardControllerEvent(addr, ev)
				if forwarded == nil {
					continue
				}
				select {
				case toManager <- forwarded:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// forwardControllerEvent translates an opaque controller event into a
// manager-internal command. Only the transmit layer's event type is
// known here; an event type nothing recognizes is silently dropped.
func forwardControllerEvent(addr string, ev any) managerCmd {
	switch e := ev.(type) {
	case transmitReceived:
		return messageReceivedCmd{addr: addr, messageID: e.id, payload: e.payload}
	default:
		return nil
	}
}

func sendDisconnect(ctx context.Context, toManager chan<- managerCmd, addr string) {
	select {
	case toManager <- disconnectCmd{addr: addr}:
	case <-ctx.Done():
	}
}

// defaultPipeline builds the insecure default controller: the
// one-element tuple (transmitLayer,).
func defaultPipeline() *Controller {
	return NewController(&transmitLayer{})
}
