package ams

import (
	"context"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"
)

func mustNextEvent(t *testing.T, a *AMS, timeout time.Duration) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ev, ok := a.NextEvent(ctx)
	require.True(t, ok, "expected an event before timeout")
	return ev
}

// TestEndToEndConnectSendDisconnect exercises connect, send, and
// disconnect end to end across two real AMS instances on ephemeral
// loopback ports (chosen over fixed ports to keep the test hermetic
// under parallel runs).
func TestEndToEndConnectSendDisconnect(t *testing.T) {
	defer leaktest.Check(t)()

	ctx := context.Background()

	a, err := Bind(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer a.Shutdown(ctx)

	b, err := Bind(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer b.Shutdown(ctx)

	// B connects to A; A observes ConnectionRequested and accepts; both
	// observe ConnectionEstablished.
	require.NoError(t, b.Connect(ctx, a.LocalAddr()))

	req := mustNextEvent(t, a, time.Second).(ConnectionRequested)
	req.Respond(true)

	aEstablished := mustNextEvent(t, a, time.Second).(ConnectionEstablished)
	bEstablished := mustNextEvent(t, b, time.Second).(ConnectionEstablished)
	require.Equal(t, req.Peer, aEstablished.Peer)

	// B sends a message to A.
	require.NoError(t, b.SendMessage(ctx, bEstablished.Peer, []byte("hi")))

	received := mustNextEvent(t, a, time.Second).(MessageReceived)
	require.Equal(t, []byte("hi"), received.Payload)
	require.Equal(t, uint64(0), received.MessageID)

	sent := mustNextEvent(t, b, time.Second).(MessageSent)
	require.Equal(t, uint64(0), sent.MessageID)

	// A shuts down; B observes ConnectionDisconnected for A within a
	// bounded time.
	require.NoError(t, a.Shutdown(ctx))

	disc := mustNextEvent(t, b, 2*time.Second).(ConnectionDisconnected)
	require.Equal(t, bEstablished.Peer, disc.Peer)
}

// TestSendMessageOrderingWithinSession verifies that awaited sends on
// the same peer are observed in the same order by the receiver.
func TestSendMessageOrderingWithinSession(t *testing.T) {
	defer leaktest.Check(t)()

	ctx := context.Background()

	a, err := Bind(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer a.Shutdown(ctx)

	b, err := Bind(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer b.Shutdown(ctx)

	require.NoError(t, b.Connect(ctx, a.LocalAddr()))
	req := mustNextEvent(t, a, time.Second).(ConnectionRequested)
	req.Respond(true)
	mustNextEvent(t, a, time.Second)
	bEstablished := mustNextEvent(t, b, time.Second).(ConnectionEstablished)

	require.NoError(t, b.SendMessage(ctx, bEstablished.Peer, []byte("first")))
	require.NoError(t, b.SendMessage(ctx, bEstablished.Peer, []byte("second")))

	first := mustNextEvent(t, a, time.Second).(MessageReceived)
	second := mustNextEvent(t, a, time.Second).(MessageReceived)

	require.Equal(t, []byte("first"), first.Payload)
	require.Equal(t, []byte("second"), second.Payload)
}

func TestBindInvalidAddressFails(t *testing.T) {
	_, err := Bind(context.Background(), "not-a-valid-address")
	require.Error(t, err)
}
