package ams

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/javagedes/ams/internal/debug"
	"github.com/javagedes/ams/internal/frame"
	"github.com/javagedes/ams/internal/queue"
	"github.com/javagedes/ams/internal/wire"
)

// acceptResult is what the listener's accept-loop goroutine hands to the
// manager's main select loop: either a freshly accepted conn or the
// terminal error that ended Accept (listener closed).
type acceptResult struct {
	conn net.Conn
	err  error
}

// manager is the one task per AMS instance that owns the listener and the
// peer table. The peer table is touched exclusively from the run
// goroutine, so it needs no lock: closing the net.Listener is what
// unblocks a blocking Accept call during teardown.
type manager struct {
	ln       net.Listener
	localBuf string

	cmdCh  chan managerCmd
	events *queue.Queue[Event]

	cancel context.CancelFunc
	done   chan struct{}
}

// managerCmdChanCap bounds the manager's own inbound command channel —
// host commands and session self-reported disconnects share it.
const managerCmdChanCap = 128

func startManager(ctx context.Context, addr string) (*manager, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mgrCtx, cancel := context.WithCancel(ctx)

	m := &manager{
		ln:       ln,
		localBuf: ln.Addr().String(),
		cmdCh:    make(chan managerCmd, managerCmdChanCap),
		events:   queue.New[Event](),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go m.run(mgrCtx)

	return m, nil
}

func (m *manager) localAddr() string {
	return m.localBuf
}

func (m *manager) run(ctx context.Context) {
	defer close(m.done)
	defer m.events.Close()

	acceptCh := make(chan acceptResult)
	go func() {
		for {
			conn, err := m.ln.Accept()
			select {
			case acceptCh <- acceptResult{conn: conn, err: err}:
			case <-ctx.Done():
				if conn != nil {
					conn.Close()
				}
				return
			}
			if err != nil {
				return
			}
		}
	}()

	peers := make(map[string]*sessionHandle)
	var nextMessageID uint64

loop:
	for {
		select {
		case <-ctx.Done():
			break loop

		case ar := <-acceptCh:
			if ar.err != nil {
				debug.Log(1, "manager %s: accept failed: %v", m.localBuf, ar.err)
				continue
			}
			m.handleAccept(ctx, ar.conn, peers)

		case cmd := <-m.cmdCh:
			m.handleCmd(ctx, cmd, peers, &nextMessageID)
		}
	}

	m.ln.Close()
	var wg sync.WaitGroup
	for addr, h := range peers {
		wg.Add(1)
		go func(addr string, h *sessionHandle) {
			defer wg.Done()
			h.cancel()
			<-h.done
		}(addr, h)
		delete(peers, addr)
	}
	wg.Wait()
}

// handleAccept emits ConnectionRequested and waits for the host's
// accept/reject decision, racing the manager's own cancellation so a
// host that never calls Respond cannot block Shutdown forever.
func (m *manager) handleAccept(ctx context.Context, conn net.Conn, peers map[string]*sessionHandle) {
	peer := conn.RemoteAddr().String()

	reply := make(chan bool, 1)
	var replyOnce sync.Once
	respond := func(accept bool) {
		replyOnce.Do(func() {
			reply <- accept
		})
	}

	m.events.Push(ConnectionRequested{Peer: peer, Respond: respond})

	var accept bool
	select {
	case accept = <-reply:
	case <-ctx.Done():
		conn.Close()
		return
	}

	if !accept {
		conn.Close()
		return
	}

	m.spawnAndRegister(ctx, conn, peer, peers)
	m.events.Push(ConnectionEstablished{Peer: peer})
}

func (m *manager) handleCmd(ctx context.Context, cmd managerCmd, peers map[string]*sessionHandle, nextMessageID *uint64) {
	switch c := cmd.(type) {
	case connectCmd:
		conn, err := net.Dial("tcp", c.addr)
		if err != nil {
			debug.Log(1, "manager %s: connect to %s failed: %v", m.localBuf, c.addr, err)
			m.events.Push(ConnectionRejected{Peer: c.addr})
			return
		}
		peer := conn.RemoteAddr().String()
		m.spawnAndRegister(ctx, conn, peer, peers)
		m.events.Push(ConnectionEstablished{Peer: peer})

	case disconnectCmd:
		h, ok := peers[c.addr]
		if !ok {
			return
		}
		delete(peers, c.addr)
		h.cancel()
		<-h.done
		m.events.Push(ConnectionDisconnected{Peer: c.addr})

	case sendMessageCmd:
		h, ok := peers[c.addr]
		if !ok {
			m.events.Push(MessageFailed{Peer: c.addr, MessageID: *nextMessageID})
			*nextMessageID++
			return
		}
		id := *nextMessageID
		*nextMessageID++
		msg := wire.Message{ID: id, Sender: m.localBuf, Payload: c.data}
		select {
		case h.cmdCh <- transmitSend{msg: msg}:
		case <-ctx.Done():
			return
		}
		m.events.Push(MessageSent{Peer: c.addr, MessageID: id, Timestamp: time.Now()})

	case messageReceivedCmd:
		m.events.Push(MessageReceived{Peer: c.addr, MessageID: c.messageID, Payload: c.payload, Timestamp: time.Now()})
	}
}

func (m *manager) spawnAndRegister(ctx context.Context, conn net.Conn, peer string, peers map[string]*sessionHandle) {
	tp := frame.New(conn)
	h := spawnSession(ctx, tp, peer, defaultPipeline(), m.cmdCh)
	peers[peer] = h
}

func (m *manager) shutdown() {
	m.cancel()
	<-m.done
}
