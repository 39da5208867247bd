package ams

// managerCmd is the manager's own internal command set. The host façade
// and a session's self-reported disconnect both enqueue these onto the
// same channel.
type managerCmd interface {
	isManagerCmd()
}

// connectCmd requests an outbound connection to addr.
type connectCmd struct {
	addr string
}

func (connectCmd) isManagerCmd() {}

// disconnectCmd requests (or reports) that the session for addr
// terminate. The manager always cancels-and-joins unconditionally on
// this command, even if addr's own session is the one that sent it, so
// teardown is deterministic regardless of who initiated it.
type disconnectCmd struct {
	addr string
}

func (disconnectCmd) isManagerCmd() {}

// sendMessageCmd requests a payload be sent to addr. It carries no
// message id: the manager assigns one from its own monotonic counter when
// it processes the command.
type sendMessageCmd struct {
	addr string
	data []byte
}

func (sendMessageCmd) isManagerCmd() {}

// messageReceivedCmd is how a session forwards a decoded incoming
// message to the manager: the transmit layer's transmitReceived event,
// enriched with the peer address the layer itself doesn't know.
type messageReceivedCmd struct {
	addr      string
	messageID uint64
	payload   []byte
}

func (messageReceivedCmd) isManagerCmd() {}
