package session

import "github.com/mcoot/rpsduel-go/internal/protocol"

// Conn is the send side of a participant's transport connection. The core
// references it, the transport owns it.
//
// Send must not block: the coordinator fans out notifications after leaving
// its critical section, and one dead peer must not stall delivery to others.
// Implementations buffer and drop rather than wait.
type Conn interface {
	Send(msg protocol.ServerMessage)
}
