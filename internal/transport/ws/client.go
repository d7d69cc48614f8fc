package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/rpsduel-go/internal/account"
	"github.com/mcoot/rpsduel-go/internal/model"
	"github.com/mcoot/rpsduel-go/internal/protocol"
	"github.com/mcoot/rpsduel-go/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// sendBufferSize bounds the per-client outbound queue. The session core
	// must never block on a slow reader, so overflow drops the message.
	sendBufferSize = 32
)

// Client is one websocket connection's bridge into the session core. It
// implements session.Conn; outbound messages go through a buffered channel
// drained by writePump so Send never blocks the caller.
type Client struct {
	coordinator *session.Coordinator
	conn        *websocket.Conn
	logger      *slog.Logger

	send chan protocol.ServerMessage
	done chan struct{}

	// name is set once a join succeeds. Only readPump's goroutine touches it.
	name model.ParticipantName
}

func newClient(conn *websocket.Conn, coordinator *session.Coordinator, logger *slog.Logger) *Client {
	return &Client{
		coordinator: coordinator,
		conn:        conn,
		logger:      logger,
		send:        make(chan protocol.ServerMessage, sendBufferSize),
		done:        make(chan struct{}),
	}
}

// Send queues a message for delivery. If the client's buffer is full the
// message is dropped; a reader that far behind is about to fail its ping
// deadline anyway.
func (c *Client) Send(msg protocol.ServerMessage) {
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("outbound buffer full, dropping message",
			slog.String("name", string(c.name)),
			slog.String("msg_type", msg.Type))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		close(c.done)
		c.conn.Close()
		if c.name != "" {
			c.coordinator.Disconnect(ctx, c.name)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg protocol.ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			// Bad JSON is the client's problem, not grounds to drop the
			// connection. Anything else means the socket is gone.
			if isJSONError(err) {
				c.logger.Debug("malformed message ignored",
					slog.String("name", string(c.name)),
					slog.String("error", err.Error()))
				continue
			}
			return
		}
		c.dispatch(ctx, msg)
	}
}

func isJSONError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// dispatch routes one inbound message. Semantic failures are reported back
// to the sender as typed error notifications; unknown types are ignored.
func (c *Client) dispatch(ctx context.Context, msg protocol.ClientMessage) {
	if msg.Type == protocol.TypeJoin {
		c.handleJoin(ctx, msg)
		return
	}

	var err error
	switch msg.Type {
	case protocol.TypeQuickMatch:
		err = c.coordinator.QuickMatch(ctx, c.name)
	case protocol.TypePlayComputer:
		err = c.coordinator.PlayComputer(ctx, c.name)
	case protocol.TypeCreatePrivate:
		err = c.coordinator.CreateLobby(ctx, c.name)
	case protocol.TypeJoinPrivate:
		err = c.coordinator.JoinLobby(ctx, c.name, model.LobbyToken(msg.LobbyToken))
	case protocol.TypeSubmitChoice:
		err = c.coordinator.SubmitChoice(ctx, c.name, msg.Choice)
	case protocol.TypeSetReady:
		if msg.Ready == nil {
			c.logger.Debug("set_ready without ready flag ignored",
				slog.String("name", string(c.name)))
			return
		}
		err = c.coordinator.SetReady(ctx, c.name, *msg.Ready)
	case protocol.TypeLeave:
		c.coordinator.Leave(ctx, c.name)
	default:
		c.logger.Debug("unknown message type ignored",
			slog.String("msg_type", msg.Type))
	}

	if err != nil {
		c.Send(protocol.FromError(err))
	}
}

// handleJoin claims a display name for the connection. A rejected join
// leaves the connection open so the client can retry with another name or
// a fresh token.
func (c *Client) handleJoin(ctx context.Context, msg protocol.ClientMessage) {
	if c.name != "" {
		c.logger.Debug("duplicate join ignored", slog.String("name", string(c.name)))
		return
	}

	name := model.ParticipantName(msg.Name)
	if err := c.coordinator.Join(ctx, name, msg.AuthToken, c); err != nil {
		if errors.Is(err, account.ErrInvalidSession) {
			c.Send(protocol.Error(protocol.CodeUnauthorized, "invalid auth token"))
			return
		}
		c.Send(protocol.FromError(err))
		return
	}
	c.name = name
	c.logger = c.logger.With(slog.String("name", string(name)))
}
