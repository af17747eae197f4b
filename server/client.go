package server

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Websocket timeouts following the Gorilla chat example.
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait).
	pingPeriod = 54 * time.Second

	// Maximum inbound message size; selections are index lists, 1MB is
	// generous.
	maxMessageSize = 1024 * 1024
)

// Client is one websocket connection.
type Client struct {
	server *Server
	conn   *websocket.Conn
	send   chan any
	id     string
}

func newClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		server: s,
		conn:   conn,
		send:   make(chan any, 64),
		id:     uuid.NewString(),
	}
}

// disconnect hands the client back to the registry loop. After a shutdown
// the loop is gone; the context end takes over so the reader never blocks.
func (c *Client) disconnect() {
	select {
	case c.server.unregister <- c:
	case <-c.server.ctx.Done():
	}
	c.conn.Close()
}

// readPump reads inbound messages until the connection dies.
func (c *Client) readPump() {
	defer c.disconnect()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		var msg InboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.server.logger.Warnw("bad client message", "error", err, "client_id", c.id)
			continue
		}
		c.routeMessage(&msg)
	}
}

// handleReadError logs unexpected read errors; normal closures are silent.
func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		c.server.logger.Warnw("websocket read error", "error", err, "client_id", c.id)
	}
}

// routeMessage marshals client actions onto the session's update loop. The
// websocket reader never touches shared state directly.
func (c *Client) routeMessage(msg *InboundMessage) {
	app := c.server.app
	switch msg.Type {
	case "selection":
		sink := app.VertexSink()
		if msg.Sink == "edges" {
			sink = app.EdgeSink()
		}
		indices := msg.rowIndices()
		app.Dispatch(func() {
			sink.SetSelected(indices)
		})
	case "reload":
		app.Dispatch(func() {
			if err := app.Reload(); err != nil {
				c.server.logger.Errorw("reload failed", "error", err, "client_id", c.id)
			}
		})
	case "ping":
		// Deadline already refreshed by the pong handler.
	default:
		c.server.logger.Debugw("unknown message type", "type", msg.Type, "client_id", c.id)
	}
}

// writePump streams outbound messages and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.server.ctx.Done():
			return
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.server.logger.Warnw("websocket write error", "error", err, "client_id", c.id)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
