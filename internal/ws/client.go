package ws

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"live-scores-service/internal/subs"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum inbound message size; clients only send small command payloads.
	maxMessageSize = 1024
	// Outbound queue per client; a full queue drops the message rather than
	// stalling the broadcast loop on one slow client.
	sendBuffer = 32
)

// errSlowClient marks a dropped message for a lagging but still-open client.
var errSlowClient = errors.New("send queue full")

// Client is one connected browser session. It satisfies subs.Sender; writes
// go through a buffered queue serviced by the write pump.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan any

	closeOnce sync.Once
	closed    chan struct{}
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn:   conn,
		send:   make(chan any, sendBuffer),
		closed: make(chan struct{}),
	}
}

// ID returns the registry identifier assigned at connect time.
func (c *Client) ID() string {
	return c.id
}

// Send queues a message for delivery. It fails with subs.ErrClientGone once
// the connection is closed, and drops (with an error) when the client's
// queue is full.
func (c *Client) Send(msg any) error {
	select {
	case <-c.closed:
		return fmt.Errorf("client %s: %w", c.id, subs.ErrClientGone)
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.closed:
		return fmt.Errorf("client %s: %w", c.id, subs.ErrClientGone)
	default:
		return fmt.Errorf("client %s: %w", c.id, errSlowClient)
	}
}

// close shuts the client down exactly once; safe from any goroutine.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

// writePump services the send queue and keeps the connection alive with
// pings. It owns all writes to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
