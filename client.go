package main

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
)

// frame is one queued outbound websocket message
type frame struct {
	kind int // websocket.TextMessage or websocket.BinaryMessage
	data []byte
}

// msgLimiter counts inbound messages in one-second windows
type msgLimiter struct {
	count   int
	resetAt time.Time
}

func (l *msgLimiter) allow(now time.Time) bool {
	if now.After(l.resetAt) {
		l.count = 0
		l.resetAt = now.Add(time.Second)
	}
	l.count++
	return l.count <= maxMessagesPerSec
}

// Client is one websocket connection. It is the Conn a Room talks to.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan frame
	id         string
	remoteAddr string
	room       *Room // nil when the room limit turned the client away
	limiter    msgLimiter
}

// NewClient creates a new Client with a fresh identity
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan frame, sendBufSize),
		id:         uuid.NewString(),
		remoteAddr: remoteAddr,
	}
}

// ID returns the connection identity used for seats and votes
func (c *Client) ID() string {
	return c.id
}

// ReadPump feeds inbound messages to the room until the connection drops
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			return
		}
		if !c.limiter.allow(time.Now()) {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			return
		}
		if c.room != nil {
			c.room.HandleMessage(c.id, message)
		}
	}
}

// WritePump drains the send queue and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(f.kind, f.data); err != nil {
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

// SendRaw queues a pre-marshaled JSON envelope
func (c *Client) SendRaw(data []byte) {
	c.enqueue(frame{kind: websocket.TextMessage, data: data})
}

// SendBinary queues an encoded state frame
func (c *Client) SendBinary(data []byte) {
	c.enqueue(frame{kind: websocket.BinaryMessage, data: data})
}

// enqueue never blocks: a slow client loses frames, and a send after the hub
// closed the queue is dropped.
func (c *Client) enqueue(f frame) {
	defer func() { recover() }()
	select {
	case c.send <- f:
	default:
	}
}
