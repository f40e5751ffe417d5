package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second

	// must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// control frames are tiny
	maxMessageSize = 1024

	// a split into 120 installments is one frame, so this is plenty
	sendBufferSize = 64
)

var (
	ErrClientClosed   = errors.New("client is closed")
	ErrSendBufferFull = errors.New("client send buffer full")
)

// Client is one live dashboard tab of a company
type Client struct {
	Subscription

	id        string
	companyID uuid.UUID
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewClient wraps an upgraded connection. Call Hub.Register, then run both pumps.
func NewClient(conn *websocket.Conn, companyID uuid.UUID, hub *Hub) *Client {
	return &Client{
		id:        uuid.NewString(),
		companyID: companyID,
		conn:      conn,
		hub:       hub,
		send:      make(chan []byte, sendBufferSize),
	}
}

func (c *Client) ID() string           { return c.id }
func (c *Client) CompanyID() uuid.UUID { return c.companyID }

// Send queues a frame without blocking. A slow peer gets ErrSendBufferFull and the hub drops it.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close stops the write pump, which says goodbye to the peer. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
	return nil
}

// ReadPump applies subscription frames until the peer goes away, then unregisters.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client_id", c.id).Str("company_id", c.companyID.String()).Msg("WebSocket unexpected close")
			}
			return
		}

		msg, err := ParseClientMessage(data)
		if err == nil {
			err = c.Apply(msg)
		}
		if err != nil {
			log.Debug().Err(err).Str("client_id", c.id).Msg("Ignoring client message")
			continue
		}
		log.Debug().
			Str("client_id", c.id).
			Str("action", msg.Action).
			Interface("entities", msg.Entities).
			Msg("Subscription updated")
	}
}

// WritePump drains the send queue and pings. It owns the connection and closes it on exit.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "closing"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().Err(err).Str("client_id", c.id).Msg("WebSocket write error")
				c.Close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}
