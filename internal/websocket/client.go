package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client is one browser subscribed to feed updates. The feed is push-only:
// a browser that sends a data message is disconnected.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	send chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Run delivers feed events until the browser goes away or ctx ends.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	// CloseRead handles control frames and cancels ctx once the peer closes.
	ctx = c.conn.CloseRead(ctx)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.conn.Close(ws.StatusNormalClosure, "")
			return
		case event := <-c.send:
			if err := c.deliver(ctx, event); err != nil {
				c.conn.Close(ws.StatusGoingAway, "write failed")
				return
			}
		case <-ticker.C:
			if err := c.ping(ctx); err != nil {
				c.conn.CloseNow()
				return
			}
		}
	}
}

func (c *Client) deliver(ctx context.Context, event []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, event)
}

func (c *Client) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Ping(ctx)
}
