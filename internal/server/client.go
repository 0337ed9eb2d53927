package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/charleschow/fairline/internal/core/quoting"
	"github.com/charleschow/fairline/internal/telemetry"
)

// Client prices fixtures against a remote pricing server, one request at a time.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial connects to the pricing server at addr (host:port).
func Dial(ctx context.Context, addr string) (*Client, error) {
	url := fmt.Sprintf("ws://%s/ws", addr)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	telemetry.Debugf("client: connected to %s", addr)
	return &Client{conn: conn}, nil
}

// Price sends one PriceRequest and waits for its reply.
func (c *Client) Price(ctx context.Context, f quoting.Fixture) (quoting.Sheet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(pongWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.conn.SetWriteDeadline(deadline)
	c.conn.SetReadDeadline(deadline)

	req := PriceRequest{ID: uuid.NewString(), Fixture: f}
	if err := c.conn.WriteJSON(req); err != nil {
		return quoting.Sheet{}, fmt.Errorf("write request: %w", err)
	}

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return quoting.Sheet{}, fmt.Errorf("read: %w", err)
		}
		env, sheet, err := UnmarshalReply(msg)
		if env.ID != req.ID && !(env.ID == "" && env.Type == TypeError) {
			telemetry.Debugf("client: skipping reply id=%s", env.ID)
			continue
		}
		return sheet, err
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}
