package ipc

import (
	"fmt"
	"net"
	"time"

	"go.klb.dev/clipflow/internal/history"
	"go.klb.dev/clipflow/internal/message"
	"go.klb.dev/clipflow/internal/wire"
)

// requestTimeout bounds a single request/reply exchange.
const requestTimeout = 10 * time.Second

// Client talks to a running daemon. It is not safe for concurrent use.
type Client struct {
	wc *wire.Conn
}

// Connect dials the daemon socket.
func Connect() (*Client, error) {
	conn, err := Dial()
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{wc: wire.New(conn)}
}

// Close closes the connection.
func (c *Client) Close() error { return c.wc.Close() }

func (c *Client) do(req *message.Message, want message.Type) (*message.Message, error) {
	c.wc.SetReadDeadline(requestTimeout)
	defer c.wc.SetReadDeadline(0)
	resp, err := c.wc.Roundtrip(req)
	if err != nil {
		return nil, err
	}
	if resp.Type != want {
		return nil, fmt.Errorf("unexpected %s reply to %s", resp.Type, req.Type)
	}
	return resp, nil
}

// Ping checks that the daemon answers.
func (c *Client) Ping() error {
	_, err := c.do(&message.Message{Type: message.TypePing}, message.TypePong)
	return err
}

// List returns the history items matching query, newest first.
func (c *Client) List(query string) ([]history.Item, error) {
	resp, err := c.do(&message.Message{Type: message.TypeList, Query: query}, message.TypeItems)
	if err != nil {
		return nil, err
	}
	out := make([]history.Item, 0, len(resp.Items))
	for _, it := range resp.Items {
		text, err := it.Text()
		if err != nil {
			return nil, err
		}
		out = append(out, history.Item{Content: text, CreatedAt: it.CreatedAt})
	}
	return out, nil
}

// Copy copies the index-th match of query to the clipboard and returns it.
func (c *Client) Copy(query string, index int) (string, error) {
	resp, err := c.do(&message.Message{Type: message.TypeCopy, Query: query, Index: index}, message.TypeOK)
	if err != nil {
		return "", err
	}
	return resp.TextPayload(), nil
}

// Delete removes the index-th match of query and returns its content.
func (c *Client) Delete(query string, index int) (string, error) {
	resp, err := c.do(&message.Message{Type: message.TypeDelete, Query: query, Index: index}, message.TypeOK)
	if err != nil {
		return "", err
	}
	return resp.TextPayload(), nil
}

// Clear empties the history.
func (c *Client) Clear() error {
	_, err := c.do(&message.Message{Type: message.TypeClear}, message.TypeOK)
	return err
}

// Add records content as a clipboard change.
func (c *Client) Add(content string) error {
	req := &message.Message{
		Type:  message.TypeAdd,
		Items: []message.Item{message.NewItem(content, time.Now())},
	}
	_, err := c.do(req, message.TypeOK)
	return err
}

// Status returns the daemon status.
func (c *Client) Status() (*message.StatusInfo, error) {
	resp, err := c.do(&message.Message{Type: message.TypeStatus}, message.TypeStatusResponse)
	if err != nil {
		return nil, err
	}
	if resp.Status == nil {
		return nil, fmt.Errorf("empty status reply")
	}
	return resp.Status, nil
}
