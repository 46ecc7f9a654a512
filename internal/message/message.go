// Package message defines the clipflow IPC protocol.
//
// All messages are newline-delimited JSON. Clipboard text travels
// base64-encoded so arbitrary bytes survive the JSON round trip.
// Each message is exactly one line: <json>\n
package message

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies the kind of message.
type Type string

const (
	// Requests
	TypeList   Type = "LIST"
	TypeCopy   Type = "COPY"
	TypeDelete Type = "DELETE"
	TypeClear  Type = "CLEAR"
	TypeStatus Type = "STATUS"
	TypePing   Type = "PING"
	TypeAdd    Type = "ADD"

	// Responses
	TypeItems          Type = "ITEMS"
	TypeOK             Type = "OK"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypePong           Type = "PONG"
	TypeError          Type = "ERROR"
)

// Item is one history entry as carried over the wire.
type Item struct {
	Data      string    `json:"data"` // base64-encoded
	CreatedAt time.Time `json:"created_at"`
}

// NewItem encodes text into an Item.
func NewItem(text string, createdAt time.Time) Item {
	return Item{
		Data:      base64.StdEncoding.EncodeToString([]byte(text)),
		CreatedAt: createdAt,
	}
}

// Text returns the decoded content.
func (it Item) Text() (string, error) {
	b, err := base64.StdEncoding.DecodeString(it.Data)
	if err != nil {
		return "", fmt.Errorf("item decode: %w", err)
	}
	return string(b), nil
}

// StatusInfo is the body of a STATUS_RESPONSE.
type StatusInfo struct {
	State     string    `json:"state"`
	Items     int       `json:"items"`
	MaxItems  int       `json:"max_items"`
	Store     string    `json:"store"`
	Clipboard string    `json:"clipboard"`
	Query     string    `json:"query,omitempty"`
	Started   time.Time `json:"started"`
	Version   string    `json:"version,omitempty"`
}

// Message is the top-level wire envelope.
type Message struct {
	// Always present
	Type Type `json:"type"`

	// LIST, COPY, DELETE
	Query string `json:"query,omitempty"`
	// COPY, DELETE
	Index int `json:"index,omitempty"`

	// ADD request, COPY/DELETE response; ITEMS response
	Items []Item `json:"items,omitempty"`

	// STATUS_RESPONSE
	Status *StatusInfo `json:"status,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("message decode: missing type")
	}
	return &m, nil
}

// Errorf builds an ERROR message.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}

// Err returns the error carried by an ERROR message, or nil.
func (m *Message) Err() error {
	if m.Type != TypeError {
		return nil
	}
	return &RemoteError{Msg: m.Error}
}

// RemoteError is an error reported by the daemon.
type RemoteError struct {
	Msg string
}

func (e *RemoteError) Error() string { return "daemon: " + e.Msg }

// TextPayload returns the decoded content of the first item, or "".
func (m *Message) TextPayload() string {
	if len(m.Items) == 0 {
		return ""
	}
	s, err := m.Items[0].Text()
	if err != nil {
		return ""
	}
	return s
}

// Texts decodes every item, skipping ones that fail to decode.
func (m *Message) Texts() []string {
	out := make([]string, 0, len(m.Items))
	for _, it := range m.Items {
		if s, err := it.Text(); err == nil {
			out = append(out, s)
		}
	}
	return out
}
