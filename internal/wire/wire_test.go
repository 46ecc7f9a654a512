package wire

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipflow/internal/message"
)

func pipe(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return New(a), New(b)
}

func TestWriteRead(t *testing.T) {
	client, server := pipe(t)

	go func() {
		_ = client.WriteMsg(&message.Message{Type: message.TypeList, Query: "helo"})
	}()
	msg, err := server.ReadMsg()
	require.NoError(t, err)
	assert.Equal(t, message.TypeList, msg.Type)
	assert.Equal(t, "helo", msg.Query)
}

func TestRoundtrip(t *testing.T) {
	client, server := pipe(t)

	go func() {
		req, err := server.ReadMsg()
		if err != nil {
			return
		}
		if req.Index > 0 {
			_ = server.WriteMsg(message.Errorf("no item at position %d", req.Index+1))
			return
		}
		_ = server.WriteMsg(&message.Message{
			Type:  message.TypeOK,
			Items: []message.Item{message.NewItem("copied", time.Now())},
		})
	}()

	resp, err := client.Roundtrip(&message.Message{Type: message.TypeCopy, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, "copied", resp.TextPayload())
}

func TestRoundtrip_RemoteError(t *testing.T) {
	client, server := pipe(t)

	go func() {
		if _, err := server.ReadMsg(); err == nil {
			_ = server.WriteMsg(message.Errorf("no item at position %d", 4))
		}
	}()

	_, err := client.Roundtrip(&message.Message{Type: message.TypeDelete, Index: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no item at position 4")
}

func TestReadMsg_LongLine(t *testing.T) {
	client, server := pipe(t)
	big := strings.Repeat("x", 200*1024)

	go func() {
		_ = client.WriteMsg(&message.Message{Type: message.TypeAdd, Items: []message.Item{message.NewItem(big, time.Time{})}})
	}()
	msg, err := server.ReadMsg()
	require.NoError(t, err)
	assert.Equal(t, big, msg.TextPayload())
}

func TestReadMsg_Garbage(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	server := New(b)
	defer server.Close()

	go func() { _, _ = a.Write([]byte("{nope\n")) }()
	_, err := server.ReadMsg()
	require.Error(t, err)
}
