//go:build !windows

package ipc

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipflow/internal/history"
	"go.klb.dev/clipflow/internal/message"
	"go.klb.dev/clipflow/internal/service"
)

type fakeBackend struct {
	mu     sync.Mutex
	items  []string
	copied string
}

func (b *fakeBackend) match(query string) []string {
	var out []string
	for _, s := range b.items {
		if strings.Contains(s, query) {
			out = append(out, s)
		}
	}
	return out
}

func (b *fakeBackend) List(_ context.Context, query string) ([]history.Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []history.Item
	for _, s := range b.match(query) {
		out = append(out, history.Item{Content: s, CreatedAt: time.Unix(1700000000, 0)})
	}
	return out, nil
}

func (b *fakeBackend) pick(query string, index int) (string, error) {
	m := b.match(query)
	if index < 0 || index >= len(m) {
		return "", fmt.Errorf("%w: %d of %d", service.ErrIndexOutOfRange, index, len(m))
	}
	return m[index], nil
}

func (b *fakeBackend) CopyMatch(_ context.Context, query string, index int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.pick(query, index)
	if err == nil {
		b.copied = s
	}
	return s, err
}

func (b *fakeBackend) DeleteMatch(_ context.Context, query string, index int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.pick(query, index)
	if err != nil {
		return "", err
	}
	for i, it := range b.items {
		if it == s {
			b.items = append(b.items[:i], b.items[i+1:]...)
			break
		}
	}
	return s, nil
}

func (b *fakeBackend) Clear(context.Context) error {
	b.mu.Lock()
	b.items = nil
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) Add(_ context.Context, content string) error {
	b.mu.Lock()
	b.items = append([]string{content}, b.items...)
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) Status(context.Context) (service.Status, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return service.Status{State: service.Running, Items: len(b.items), MaxItems: 10, Store: "json", Clipboard: "memory"}, nil
}

func useSocket(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clipflow.sock")
	t.Setenv(SocketEnv, path)
	return path
}

func serve(t *testing.T, b Backend) {
	t.Helper()
	ln, err := Listen()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(b, "test").Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
}

func TestSocketPath_Override(t *testing.T) {
	path := useSocket(t)
	assert.Equal(t, path, SocketPath())

	t.Setenv(SocketEnv, "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/clipflow.sock", SocketPath())
}

func TestNotRunning(t *testing.T) {
	useSocket(t)
	assert.False(t, IsRunning())

	_, err := Connect()
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestClientServer(t *testing.T) {
	useSocket(t)
	b := &fakeBackend{items: []string{"apple pie", "banana", "apple juice"}}
	serve(t, b)
	require.True(t, IsRunning())

	c, err := Connect()
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Ping())

	items, err := c.List("apple")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "apple pie", items[0].Content)
	assert.Equal(t, int64(1700000000), items[0].CreatedAt.Unix())

	got, err := c.Copy("apple", 1)
	require.NoError(t, err)
	assert.Equal(t, "apple juice", got)
	b.mu.Lock()
	assert.Equal(t, "apple juice", b.copied)
	b.mu.Unlock()

	_, err = c.Copy("apple", 7)
	require.Error(t, err)
	var remote *message.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Contains(t, remote.Msg, "index out of range")

	got, err = c.Delete("", 1)
	require.NoError(t, err)
	assert.Equal(t, "banana", got)

	require.NoError(t, c.Add("multi\nline"))
	items, err = c.List("")
	require.NoError(t, err)
	assert.Equal(t, "multi\nline", items[0].Content)

	st, err := c.Status()
	require.NoError(t, err)
	assert.Equal(t, "running", st.State)
	assert.Equal(t, 3, st.Items)
	assert.Equal(t, "test", st.Version)

	require.NoError(t, c.Clear())
	items, err = c.List("")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestServer_RejectsBadRequests(t *testing.T) {
	useSocket(t)
	serve(t, &fakeBackend{})

	c, err := Connect()
	require.NoError(t, err)
	defer c.Close()

	_, err = c.do(&message.Message{Type: "BOGUS"}, message.TypeOK)
	require.ErrorContains(t, err, "unknown request type")

	_, err = c.do(&message.Message{Type: message.TypeAdd}, message.TypeOK)
	require.ErrorContains(t, err, "empty content")
}

func TestListen_RefusesLiveSocket(t *testing.T) {
	useSocket(t)
	serve(t, &fakeBackend{})

	_, err := Listen()
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestListen_RemovesStaleSocket(t *testing.T) {
	path := useSocket(t)
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, ln.Close())

	ln, err = Listen()
	require.NoError(t, err)
	require.NoError(t, ln.Close())
}
