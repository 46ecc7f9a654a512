package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipflow/internal/ipc"
)

type env struct {
	dataDir   string
	configDir string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv(ipc.SocketEnv, filepath.Join(t.TempDir(), "clipflow.sock"))
	return &env{dataDir: t.TempDir(), configDir: t.TempDir()}
}

func (e *env) storeFlags() []string {
	return []string{"--store", "json", "--data-dir", e.dataDir, "--config-dir", e.configDir}
}

func execute(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func (e *env) run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := execute(t, context.Background(), stdin, append(args, e.storeFlags()...)...)
	require.NoError(t, err, out)
	return out
}

func TestVersion(t *testing.T) {
	out, err := execute(t, context.Background(), "", "version")
	require.NoError(t, err)
	assert.Equal(t, "clipflow dev\n", out)
}

func TestOfflineCommands(t *testing.T) {
	e := newEnv(t)

	e.run(t, "", "add", "first")
	e.run(t, "second\nline", "add")

	out := e.run(t, "", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "second line")
	assert.Contains(t, lines[1], "first")

	out = e.run(t, "", "list", "--json", "firs")
	var listed []listedItem
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, 1, listed[0].Position)
	assert.Equal(t, "first", listed[0].Content)

	out = e.run(t, "", "delete", "2")
	assert.Equal(t, "Deleted: first\n", out)

	_, err := execute(t, context.Background(), "", append([]string{"delete", "5"}, e.storeFlags()...)...)
	require.ErrorContains(t, err, "no item at position 5")

	out = e.run(t, "", "status")
	assert.Contains(t, out, "not running")
	assert.Contains(t, out, "1 / 1000")

	out = e.run(t, "n\n", "clear")
	assert.Contains(t, out, "Aborted.")
	out = e.run(t, "", "list")
	assert.Contains(t, out, "second line")

	out = e.run(t, "", "clear", "-y")
	assert.Contains(t, out, "Clipboard history cleared!")
	out = e.run(t, "", "list")
	assert.Equal(t, "No items.\n", out)
}

func TestOfflineMaxItems(t *testing.T) {
	e := newEnv(t)
	for _, s := range []string{"a", "b", "c", "d"} {
		e.run(t, "", "add", s, "--max-items", "3")
	}
	out := e.run(t, "", "list", "--json", "--max-items", "3")
	var listed []listedItem
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	got := make([]string, len(listed))
	for i, it := range listed {
		got[i] = it.Content
	}
	assert.Equal(t, []string{"d", "c", "b"}, got)
}

func TestInvalidConfig(t *testing.T) {
	e := newEnv(t)
	_, err := execute(t, context.Background(), "", "list", "--store", "redis", "--data-dir", e.dataDir)
	require.ErrorContains(t, err, "store")
}

func TestSettingsCommands(t *testing.T) {
	e := newEnv(t)
	dir := []string{"--config-dir", e.configDir}
	run := func(args ...string) (string, error) {
		return execute(t, context.Background(), "", append(args, dir...)...)
	}

	out, err := run("settings", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "fuzzy_search.max_l_dist")
	assert.Contains(t, out, "showing defaults")
	assert.Regexp(t, `(?s)\[fuzzy_search\].*fuzzy_search\.max_l_dist.*\[search\].*search\.mode.*\[ui\]`, out, "settings are grouped by prefix")

	out, err = run("settings", "set", "search.mode", "substring")
	require.NoError(t, err)
	assert.Equal(t, "search.mode = substring\n", out)

	out, err = run("settings", "get", "search.mode")
	require.NoError(t, err)
	assert.Equal(t, "substring\n", out)

	_, err = run("settings", "set", "search.mode", "regex")
	require.Error(t, err)
	_, err = run("settings", "get", "no.such.key")
	require.Error(t, err)

	_, err = run("settings", "reset", "search.mode")
	require.NoError(t, err)
	out, err = run("settings", "get", "search.mode")
	require.NoError(t, err)
	assert.Equal(t, "fuzzy\n", out)
}

func TestDaemon(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := execute(t, ctx, "", append([]string{"daemon", "--clipboard", "memory", "--log-level", "error"}, e.storeFlags()...)...)
		done <- err
	}()
	require.Eventually(t, ipc.IsRunning, 5*time.Second, 10*time.Millisecond)

	e.run(t, "", "add", "hello world")
	e.run(t, "", "add", "other")

	out := e.run(t, "", "list", "helo")
	assert.Contains(t, out, "hello world")
	assert.NotContains(t, out, "other")

	out = e.run(t, "", "copy", "1", "helo", "--print")
	assert.Equal(t, "hello world\n", out)

	out = e.run(t, "", "status")
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "memory")
	assert.Contains(t, out, "2 / 1000")

	_, err := execute(t, context.Background(), "", append([]string{"daemon", "--clipboard", "memory", "--log-level", "error"}, e.storeFlags()...)...)
	require.ErrorIs(t, err, ipc.ErrAlreadyRunning, "a second instance must not share the store")
	assert.True(t, ipc.IsRunning(), "first daemon keeps serving")

	_, err = execute(t, context.Background(), "", append([]string{"copy", "9"}, e.storeFlags()...)...)
	require.Error(t, err)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.False(t, ipc.IsRunning())

	// The history outlives the daemon.
	out = e.run(t, "", "list")
	assert.Contains(t, out, "hello world")
}
