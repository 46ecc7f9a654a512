package monitor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipflow/internal/clip"
)

const (
	tick    = 5 * time.Millisecond
	waitFor = 2 * time.Second
)

type recorder struct {
	mu  sync.Mutex
	got []string
}

func (r *recorder) record(s string) {
	r.mu.Lock()
	r.got = append(r.got, s)
	r.mu.Unlock()
}

func (r *recorder) values() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}

func newTestMonitor(b clip.Backend) *Monitor {
	return New(b, WithInterval(tick), WithBackoff(2*tick))
}

func TestStart_InitialContent(t *testing.T) {
	b := clip.NewMemory("already here")
	m := newTestMonitor(b)
	var r recorder

	m.Start(r.record)
	defer m.Stop()

	require.Eventually(t, func() bool { return len(r.values()) == 1 }, waitFor, tick)
	time.Sleep(5 * tick)
	assert.Equal(t, []string{"already here"}, r.values(), "unchanged content is reported once")
}

func TestStart_EmptyClipboardNoInitialCallback(t *testing.T) {
	m := newTestMonitor(clip.NewMemory(""))
	var r recorder

	m.Start(r.record)
	time.Sleep(5 * tick)
	m.Stop()

	assert.Empty(t, r.values())
}

func TestChangesReportedInOrder(t *testing.T) {
	b := clip.NewMemory("")
	m := newTestMonitor(b)
	var r recorder

	m.Start(r.record)
	defer m.Stop()

	for _, s := range []string{"one", "two", "three"} {
		require.NoError(t, b.WriteText(s))
		want := s
		require.Eventually(t, func() bool {
			v := r.values()
			return len(v) > 0 && v[len(v)-1] == want
		}, waitFor, tick)
	}
	assert.Equal(t, []string{"one", "two", "three"}, r.values())

	require.NoError(t, b.WriteText(""))
	require.Eventually(t, func() bool { return len(r.values()) == 4 }, waitFor, tick)
	assert.Equal(t, "", r.values()[3], "a change to empty is still reported")
}

func TestReadErrorsBackOffWithoutCallback(t *testing.T) {
	b := clip.NewMemory("")
	m := newTestMonitor(b)
	var r recorder

	m.Start(r.record)
	defer m.Stop()

	b.SetReadErr(errors.New("display gone"))
	require.NoError(t, b.WriteText("hidden"))
	time.Sleep(10 * tick)
	assert.Empty(t, r.values())

	b.SetReadErr(nil)
	require.Eventually(t, func() bool { return len(r.values()) == 1 }, waitFor, tick)
	assert.Equal(t, []string{"hidden"}, r.values())
}

func TestStartTwiceIsNoop(t *testing.T) {
	b := clip.NewMemory("x")
	m := newTestMonitor(b)
	var first, second recorder

	m.Start(first.record)
	m.Start(second.record)
	assert.True(t, m.Running())

	require.Eventually(t, func() bool { return len(first.values()) == 1 }, waitFor, tick)
	m.Stop()
	assert.False(t, m.Running())
	assert.Empty(t, second.values())
}

func TestStop(t *testing.T) {
	b := clip.NewMemory("")
	m := New(b, WithInterval(time.Hour))
	var r recorder

	m.Start(r.record)
	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(waitFor):
		t.Fatal("Stop did not interrupt the sleeping loop")
	}

	require.NoError(t, b.WriteText("after stop"))
	time.Sleep(5 * tick)
	assert.Empty(t, r.values())

	m.Stop()
}

func TestRestart(t *testing.T) {
	b := clip.NewMemory("a")
	m := newTestMonitor(b)
	var r recorder

	m.Start(r.record)
	require.Eventually(t, func() bool { return len(r.values()) == 1 }, waitFor, tick)
	m.Stop()

	m.Start(r.record)
	defer m.Stop()
	require.Eventually(t, func() bool { return len(r.values()) == 2 }, waitFor, tick)
}

func TestSetContentAndContent(t *testing.T) {
	b := clip.NewMemory("")
	m := New(b)

	require.NoError(t, m.SetContent("copied"))
	assert.Equal(t, "copied", m.Content())

	b.SetReadErr(errors.New("nope"))
	assert.Equal(t, "", m.Content())
}
