package clip

import "sync"

// Memory is a process-local clipboard. It stands in for the system
// clipboard on headless machines, and in tests, where ReadErr injects
// read failures.
type Memory struct {
	mu     sync.Mutex
	text   string
	err    error
	writes int
}

// NewMemory returns a Memory backend holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.writes++
	return nil
}

func (m *Memory) Close() error { return nil }

// SetReadErr makes subsequent reads fail with err until it is reset to nil.
func (m *Memory) SetReadErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Writes returns the number of WriteText calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
