package clip

import (
	"fmt"

	atotto "github.com/atotto/clipboard"
)

// execBackend shells out to the platform clipboard tools.
type execBackend struct{}

func newExec() (Backend, error) {
	if atotto.Unsupported {
		return nil, fmt.Errorf("%w: no xclip, xsel or wl-clipboard found", ErrUnavailable)
	}
	return execBackend{}, nil
}

func (execBackend) Name() string { return "exec" }

func (execBackend) ReadText() (string, error) {
	s, err := atotto.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return s, nil
}

func (execBackend) WriteText(text string) error {
	if err := atotto.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

func (execBackend) Close() error { return nil }
