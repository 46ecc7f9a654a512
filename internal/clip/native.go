package clip

import (
	"fmt"

	"golang.design/x/clipboard"
)

type nativeBackend struct{}

// newNative initialises golang.design/x/clipboard. Init is called here
// rather than in init() so CLI sub-commands that never touch the clipboard
// don't fail on machines without a display.
func newNative() (Backend, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nativeBackend{}, nil
}

func (nativeBackend) Name() string { return "native" }

func (nativeBackend) ReadText() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (nativeBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (nativeBackend) Close() error { return nil }
