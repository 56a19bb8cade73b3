package diagnosis

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// ClipboardWriter places text on the system clipboard.
type ClipboardWriter func(text string) error

// SystemClipboard writes through the operating system clipboard.
func SystemClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not available on this system")
	}
	return clipboard.WriteAll(text)
}

// CopyTo writes the diagnosis JSON with write, or the system clipboard when
// write is nil.
func (f *Flow) CopyTo(write ClipboardWriter) error {
	text, err := f.JSON()
	if err != nil {
		return err
	}
	if write == nil {
		write = SystemClipboard
	}
	if err := write(text); err != nil {
		return fmt.Errorf("failed to copy diagnosis: %w", err)
	}
	return nil
}
