package core

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard receives exported documents.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

// CopyExport copies the pretty-printed document to cb.
func CopyExport(cb Clipboard, doc ExportDocument) error {
	data, err := MarshalExport(doc)
	if err != nil {
		return err
	}
	if err := cb.WriteAll(string(data)); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	return nil
}
