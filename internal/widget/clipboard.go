package widget

import "github.com/atotto/clipboard"

type systemClipboard struct{}

// NewSystemClipboard usa el portapapeles del sistema operativo.
func NewSystemClipboard() Clipboard {
	return systemClipboard{}
}

func (systemClipboard) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}
