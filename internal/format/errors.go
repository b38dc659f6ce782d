package format

import "errors"

var (
	// ErrUnknownByteOrder indicates a byte order name other than big or little.
	ErrUnknownByteOrder = errors.New("format: unknown byte order")
	// ErrUnsupportedWidth indicates an integer width the engine cannot encode.
	ErrUnsupportedWidth = errors.New("format: unsupported width")
)
