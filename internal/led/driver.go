package led

import "errors"

var (
	ErrFrameLength = errors.New("led: frame length does not match the strip")
	ErrClosed      = errors.New("led: driver closed")
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes a hardware-order frame. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}
