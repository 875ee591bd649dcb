package led

import (
	"fmt"
	"io"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

const DefaultSpeedHz = 2500000

type NRZOpts struct {
	NumPixels  int
	SpeedHz    int
	Order      ColorOrder
	Brightness float64
}

// NRZ drives a WS281x strip through an SPI port.
type NRZ struct {
	mu    sync.Mutex
	port  spi.Port
	dev   *nrzled.Dev
	opts  NRZOpts
	close bool
}

// OpenSPI initialises the host and opens the named SPI port ("" for the
// first one).
func OpenSPI(name string, o NRZOpts) (*NRZ, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", name, err)
	}
	d, err := NewNRZ(p, o)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return d, nil
}

func NewNRZ(p spi.Port, o NRZOpts) (*NRZ, error) {
	if o.NumPixels <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", o.NumPixels)
	}
	if o.SpeedHz <= 0 {
		o.SpeedHz = DefaultSpeedHz
	}
	if o.Order == (ColorOrder{}) {
		o.Order = RGB
	}
	if o.Brightness <= 0 {
		o.Brightness = 1
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: o.NumPixels,
		Channels:  3,
		Freq:      physic.Frequency(o.SpeedHz) * physic.Hertz,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &NRZ{port: p, dev: d, opts: o}, nil
}

func (n *NRZ) String() string { return n.dev.String() }

func (n *NRZ) Write(rgb []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.close {
		return ErrClosed
	}
	if len(rgb) != n.opts.NumPixels*3 {
		return fmt.Errorf("%w: %d bytes for %d leds", ErrFrameLength, len(rgb), n.opts.NumPixels)
	}
	if _, err := n.dev.Write(n.opts.Order.Reorder(rgb, n.opts.Brightness)); err != nil {
		return fmt.Errorf("nrzled write: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (n *NRZ) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.close {
		return nil
	}
	n.close = true
	err := n.dev.Halt()
	if c, ok := n.port.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
