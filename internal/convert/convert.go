// Package convert moves frames between design order and the hardware order
// of a wiring.
package convert

import (
	"errors"
	"fmt"

	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

// ErrDimensionMismatch is returned when a frame or table does not fit the codec's matrix.
var ErrDimensionMismatch = errors.New("convert: dimension mismatch")

const DefaultChannels = 3

// Flips mirrors the design canvas.
type Flips struct {
	X bool `yaml:"x" json:"x"`
	Y bool `yaml:"y" json:"y"`
}

func (f Flips) Any() bool { return f.X || f.Y }

// Codec converts frames of a fixed matrix size.
type Codec struct {
	Dim      wiring.Dim
	Channels int
}

func NewCodec(dim wiring.Dim, channels int) (Codec, error) {
	if !dim.Valid() {
		return Codec{}, fmt.Errorf("%w: %dx%d", wiring.ErrInvalidDimension, dim.W, dim.H)
	}
	if channels <= 0 {
		channels = DefaultChannels
	}
	return Codec{Dim: dim, Channels: channels}, nil
}

func (c Codec) FrameSize() int { return c.Dim.Count() * c.Channels }

// Bind generates and validates the table of spec for this matrix.
func (c Codec) Bind(spec wiring.Spec) (*wiring.Binding, error) {
	t, err := wiring.Generate(c.Dim.W, c.Dim.H, spec)
	if err != nil {
		return nil, err
	}
	return wiring.Bind(t, c.Dim.Count())
}

// Decode turns a hardware-order frame wired per spec into design order.
func (c Codec) Decode(raw []byte, spec wiring.Spec) ([]byte, error) {
	b, err := c.Bind(spec)
	if err != nil {
		return nil, err
	}
	return c.DecodeWith(raw, b)
}

// Encode turns a design-order frame into the hardware order of spec.
func (c Codec) Encode(buf []byte, spec wiring.Spec) ([]byte, error) {
	b, err := c.Bind(spec)
	if err != nil {
		return nil, err
	}
	return c.EncodeWith(buf, b)
}

// DecodeWith scatters raw[hw] into design[table[hw]].
func (c Codec) DecodeWith(raw []byte, b *wiring.Binding) ([]byte, error) {
	if err := c.check(raw, b); err != nil {
		return nil, err
	}
	ch := c.Channels
	out := make([]byte, len(raw))
	for hw := 0; hw < b.Len(); hw++ {
		d := b.Design(hw)
		copy(out[d*ch:(d+1)*ch], raw[hw*ch:(hw+1)*ch])
	}
	return out, nil
}

// EncodeWith gathers raw[hw] from buf[table[hw]].
func (c Codec) EncodeWith(buf []byte, b *wiring.Binding) ([]byte, error) {
	if err := c.check(buf, b); err != nil {
		return nil, err
	}
	ch := c.Channels
	out := make([]byte, len(buf))
	for hw := 0; hw < b.Len(); hw++ {
		d := b.Design(hw)
		copy(out[hw*ch:(hw+1)*ch], buf[d*ch:(d+1)*ch])
	}
	return out, nil
}

// Convert rewires a hardware frame from src to dst, optionally mirroring
// the design in between.
func (c Codec) Convert(raw []byte, src, dst wiring.Spec, f Flips) ([]byte, error) {
	design, err := c.Decode(raw, src)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}
	if f.Any() {
		design = Flip(design, c.Dim, c.Channels, f)
	}
	out, err := c.Encode(design, dst)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", dst, err)
	}
	return out, nil
}

func (c Codec) check(frame []byte, b *wiring.Binding) error {
	if len(frame) != c.FrameSize() {
		return fmt.Errorf("%w: frame has %d bytes, %dx%dx%d needs %d",
			ErrDimensionMismatch, len(frame), c.Dim.W, c.Dim.H, c.Channels, c.FrameSize())
	}
	if b.Len() != c.Dim.Count() {
		return fmt.Errorf("%w: table covers %d leds, matrix has %d", ErrDimensionMismatch, b.Len(), c.Dim.Count())
	}
	return nil
}

// Flip mirrors a design-order frame horizontally and/or vertically.
func Flip(buf []byte, dim wiring.Dim, channels int, f Flips) []byte {
	out := make([]byte, len(buf))
	for y := 0; y < dim.H; y++ {
		for x := 0; x < dim.W; x++ {
			sx, sy := x, y
			if f.X {
				sx = dim.W - 1 - x
			}
			if f.Y {
				sy = dim.H - 1 - y
			}
			dst, src := dim.Index(x, y)*channels, dim.Index(sx, sy)*channels
			copy(out[dst:dst+channels], buf[src:src+channels])
		}
	}
	return out
}
