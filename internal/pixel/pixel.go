package pixel

import (
	"errors"
	"fmt"
)

const (
	RedOffset   uint8 = 0x10
	GreenOffset uint8 = 0x08
	BlueOffset  uint8 = 0x0
)

var ErrFrameSize = errors.New("pixel: frame size is not a multiple of the channel count")

// RGB is one sample of a frame.
type RGB struct {
	R, G, B uint8
}

var (
	Black  = RGB{}
	White  = RGB{255, 255, 255}
	Red    = RGB{R: 255}
	Green  = RGB{G: 255}
	Blue   = RGB{B: 255}
	Yellow = RGB{R: 255, G: 255}
)

func setcolor(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & mask) >> off)
}

// Pack returns c as 0xRRGGBB.
func Pack(c RGB) uint32 {
	var v uint32
	v = setcolor(v, c.R, RedOffset)
	v = setcolor(v, c.G, GreenOffset)
	v = setcolor(v, c.B, BlueOffset)
	return v
}

func Unpack(v uint32) RGB {
	return RGB{getcolor(v, RedOffset), getcolor(v, GreenOffset), getcolor(v, BlueOffset)}
}

func (c RGB) String() string { return fmt.Sprintf("#%06x", Pack(c)) }

// Dist is the Manhattan distance between two colors.
func Dist(a, b RGB) int {
	return absDiff(a.R, b.R) + absDiff(a.G, b.G) + absDiff(a.B, b.B)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// FromBytes splits raw into samples. Only the first three channels of each
// pixel are kept.
func FromBytes(raw []byte, channels int) ([]RGB, error) {
	if channels < 3 || len(raw)%channels != 0 {
		return nil, fmt.Errorf("%w: %d bytes, %d channels", ErrFrameSize, len(raw), channels)
	}
	out := make([]RGB, len(raw)/channels)
	for i := range out {
		p := raw[i*channels:]
		out[i] = RGB{p[0], p[1], p[2]}
	}
	return out, nil
}

// Bytes flattens samples into an RGB byte frame.
func Bytes(px []RGB) []byte {
	out := make([]byte, 0, len(px)*3)
	for _, c := range px {
		out = append(out, c.R, c.G, c.B)
	}
	return out
}

// Uniform reports whether every sample has the same color.
func Uniform(px []RGB) bool {
	for _, c := range px[min(1, len(px)):] {
		if c != px[0] {
			return false
		}
	}
	return true
}
