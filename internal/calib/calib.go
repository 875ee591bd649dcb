package calib

import (
	"github.com/coreman2200/arcaluminis-wiring/internal/pixel"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

// Markers holds one color per wiring.Corner.
type Markers [4]pixel.RGB

var DefaultMarkers = Markers{
	wiring.TopLeft:     pixel.Red,
	wiring.TopRight:    pixel.Green,
	wiring.BottomLeft:  pixel.Blue,
	wiring.BottomRight: pixel.Yellow,
}

func (m Markers) Of(c wiring.Corner) pixel.RGB { return m[c] }

// Lookup returns the corner whose marker is exactly c.
func (m Markers) Lookup(c pixel.RGB) (wiring.Corner, bool) {
	for i, v := range m {
		if v == c {
			return wiring.Corner(i), true
		}
	}
	return 0, false
}

const (
	gradientBase = 40
	gradientSpan = 200
	gradientBlue = 60
)

// MarkerFrame returns the design-order diagnostic grid: the four corners
// carry their marker colors, every other pixel a red/green gradient over x/y
// so that neighbouring pixels are close in color and far ones are not.
func MarkerFrame(dim wiring.Dim, m Markers) []pixel.RGB {
	out := make([]pixel.RGB, dim.Count())
	for y := 0; y < dim.H; y++ {
		for x := 0; x < dim.W; x++ {
			out[dim.Index(x, y)] = pixel.RGB{
				R: ramp(x, dim.W),
				G: ramp(y, dim.H),
				B: gradientBlue,
			}
		}
	}
	// later corners win on 1-wide grids
	for c := wiring.TopLeft; c <= wiring.BottomRight; c++ {
		p := c.Cell(dim.W, dim.H)
		out[dim.Index(p.X, p.Y)] = m[c]
	}
	return out
}

// ramp spreads positions 0..n-1 over the full span, so long sides still
// change color from one pixel to the next every few steps.
func ramp(i, n int) uint8 {
	if n < 2 {
		return gradientBase
	}
	return uint8(gradientBase + i*gradientSpan/(n-1))
}
