package led

import (
	"fmt"
	"strings"
)

// ColorOrder is the channel order a strip expects, e.g. "GRB".
type ColorOrder [3]byte

var RGB = ColorOrder{'R', 'G', 'B'}

func ParseColorOrder(s string) (ColorOrder, error) {
	if s == "" {
		return RGB, nil
	}
	up := strings.ToUpper(s)
	if len(up) != 3 || !strings.ContainsRune(up, 'R') || !strings.ContainsRune(up, 'G') || !strings.ContainsRune(up, 'B') {
		return ColorOrder{}, fmt.Errorf("led: bad color order %q", s)
	}
	return ColorOrder{up[0], up[1], up[2]}, nil
}

func (o ColorOrder) String() string { return string(o[:]) }

// Reorder returns rgb with every pixel's channels in order o, scaled by
// brightness (0..1).
func (o ColorOrder) Reorder(rgb []byte, brightness float64) []byte {
	out := make([]byte, len(rgb))
	scale := brightness < 1
	for i := 0; i+2 < len(rgb); i += 3 {
		for c := 0; c < 3; c++ {
			var v byte
			switch o[c] {
			case 'R':
				v = rgb[i]
			case 'G':
				v = rgb[i+1]
			default:
				v = rgb[i+2]
			}
			if scale {
				v = byte(float64(v) * max(0, brightness))
			}
			out[i+c] = v
		}
	}
	return out
}
