package wiring

import (
	"fmt"
	"strings"
)

// MaskedCoords walks the path Generate would take for spec and keeps only
// the active cells, for panels where some grid positions carry no LED. The
// result feeds a RingLayout over the same grid.
func MaskedCoords(grid Dim, spec Spec, active []Coord) ([]Coord, error) {
	t, err := Generate(grid.W, grid.H, spec)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("%w: no active cells", ErrInvalidDimension)
	}
	on := make(map[Coord]bool, len(active))
	for _, c := range active {
		if c.X < 0 || c.Y < 0 || c.X >= grid.W || c.Y >= grid.H {
			return nil, fmt.Errorf("%w: active cell (%d,%d) outside %dx%d", ErrInvalidDimension, c.X, c.Y, grid.W, grid.H)
		}
		if on[c] {
			return nil, fmt.Errorf("%w: active cell (%d,%d) listed twice", ErrDuplicateCoordinate, c.X, c.Y)
		}
		on[c] = true
	}
	out := make([]Coord, 0, len(active))
	for hw := 0; hw < t.Len(); hw++ {
		if c := t.Coord(hw, grid.W); on[c] {
			out = append(out, c)
		}
	}
	return out, nil
}

// ParseMask reads a text mask of grid.H lines of grid.W cells. '#', 'x',
// 'X', 'o' and '1' mark an LED; '.', '0', '-' and ' ' mark a gap. Blank
// trailing lines are ignored.
func ParseMask(grid Dim, text string) ([]Coord, error) {
	lines := strings.Split(strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n"), "\n")
	if len(lines) != grid.H {
		return nil, fmt.Errorf("%w: mask has %d rows, grid has %d", ErrLengthMismatch, len(lines), grid.H)
	}
	var out []Coord
	for y, line := range lines {
		line = strings.TrimRight(line, " ")
		if len(line) > grid.W {
			return nil, fmt.Errorf("%w: mask row %d has %d cells, grid has %d", ErrLengthMismatch, y, len(line), grid.W)
		}
		for x := 0; x < len(line); x++ {
			switch line[x] {
			case '#', 'x', 'X', 'o', '1':
				out = append(out, Coord{X: x, Y: y})
			case '.', '0', '-', ' ':
			default:
				return nil, fmt.Errorf("%w: mask cell (%d,%d) is %q", ErrInvalidSpec, x, y, line[x])
			}
		}
	}
	return out, nil
}
