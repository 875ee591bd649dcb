package wiring

import "fmt"

// Generate builds the hardware→design table for a w×h matrix wired per spec.
//
// The data line walks rows (or columns) starting at the top-left, reversing
// every odd line for serpentine modes; the walk is then mirrored so that it
// enters at spec.Corner.
func Generate(w, h int, spec Spec) (MappingTable, error) {
	if w <= 0 || h <= 0 {
		return MappingTable{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, w, h)
	}
	if err := spec.Validate(); err != nil {
		return MappingTable{}, err
	}

	lineLen, lines := w, h
	if spec.Mode.Columns() {
		lineLen, lines = h, w
	}

	idx := make([]int, 0, w*h)
	for line := 0; line < lines; line++ {
		back := spec.Mode.Serpentine() && line%2 == 1
		for i := 0; i < lineLen; i++ {
			pos := i
			if back {
				pos = lineLen - 1 - i
			}
			x, y := pos, line
			if spec.Mode.Columns() {
				x, y = line, pos
			}
			if spec.Corner.Right() {
				x = w - 1 - x
			}
			if spec.Corner.Bottom() {
				y = h - 1 - y
			}
			idx = append(idx, y*w+x)
		}
	}
	return MappingTable{idx: idx}, nil
}

// MustGenerate is Generate for known-good arguments.
func MustGenerate(w, h int, spec Spec) MappingTable {
	t, err := Generate(w, h, spec)
	if err != nil {
		panic(err)
	}
	return t
}
