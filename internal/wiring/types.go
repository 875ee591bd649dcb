package wiring

import (
	"fmt"
	"strings"
)

// Dim is the size of a rectangular matrix in pixels.
type Dim struct {
	W int `yaml:"width" json:"width"`
	H int `yaml:"height" json:"height"`
}

func (d Dim) Count() int { return d.W * d.H }

func (d Dim) Valid() bool { return d.W > 0 && d.H > 0 }

// Index returns the design index of (x, y).
func (d Dim) Index(x, y int) int { return y*d.W + x }

type Coord struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Mode is the traversal pattern of the LED data line.
type Mode int

const (
	RowMajor Mode = iota
	ColumnMajor
	RowSerpentine
	ColumnSerpentine
)

var modeNames = [...]string{"row-major", "column-major", "row-serpentine", "column-serpentine"}

// labels used by older project files and exporters
var modeAliases = map[string]Mode{
	"row-major":         RowMajor,
	"rowmajor":          RowMajor,
	"column-major":      ColumnMajor,
	"columnmajor":       ColumnMajor,
	"row-serpentine":    RowSerpentine,
	"rowserpentine":     RowSerpentine,
	"serpentine":        RowSerpentine,
	"column-serpentine": ColumnSerpentine,
	"columnserpentine":  ColumnSerpentine,
}

func (m Mode) Valid() bool { return m >= RowMajor && m <= ColumnSerpentine }

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// Serpentine reports whether every other line runs backwards.
func (m Mode) Serpentine() bool { return m == RowSerpentine || m == ColumnSerpentine }

// Columns reports whether lines run vertically.
func (m Mode) Columns() bool { return m == ColumnMajor || m == ColumnSerpentine }

func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_", "-")
	key = strings.ReplaceAll(key, " ", "-")
	if m, ok := modeAliases[key]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: unknown wiring mode %q", ErrInvalidSpec, s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: mode %d", ErrInvalidSpec, int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Corner is the physical corner where the data line enters the matrix.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

var cornerNames = [...]string{"top-left", "top-right", "bottom-left", "bottom-right"}

var cornerAliases = map[string]Corner{
	"top-left":     TopLeft,
	"topleft":      TopLeft,
	"lt":           TopLeft,
	"tl":           TopLeft,
	"top-right":    TopRight,
	"topright":     TopRight,
	"rt":           TopRight,
	"tr":           TopRight,
	"bottom-left":  BottomLeft,
	"bottomleft":   BottomLeft,
	"lb":           BottomLeft,
	"bl":           BottomLeft,
	"bottom-right": BottomRight,
	"bottomright":  BottomRight,
	"rb":           BottomRight,
	"br":           BottomRight,
}

func (c Corner) Valid() bool { return c >= TopLeft && c <= BottomRight }

func (c Corner) String() string {
	if !c.Valid() {
		return fmt.Sprintf("corner(%d)", int(c))
	}
	return cornerNames[c]
}

func (c Corner) Right() bool  { return c == TopRight || c == BottomRight }
func (c Corner) Bottom() bool { return c == BottomLeft || c == BottomRight }

// Horizontal returns the corner sharing c's row.
func (c Corner) Horizontal() Corner {
	switch c {
	case TopLeft:
		return TopRight
	case TopRight:
		return TopLeft
	case BottomLeft:
		return BottomRight
	default:
		return BottomLeft
	}
}

// Vertical returns the corner sharing c's column.
func (c Corner) Vertical() Corner {
	switch c {
	case TopLeft:
		return BottomLeft
	case BottomLeft:
		return TopLeft
	case TopRight:
		return BottomRight
	default:
		return TopRight
	}
}

// Cell returns the pixel of c in a w×h grid.
func (c Corner) Cell(w, h int) Coord {
	p := Coord{}
	if c.Right() {
		p.X = w - 1
	}
	if c.Bottom() {
		p.Y = h - 1
	}
	return p
}

func ParseCorner(s string) (Corner, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_", "-")
	key = strings.ReplaceAll(key, " ", "-")
	if c, ok := cornerAliases[key]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: unknown start corner %q", ErrInvalidSpec, s)
}

func (c Corner) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: corner %d", ErrInvalidSpec, int(c))
	}
	return []byte(c.String()), nil
}

func (c *Corner) UnmarshalText(b []byte) error {
	v, err := ParseCorner(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Spec identifies one of the 16 rectangular wirings.
type Spec struct {
	Mode   Mode   `yaml:"mode" json:"mode"`
	Corner Corner `yaml:"corner" json:"corner"`
}

// DefaultSpec is what a controller ships with when nobody rewired it.
var DefaultSpec = Spec{Mode: RowSerpentine, Corner: TopLeft}

func (s Spec) Validate() error {
	if !s.Mode.Valid() {
		return fmt.Errorf("%w: mode %d", ErrInvalidSpec, int(s.Mode))
	}
	if !s.Corner.Valid() {
		return fmt.Errorf("%w: corner %d", ErrInvalidSpec, int(s.Corner))
	}
	return nil
}

func (s Spec) String() string { return s.Mode.String() + "/" + s.Corner.String() }

// ParseSpec accepts "mode/corner", e.g. "row-serpentine/top-left".
func ParseSpec(s string) (Spec, error) {
	mode, corner, ok := strings.Cut(s, "/")
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q is not mode/corner", ErrInvalidSpec, s)
	}
	m, err := ParseMode(mode)
	if err != nil {
		return Spec{}, err
	}
	c, err := ParseCorner(corner)
	if err != nil {
		return Spec{}, err
	}
	return Spec{Mode: m, Corner: c}, nil
}

// AllSpecs lists every mode/corner combination, modes outermost.
func AllSpecs() []Spec {
	out := make([]Spec, 0, 16)
	for m := RowMajor; m <= ColumnSerpentine; m++ {
		for c := TopLeft; c <= BottomRight; c++ {
			out = append(out, Spec{Mode: m, Corner: c})
		}
	}
	return out
}
