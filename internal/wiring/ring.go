package wiring

import (
	"fmt"
	"math"
)

// RingLayout places LEDs at explicit grid coordinates. LED i sits at
// Coords[i]; the order of the list is the order of the data line.
type RingLayout struct {
	Grid   Dim     `yaml:"grid"`
	Coords []Coord `yaml:"coords"`
}

// GenerateRing returns the identity table over coords. A coordinate may
// appear only once.
func GenerateRing(coords []Coord) (MappingTable, error) {
	if len(coords) == 0 {
		return MappingTable{}, fmt.Errorf("%w: empty ring layout", ErrInvalidDimension)
	}
	seen := make(map[Coord]int, len(coords))
	idx := make([]int, len(coords))
	for i, c := range coords {
		if c.X < 0 || c.Y < 0 {
			return MappingTable{}, fmt.Errorf("%w: led %d at (%d,%d)", ErrInvalidDimension, i, c.X, c.Y)
		}
		if j, dup := seen[c]; dup {
			return MappingTable{}, fmt.Errorf("%w: (%d,%d) used by led %d and led %d", ErrDuplicateCoordinate, c.X, c.Y, j, i)
		}
		seen[c] = i
		idx[i] = i
	}
	return MappingTable{idx: idx}, nil
}

func (r RingLayout) Len() int { return len(r.Coords) }

// Table checks the coordinates against the grid and builds the identity table.
func (r RingLayout) Table() (MappingTable, error) {
	if !r.Grid.Valid() {
		return MappingTable{}, fmt.Errorf("%w: grid %dx%d", ErrInvalidDimension, r.Grid.W, r.Grid.H)
	}
	for i, c := range r.Coords {
		if c.X >= r.Grid.W || c.Y >= r.Grid.H {
			return MappingTable{}, fmt.Errorf("%w: led %d at (%d,%d) outside %dx%d", ErrInvalidDimension, i, c.X, c.Y, r.Grid.W, r.Grid.H)
		}
	}
	return GenerateRing(r.Coords)
}

// Sample gathers one LED-ordered frame from a design canvas of r.Grid pixels.
func (r RingLayout) Sample(canvas []byte, channels int) ([]byte, error) {
	if len(canvas) != r.Grid.Count()*channels {
		return nil, fmt.Errorf("%w: canvas has %d bytes, grid needs %d", ErrLengthMismatch, len(canvas), r.Grid.Count()*channels)
	}
	out := make([]byte, len(r.Coords)*channels)
	for i, c := range r.Coords {
		src := r.Grid.Index(c.X, c.Y) * channels
		copy(out[i*channels:(i+1)*channels], canvas[src:src+channels])
	}
	return out, nil
}

// RingCoords lays out concentric rings around the grid centre, innermost
// first. Ring k holds counts[k] LEDs evenly spaced on radius radii[k],
// starting at angle 0 and turning clockwise in screen coordinates.
func RingCoords(grid Dim, counts []int, radii []float64) ([]Coord, error) {
	if !grid.Valid() {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrInvalidDimension, grid.W, grid.H)
	}
	if len(counts) == 0 || len(counts) != len(radii) {
		return nil, fmt.Errorf("%w: %d ring counts for %d radii", ErrInvalidSpec, len(counts), len(radii))
	}
	cx, cy := float64(grid.W-1)/2, float64(grid.H-1)/2
	var out []Coord
	for k, n := range counts {
		if n <= 0 || radii[k] < 0 {
			return nil, fmt.Errorf("%w: ring %d has %d leds at radius %g", ErrInvalidSpec, k, n, radii[k])
		}
		for i := 0; i < n; i++ {
			a := 2 * math.Pi * float64(i) / float64(n)
			out = append(out, clampCoord(grid, cx+radii[k]*math.Cos(a), cy+radii[k]*math.Sin(a)))
		}
	}
	return out, nil
}

// RayCoords lays out rays spokes of perRay LEDs from the grid centre
// outwards, ray by ray.
func RayCoords(grid Dim, rays, perRay int) ([]Coord, error) {
	if !grid.Valid() {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrInvalidDimension, grid.W, grid.H)
	}
	if rays <= 0 || perRay <= 0 {
		return nil, fmt.Errorf("%w: %d rays of %d leds", ErrInvalidSpec, rays, perRay)
	}
	cx, cy := float64(grid.W-1)/2, float64(grid.H-1)/2
	maxR := math.Max(0.5, float64(min(grid.W, grid.H))/2-1)
	out := make([]Coord, 0, rays*perRay)
	for r := 0; r < rays; r++ {
		a := 2 * math.Pi * float64(r) / float64(rays)
		for i := 0; i < perRay; i++ {
			d := float64(i+1) / float64(perRay) * maxR
			out = append(out, clampCoord(grid, cx+d*math.Cos(a), cy+d*math.Sin(a)))
		}
	}
	return out, nil
}

func clampCoord(grid Dim, x, y float64) Coord {
	c := Coord{X: int(math.Round(x)), Y: int(math.Round(y))}
	c.X = max(0, min(grid.W-1, c.X))
	c.Y = max(0, min(grid.H-1, c.Y))
	return c
}
