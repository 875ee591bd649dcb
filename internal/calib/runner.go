package calib

import (
	"github.com/coreman2200/arcaluminis-wiring/internal/pixel"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

type Kind string

const (
	None        Kind = ""
	IndexSweep  Kind = "index_sweep"
	RGBChannels Kind = "rgb_channels"
	CornerMarks Kind = "corner_markers"
)

func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case IndexSweep, RGBChannels, CornerMarks:
		return k, true
	}
	return None, false
}

type Plan struct {
	Kind    Kind
	Markers Markers
}

// Runner produces hardware-order calibration frames one step at a time.
type Runner struct {
	plan Plan
	step int
}

func NewRunner(plan Plan) *Runner {
	if plan.Markers == (Markers{}) {
		plan.Markers = DefaultMarkers
	}
	return &Runner{plan: plan}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Step fills rgb with the next frame for the matrix bound by b; returns
// false when the plan is complete.
func (r *Runner) Step(b *wiring.Binding, dim wiring.Dim, rgb []byte) bool {
	n := b.Len()
	for i := range rgb {
		rgb[i] = 0
	}

	switch r.plan.Kind {
	case IndexSweep:
		idx := r.step
		if idx >= n {
			return false
		}
		rgb[idx*3+0], rgb[idx*3+1], rgb[idx*3+2] = 255, 255, 255
	case RGBChannels:
		phase := r.step
		if phase >= 3 {
			return false
		}
		for i := 0; i < n; i++ {
			rgb[i*3+phase] = 255
		}
	case CornerMarks:
		if r.step > 0 || dim.Count() != n {
			return false
		}
		for hw, c := range Encoded(b, dim, r.plan.Markers) {
			rgb[hw*3+0], rgb[hw*3+1], rgb[hw*3+2] = c.R, c.G, c.B
		}
	default:
		return false
	}
	r.step++
	return true
}

// Frames runs the plan to completion and returns every frame.
func (r *Runner) Frames(b *wiring.Binding, dim wiring.Dim) [][]byte {
	var out [][]byte
	for {
		rgb := make([]byte, b.Len()*3)
		if !r.Step(b, dim, rgb) {
			return out
		}
		out = append(out, rgb)
	}
}

// Encoded returns MarkerFrame in the hardware order of b.
func Encoded(b *wiring.Binding, dim wiring.Dim, m Markers) []pixel.RGB {
	design := MarkerFrame(dim, m)
	out := make([]pixel.RGB, b.Len())
	for hw := range out {
		out[hw] = design[b.Design(hw)]
	}
	return out
}
