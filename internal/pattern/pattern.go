// Package pattern binds decoded animation frames to the wiring table that
// every consumer (preview, export, live output) shares.
package pattern

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-wiring/internal/convert"
	"github.com/coreman2200/arcaluminis-wiring/internal/detect"
	"github.com/coreman2200/arcaluminis-wiring/internal/pixel"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

var ErrNoFrames = errors.New("pattern: no frames")

// Source is what a file parser hands over: hardware-order frames of a
// known matrix size.
type Source struct {
	Name     string
	Dim      wiring.Dim
	Channels int
	Frames   [][]byte
}

type Pattern struct {
	ID       uuid.UUID
	Name     string
	Dim      wiring.Dim
	Channels int

	mu      sync.RWMutex
	spec    wiring.Spec
	ring    *wiring.RingLayout
	binding *wiring.Binding
	frames  [][]byte // design order
}

// Load decodes src into design order. A nil spec runs det over the first
// frames (and the file name); otherwise spec is used as given. The
// detection result is returned when detection ran.
func Load(src Source, spec *wiring.Spec, det *detect.Detector) (*Pattern, *detect.Result, error) {
	if len(src.Frames) == 0 {
		return nil, nil, ErrNoFrames
	}
	codec, err := convert.NewCodec(src.Dim, src.Channels)
	if err != nil {
		return nil, nil, err
	}

	var res *detect.Result
	if spec == nil {
		r, err := detectSpec(src, codec.Channels, det)
		if err != nil {
			return nil, nil, err
		}
		res = &r
		spec = &r.Spec
	}

	b, err := codec.Bind(*spec)
	if err != nil {
		return nil, res, err
	}
	frames := make([][]byte, len(src.Frames))
	for i, raw := range src.Frames {
		if frames[i], err = codec.DecodeWith(raw, b); err != nil {
			return nil, res, fmt.Errorf("frame %d: %w", i, err)
		}
	}

	p := &Pattern{
		ID:       uuid.New(),
		Name:     src.Name,
		Dim:      src.Dim,
		Channels: codec.Channels,
		spec:     *spec,
		binding:  b,
		frames:   frames,
	}
	log.Info().Str("pattern", p.Name).Str("spec", spec.String()).Int("frames", len(frames)).Msg("pattern loaded")
	return p, res, nil
}

func detectSpec(src Source, channels int, det *detect.Detector) (detect.Result, error) {
	if det == nil {
		var err error
		if det, err = detect.New(detect.DefaultParams()); err != nil {
			return detect.Result{}, err
		}
	}
	n := min(len(src.Frames), det.Params().MaxFrames)
	samples := make([][]pixel.RGB, 0, n)
	for _, f := range src.Frames[:n] {
		px, err := pixel.FromBytes(f, channels)
		if err != nil {
			return detect.Result{}, fmt.Errorf("%w: %w", detect.ErrInsufficientData, err)
		}
		samples = append(samples, px)
	}
	r, err := det.DetectFrames(samples, src.Dim.W, src.Dim.H)
	if err != nil {
		return detect.Result{}, err
	}
	if src.Name != "" {
		r = det.WithHint(r, detect.FromFilename(src.Name))
	}

	ev := log.Info()
	if r.Fallback {
		ev = log.Warn()
	}
	ev.Str("pattern", src.Name).
		Str("spec", r.Spec.String()).
		Str("level", r.Level.String()).
		Float64("confidence", r.Confidence).
		Bool("fallback", r.Fallback).
		Bool("hinted", r.Hinted).
		Msg("wiring detected")
	return r, nil
}

// New wraps design-order frames, e.g. from a calibration runner.
func New(name string, dim wiring.Dim, channels int, spec wiring.Spec, frames [][]byte) (*Pattern, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	codec, err := convert.NewCodec(dim, channels)
	if err != nil {
		return nil, err
	}
	b, err := codec.Bind(spec)
	if err != nil {
		return nil, err
	}
	for i, f := range frames {
		if len(f) != codec.FrameSize() {
			return nil, fmt.Errorf("frame %d: %w: %d bytes, want %d", i, convert.ErrDimensionMismatch, len(f), codec.FrameSize())
		}
	}
	return &Pattern{
		ID:       uuid.New(),
		Name:     name,
		Dim:      dim,
		Channels: codec.Channels,
		spec:     spec,
		binding:  b,
		frames:   frames,
	}, nil
}

func (p *Pattern) Spec() wiring.Spec {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.spec
}

// Ring returns the ring layout, or nil for rectangular wiring.
func (p *Pattern) Ring() *wiring.RingLayout {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ring
}

// Layout returns the validated table shared by preview and export.
func (p *Pattern) Layout() *wiring.Binding {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.binding
}

func (p *Pattern) Len() int { return len(p.frames) }

// Frame returns a copy of design frame i.
func (p *Pattern) Frame(i int) []byte { return append([]byte(nil), p.frames[i]...) }

// LEDs is the number of LEDs on the data line.
func (p *Pattern) LEDs() int { return p.Layout().Len() }

// Rewire binds a new rectangular wiring. The design frames are untouched;
// only the hardware order changes.
func (p *Pattern) Rewire(spec wiring.Spec) error {
	codec, err := convert.NewCodec(p.Dim, p.Channels)
	if err != nil {
		return err
	}
	b, err := codec.Bind(spec)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.spec, p.ring, p.binding = spec, nil, b
	p.mu.Unlock()
	log.Info().Str("pattern", p.Name).Str("spec", spec.String()).Msg("rewired")
	return nil
}

// UseRing drives the pattern through a ring layout over the design canvas.
func (p *Pattern) UseRing(r wiring.RingLayout) error {
	if r.Grid != p.Dim {
		return fmt.Errorf("%w: ring grid %dx%d, pattern %dx%d", convert.ErrDimensionMismatch, r.Grid.W, r.Grid.H, p.Dim.W, p.Dim.H)
	}
	t, err := r.Table()
	if err != nil {
		return err
	}
	return p.bindRing(r, t)
}

func (p *Pattern) bindRing(r wiring.RingLayout, t wiring.MappingTable) error {
	b, err := wiring.Bind(t, r.Len())
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.ring, p.binding = &r, b
	p.mu.Unlock()
	return nil
}

// Export re-validates the shared table and encodes every frame into
// hardware order.
func (p *Pattern) Export() ([][]byte, error) {
	out := make([][]byte, len(p.frames))
	for i := range p.frames {
		f, err := p.HardwareFrame(i)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// HardwareFrame encodes design frame i with the shared table.
func (p *Pattern) HardwareFrame(i int) ([]byte, error) {
	p.mu.RLock()
	b, ring := p.binding, p.ring
	p.mu.RUnlock()

	if err := b.Check(); err != nil {
		return nil, err
	}
	if ring == nil {
		return convert.Codec{Dim: p.Dim, Channels: p.Channels}.EncodeWith(p.frames[i], b)
	}
	leds, err := ring.Sample(p.frames[i], p.Channels)
	if err != nil {
		return nil, err
	}
	return convert.Codec{Dim: wiring.Dim{W: ring.Len(), H: 1}, Channels: p.Channels}.EncodeWith(leds, b)
}
