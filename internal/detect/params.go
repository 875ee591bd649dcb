package detect

import (
	"errors"
	"fmt"

	"github.com/coreman2200/arcaluminis-wiring/internal/calib"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

var ErrInvalidParams = errors.New("detect: invalid parameters")

// Params are the weights and thresholds of the heuristic.
type Params struct {
	// SignalWeight is added for each positive signal (corner marker,
	// reversed lines, line alignment).
	SignalWeight int
	// BiasWeight is added to the straight mode of a line family that voted
	// but did not look serpentine.
	BiasWeight int
	// SimilarityCutoff is the share of reversed votes that marks a family
	// as serpentine.
	SimilarityCutoff float64

	StrongAbove int
	MediumFrom  int

	// Fallback is reported, with FallbackConfidence, when the evidence is weak.
	Fallback           wiring.Spec
	FallbackConfidence float64

	// HintOverride is the filename hint confidence that overrides the heuristic.
	HintOverride float64
	MaxFrames    int

	Markers calib.Markers
}

func DefaultParams() Params {
	return Params{
		SignalWeight:       10,
		BiasWeight:         5,
		SimilarityCutoff:   0.7,
		StrongAbove:        10,
		MediumFrom:         5,
		Fallback:           wiring.DefaultSpec,
		FallbackConfidence: 0.6,
		HintOverride:       0.9,
		MaxFrames:          3,
		Markers:            calib.DefaultMarkers,
	}
}

func (p Params) Validate() error {
	switch {
	case p.SignalWeight <= 0 || p.BiasWeight < 0:
		return fmt.Errorf("%w: weights %d/%d", ErrInvalidParams, p.SignalWeight, p.BiasWeight)
	case p.SimilarityCutoff <= 0 || p.SimilarityCutoff > 1:
		return fmt.Errorf("%w: similarity cutoff %g", ErrInvalidParams, p.SimilarityCutoff)
	case p.MediumFrom < 0 || p.MediumFrom > p.StrongAbove:
		return fmt.Errorf("%w: medium %d above strong %d", ErrInvalidParams, p.MediumFrom, p.StrongAbove)
	case p.FallbackConfidence < 0 || p.FallbackConfidence > 1:
		return fmt.Errorf("%w: fallback confidence %g", ErrInvalidParams, p.FallbackConfidence)
	case p.MaxFrames <= 0:
		return fmt.Errorf("%w: max frames %d", ErrInvalidParams, p.MaxFrames)
	}
	return p.Fallback.Validate()
}
