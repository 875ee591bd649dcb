package detect

import (
	"fmt"
	"math"
	"slices"

	"github.com/coreman2200/arcaluminis-wiring/internal/pixel"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

// Layout is a candidate matrix size for a bare LED count.
type Layout struct {
	Dim        wiring.Dim `json:"dim"`
	Confidence float64    `json:"confidence"`
}

// Strip reports a single-line layout.
func (l Layout) Strip() bool { return l.Dim.H == 1 }

// sizes seen on shipping panels, width x height
var commonLayouts = map[wiring.Dim]bool{
	{W: 8, H: 8}: true, {W: 12, H: 6}: true, {W: 15, H: 6}: true, {W: 12, H: 8}: true,
	{W: 12, H: 12}: true, {W: 16, H: 8}: true, {W: 16, H: 9}: true, {W: 16, H: 10}: true,
	{W: 16, H: 16}: true, {W: 20, H: 10}: true, {W: 20, H: 12}: true, {W: 24, H: 12}: true,
	{W: 24, H: 16}: true, {W: 17, H: 5}: true, {W: 32, H: 8}: true, {W: 32, H: 12}: true,
	{W: 32, H: 16}: true, {W: 32, H: 32}: true, {W: 40, H: 6}: true, {W: 40, H: 10}: true,
	{W: 48, H: 12}: true, {W: 48, H: 24}: true, {W: 64, H: 16}: true, {W: 64, H: 32}: true,
}

var preferredAspects = []float64{1, 16.0 / 9, 4.0 / 3, 3.0 / 2, 2, 8.0 / 3, 3, 4}

// Layouts ranks every width x height factorisation of count, widest side
// first, best first. When first holds count samples, a frame whose large
// color jumps fall on line wraps lifts the matching width.
func Layouts(count int, first []pixel.RGB) ([]Layout, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: %d leds", wiring.ErrInvalidDimension, count)
	}
	if len(first) != count {
		first = nil
	}
	var out []Layout
	// squarer candidates first so that equal scores keep them ahead
	for h := int(math.Sqrt(float64(count))); h >= 1; h-- {
		if count%h != 0 {
			continue
		}
		d := wiring.Dim{W: count / h, H: h}
		score := layoutScore(d) + wrapBonus(first, d.W)
		out = append(out, Layout{Dim: d, Confidence: min(0.99, max(0.05, score))})
	}
	slices.SortStableFunc(out, func(a, b Layout) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return 0
	})
	return out, nil
}

// GuessLayout returns the best of Layouts.
func GuessLayout(count int, first []pixel.RGB) (Layout, error) {
	ls, err := Layouts(count, first)
	if err != nil {
		return Layout{}, err
	}
	return ls[0], nil
}

func layoutScore(d wiring.Dim) float64 {
	aspect := float64(d.W) / float64(d.H)
	score := 0.25
	if commonLayouts[d] {
		score += 0.25
	}
	bonus := 0.0
	for _, p := range preferredAspects {
		switch diff := math.Abs(aspect-p) / p; {
		case diff <= 0.05:
			bonus = max(bonus, 0.22)
		case diff <= 0.12:
			bonus = max(bonus, 0.18)
		case diff <= 0.20:
			bonus = max(bonus, 0.12)
		}
	}
	score += bonus
	if d.W%2 == 0 && d.H%2 == 0 {
		score += 0.05
	}
	if aspect > 6 {
		score -= 0.05
	}
	return min(0.95, max(0.05, score))
}

// wrapBonus compares color jumps across line wraps with those inside lines.
func wrapBonus(frame []pixel.RGB, w int) float64 {
	if w <= 1 || len(frame) < w+1 {
		return 0
	}
	var inline, wrap, ni, nw float64
	for i := 0; i+1 < len(frame); i++ {
		d := float64(pixel.Dist(frame[i], frame[i+1]))
		if (i+1)%w == 0 {
			wrap, nw = wrap+d, nw+1
		} else {
			inline, ni = inline+d, ni+1
		}
	}
	if ni == 0 || nw == 0 {
		return 0
	}
	avgInline, avgWrap := inline/ni, wrap/nw
	if avgWrap <= avgInline {
		return 0
	}
	return min(0.2, (avgWrap-avgInline)/(avgInline+1e-6)*0.1)
}
