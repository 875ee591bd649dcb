package detect

import (
	"errors"
	"fmt"

	"github.com/coreman2200/arcaluminis-wiring/internal/pixel"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

// ErrInsufficientData is returned when a buffer does not cover the matrix.
var ErrInsufficientData = errors.New("detect: insufficient data")

// Detector guesses the wiring of hardware-order frames.
type Detector struct {
	p Params
}

func New(p Params) (*Detector, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Detector{p: p}, nil
}

func (d *Detector) Params() Params { return d.p }

// Detect scores corner, serpentine and alignment signals of one
// hardware-order frame. It never fails on ambiguous content: a Weak result
// carries the fallback spec instead.
//
// The start corner is read from the first sample against the marker palette,
// not from the corner pixels of the reshaped grid: the first sample is
// always at the top-left of the reshaped grid whatever the wiring.
func (d *Detector) Detect(buf []pixel.RGB, w, h int) (Result, error) {
	if w <= 0 || h <= 0 {
		return Result{}, fmt.Errorf("%w: %dx%d", wiring.ErrInvalidDimension, w, h)
	}
	if len(buf) != w*h {
		return Result{}, fmt.Errorf("%w: have %d samples, need %d", ErrInsufficientData, len(buf), w*h)
	}
	if w < 2 || h < 2 || pixel.Uniform(buf) {
		return d.fallback(Signals{}), nil
	}

	var sig Signals
	sw := d.p.SignalWeight

	corner, found := d.p.Markers.Lookup(buf[0])
	if found {
		sig.Marker = true
		sig.Corners[corner] += sw
	}

	sig.Rows = lineVotes(buf, w, h)
	sig.Columns = lineVotes(buf, h, w)
	d.scoreLines(&sig, sig.Rows, wiring.RowSerpentine, wiring.RowMajor)
	d.scoreLines(&sig, sig.Columns, wiring.ColumnSerpentine, wiring.ColumnMajor)

	// the first line ends on the neighbouring corner's marker; it only
	// backs a family whose lines voted
	if found {
		if sig.Rows.Total() > 0 && buf[w-1] == d.p.Markers.Of(corner.Horizontal()) {
			sig.Modes[wiring.RowMajor] += sw
			sig.Modes[wiring.RowSerpentine] += sw
		}
		if sig.Columns.Total() > 0 && buf[h-1] == d.p.Markers.Of(corner.Vertical()) {
			sig.Modes[wiring.ColumnMajor] += sw
			sig.Modes[wiring.ColumnSerpentine] += sw
		}
	}

	spec := wiring.Spec{
		Mode:   wiring.Mode(argmax(sig.Modes, int(d.p.Fallback.Mode))),
		Corner: wiring.Corner(argmax(sig.Corners, int(d.p.Fallback.Corner))),
	}
	score := sig.Corners[spec.Corner] + sig.Modes[spec.Mode]

	switch {
	case score > d.p.StrongAbove && tied(sig.Modes, int(spec.Mode)):
		// another mode scored the same; the score alone is not proof
		return Result{Spec: spec, Confidence: 0.65, Level: Medium, Score: score, Signals: sig}, nil
	case score > d.p.StrongAbove:
		top := 3 * sw
		conf := 1.0
		if top > d.p.StrongAbove {
			conf = 0.8 + 0.2*clamp01(float64(score-d.p.StrongAbove)/float64(top-d.p.StrongAbove))
		}
		return Result{Spec: spec, Confidence: conf, Level: Strong, Score: score, Signals: sig}, nil
	case score >= d.p.MediumFrom:
		conf := 0.8
		if d.p.StrongAbove > d.p.MediumFrom {
			conf = 0.65 + 0.15*float64(score-d.p.MediumFrom)/float64(d.p.StrongAbove-d.p.MediumFrom)
		}
		return Result{Spec: spec, Confidence: conf, Level: Medium, Score: score, Signals: sig}, nil
	}
	r := d.fallback(sig)
	r.Score = score
	return r, nil
}

// DetectFrames runs Detect over the first MaxFrames frames and keeps the
// highest score.
func (d *Detector) DetectFrames(frames [][]pixel.RGB, w, h int) (Result, error) {
	if len(frames) == 0 {
		return Result{}, fmt.Errorf("%w: no frames", ErrInsufficientData)
	}
	var best Result
	for i, f := range frames[:min(len(frames), d.p.MaxFrames)] {
		r, err := d.Detect(f, w, h)
		if err != nil {
			return Result{}, fmt.Errorf("frame %d: %w", i, err)
		}
		if i == 0 || r.Score > best.Score {
			best = r
		}
	}
	return best, nil
}

func (d *Detector) fallback(sig Signals) Result {
	return Result{
		Spec:       d.p.Fallback,
		Confidence: d.p.FallbackConfidence,
		Level:      Weak,
		Fallback:   true,
		Signals:    sig,
	}
}

func (d *Detector) scoreLines(sig *Signals, v Votes, serpentine, straight wiring.Mode) {
	if v.Total() == 0 {
		return
	}
	if v.Ratio() >= d.p.SimilarityCutoff {
		sig.Modes[serpentine] += d.p.SignalWeight
		return
	}
	sig.Modes[straight] += d.p.BiasWeight
}

// lineVotes reshapes buf into count lines of n samples and asks, for each
// sample of a line, whether it resembles the same position of the previous
// line or the mirrored one. The four corner cells hold markers and are
// left out.
func lineVotes(buf []pixel.RGB, n, count int) Votes {
	last := count*n - 1
	reserved := func(i int) bool {
		return i == 0 || i == n-1 || i == last-n+1 || i == last
	}
	var v Votes
	for k := 0; k+1 < count; k++ {
		for i := 0; i < n; i++ {
			a, f, r := (k+1)*n+i, k*n+i, k*n+n-1-i
			if reserved(a) || reserved(f) || reserved(r) {
				continue
			}
			df, dr := pixel.Dist(buf[a], buf[f]), pixel.Dist(buf[a], buf[r])
			switch {
			case dr < df:
				v.Reversed++
			case df < dr:
				v.Forward++
			}
		}
	}
	return v
}

// argmax returns the index of the largest score; pref wins ties.
func argmax(scores [4]int, pref int) int {
	best := pref
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best
}

// tied reports whether a mode other than best has the same score.
func tied(scores [4]int, best int) bool {
	for i, s := range scores {
		if i != best && s == scores[best] {
			return true
		}
	}
	return false
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
