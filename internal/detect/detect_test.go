package detect_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-wiring/internal/calib"
	. "github.com/coreman2200/arcaluminis-wiring/internal/detect"
	"github.com/coreman2200/arcaluminis-wiring/internal/pixel"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

func newDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := New(DefaultParams())
	require.NoError(t, err)
	return d
}

// wired returns the diagnostic grid as the controller would send it.
func wired(t *testing.T, dim wiring.Dim, s wiring.Spec) []pixel.RGB {
	t.Helper()
	b, err := wiring.Bind(wiring.MustGenerate(dim.W, dim.H, s), dim.Count())
	require.NoError(t, err)
	return calib.Encoded(b, dim, calib.DefaultMarkers)
}

func TestDetectEverySpec(t *testing.T) {
	d := newDetector(t)
	dims := []wiring.Dim{{W: 4, H: 4}, {W: 8, H: 8}, {W: 5, H: 7}, {W: 7, H: 5}, {W: 6, H: 4}, {W: 4, H: 9}, {W: 16, H: 16}}
	for _, dim := range dims {
		for _, s := range wiring.AllSpecs() {
			t.Run(fmt.Sprintf("%dx%d/%s", dim.W, dim.H, s), func(t *testing.T) {
				r, err := d.Detect(wired(t, dim, s), dim.W, dim.H)
				require.NoError(t, err)
				assert.Equal(t, s, r.Spec)
				assert.Equal(t, Strong, r.Level)
				assert.False(t, r.Fallback)
				assert.Greater(t, r.Confidence, 0.8)
			})
		}
	}
}

func TestDetectLongSides(t *testing.T) {
	d := newDetector(t)
	dims := []wiring.Dim{{W: 256, H: 8}, {W: 8, H: 256}, {W: 202, H: 4}, {W: 300, H: 100}}
	for _, dim := range dims {
		for _, s := range wiring.AllSpecs() {
			t.Run(fmt.Sprintf("%dx%d/%s", dim.W, dim.H, s), func(t *testing.T) {
				r, err := d.Detect(wired(t, dim, s), dim.W, dim.H)
				require.NoError(t, err)
				assert.Equal(t, s, r.Spec)
				assert.Equal(t, Strong, r.Level)
			})
		}
	}
}

func TestDetectFlatInteriorIsNotStrong(t *testing.T) {
	// markers on a flat interior: no line votes, so alignment adds nothing
	dim := wiring.Dim{W: 6, H: 6}
	buf := make([]pixel.RGB, dim.Count())
	for i := range buf {
		buf[i] = pixel.RGB{R: 100, G: 100, B: 100}
	}
	buf[0] = pixel.Red
	buf[5] = pixel.Green
	buf[dim.Count()-1] = pixel.Yellow
	r, err := newDetector(t).Detect(buf, dim.W, dim.H)
	require.NoError(t, err)
	assert.NotEqual(t, Strong, r.Level)
	assert.Equal(t, 10, r.Score)
}

func TestDetectColumnSerpentineBottomLeft(t *testing.T) {
	s := wiring.Spec{Mode: wiring.ColumnSerpentine, Corner: wiring.BottomLeft}
	r, err := newDetector(t).Detect(wired(t, wiring.Dim{W: 8, H: 8}, s), 8, 8)
	require.NoError(t, err)
	assert.Equal(t, s, r.Spec)
	assert.Greater(t, r.Confidence, 0.8)
	assert.Equal(t, 30, r.Score)
	assert.Equal(t, 10, r.Signals.Corner(wiring.BottomLeft))
	assert.Equal(t, 1.0, r.Signals.Columns.Ratio())
}

func TestDetectUniformFallsBack(t *testing.T) {
	buf := make([]pixel.RGB, 25)
	for i := range buf {
		buf[i] = pixel.RGB{R: 12, G: 34, B: 56}
	}
	r, err := newDetector(t).Detect(buf, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, Weak, r.Level)
	assert.True(t, r.Fallback)
	assert.Equal(t, wiring.DefaultSpec, r.Spec)
	assert.Equal(t, 0.6, r.Confidence)
}

func TestDetectThinMatrixFallsBack(t *testing.T) {
	buf := []pixel.RGB{pixel.Red, {R: 1}, {R: 2}, {R: 3}}
	d := newDetector(t)
	for _, dim := range []wiring.Dim{{W: 1, H: 4}, {W: 4, H: 1}} {
		r, err := d.Detect(buf, dim.W, dim.H)
		require.NoError(t, err)
		assert.Equal(t, Weak, r.Level)
		assert.Equal(t, wiring.DefaultSpec, r.Spec)
	}
}

func TestDetectWithoutMarkers(t *testing.T) {
	dim := wiring.Dim{W: 8, H: 8}
	// gradient only: every marker replaced by the color a gradient would have
	design := calib.MarkerFrame(dim, calib.Markers{
		{R: 40, G: 40, B: 60}, {R: 240, G: 40, B: 60}, {R: 40, G: 240, B: 60}, {R: 240, G: 240, B: 60},
	})
	table := wiring.MustGenerate(8, 8, wiring.Spec{Mode: wiring.RowSerpentine, Corner: wiring.TopLeft})
	buf := make([]pixel.RGB, len(design))
	for hw := range buf {
		buf[hw] = design[table.At(hw)]
	}
	r, err := newDetector(t).Detect(buf, 8, 8)
	require.NoError(t, err)
	assert.Equal(t, Medium, r.Level)
	assert.Equal(t, wiring.RowSerpentine, r.Spec.Mode)
	assert.False(t, r.Signals.Marker)
	assert.InDelta(t, 0.8, r.Confidence, 1e-9)
}

func TestDetectErrors(t *testing.T) {
	d := newDetector(t)
	_, err := d.Detect(make([]pixel.RGB, 15), 4, 4)
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = d.Detect(nil, 0, 4)
	assert.ErrorIs(t, err, wiring.ErrInvalidDimension)
	_, err = d.DetectFrames(nil, 4, 4)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestDetectFramesKeepsBest(t *testing.T) {
	dim := wiring.Dim{W: 6, H: 6}
	s := wiring.Spec{Mode: wiring.ColumnMajor, Corner: wiring.TopRight}
	blank := make([]pixel.RGB, dim.Count())
	frames := [][]pixel.RGB{blank, wired(t, dim, s), blank}

	r, err := newDetector(t).DetectFrames(frames, dim.W, dim.H)
	require.NoError(t, err)
	assert.Equal(t, s, r.Spec)
	assert.Equal(t, Strong, r.Level)

	// only the first MaxFrames are looked at
	p := DefaultParams()
	p.MaxFrames = 1
	d, err := New(p)
	require.NoError(t, err)
	r, err = d.DetectFrames(frames, dim.W, dim.H)
	require.NoError(t, err)
	assert.True(t, r.Fallback)

	_, err = d.DetectFrames([][]pixel.RGB{blank[:3]}, dim.W, dim.H)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestParamsValidate(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())

	bad := []func(*Params){
		func(p *Params) { p.SignalWeight = 0 },
		func(p *Params) { p.SimilarityCutoff = 1.5 },
		func(p *Params) { p.MediumFrom = 20 },
		func(p *Params) { p.FallbackConfidence = -0.1 },
		func(p *Params) { p.MaxFrames = 0 },
	}
	for i, f := range bad {
		p := DefaultParams()
		f(&p)
		_, err := New(p)
		assert.ErrorIs(t, err, ErrInvalidParams, "case %d", i)
	}
	p.Fallback.Mode = wiring.Mode(7)
	assert.ErrorIs(t, p.Validate(), wiring.ErrInvalidSpec)
}
