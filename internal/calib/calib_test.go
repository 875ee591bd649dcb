package calib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-wiring/internal/pixel"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

func bind(t *testing.T, dim wiring.Dim, s wiring.Spec) *wiring.Binding {
	t.Helper()
	b, err := wiring.Bind(wiring.MustGenerate(dim.W, dim.H, s), dim.Count())
	require.NoError(t, err)
	return b
}

func TestMarkerFrameCorners(t *testing.T) {
	dim := wiring.Dim{W: 5, H: 4}
	f := MarkerFrame(dim, DefaultMarkers)
	require.Len(t, f, 20)
	assert.Equal(t, pixel.Red, f[0])
	assert.Equal(t, pixel.Green, f[4])
	assert.Equal(t, pixel.Blue, f[15])
	assert.Equal(t, pixel.Yellow, f[19])

	// interior is a gradient: R grows with x, G with y
	assert.Equal(t, pixel.RGB{R: 90, G: 106, B: 60}, f[dim.Index(1, 1)])
	assert.Equal(t, pixel.RGB{R: 190, G: 173, B: 60}, f[dim.Index(3, 2)])
	for i, c := range f {
		if _, ok := DefaultMarkers.Lookup(c); ok {
			continue
		}
		assert.EqualValues(t, 60, c.B, "pixel %d", i)
	}
}

func TestMarkerFrameLongSides(t *testing.T) {
	wide := MarkerFrame(wiring.Dim{W: 256, H: 8}, DefaultMarkers)
	assert.EqualValues(t, 40, wide[256].R)
	assert.EqualValues(t, 140, wide[256+128].R)
	assert.EqualValues(t, 239, wide[256+254].R)

	tall := MarkerFrame(wiring.Dim{W: 8, H: 256}, DefaultMarkers)
	assert.EqualValues(t, 140, tall[128*8+1].G)
	assert.EqualValues(t, 239, tall[254*8+1].G)
}

func TestMarkerLookup(t *testing.T) {
	c, ok := DefaultMarkers.Lookup(pixel.Yellow)
	assert.True(t, ok)
	assert.Equal(t, wiring.BottomRight, c)
	_, ok = DefaultMarkers.Lookup(pixel.White)
	assert.False(t, ok)
}

func TestIndexSweep(t *testing.T) {
	dim := wiring.Dim{W: 3, H: 2}
	b := bind(t, dim, wiring.DefaultSpec)
	frames := NewRunner(Plan{Kind: IndexSweep}).Frames(b, dim)
	require.Len(t, frames, 6)
	for i, f := range frames {
		for led := 0; led < 6; led++ {
			want := byte(0)
			if led == i {
				want = 255
			}
			assert.Equal(t, want, f[led*3], "frame %d led %d", i, led)
		}
	}
}

func TestRGBChannels(t *testing.T) {
	dim := wiring.Dim{W: 2, H: 2}
	frames := NewRunner(Plan{Kind: RGBChannels}).Frames(bind(t, dim, wiring.DefaultSpec), dim)
	require.Len(t, frames, 3)
	assert.Equal(t, []byte{0, 255, 0}, frames[1][:3])
}

func TestCornerMarksFollowWiring(t *testing.T) {
	dim := wiring.Dim{W: 4, H: 4}
	spec := wiring.Spec{Mode: wiring.ColumnMajor, Corner: wiring.BottomRight}
	frames := NewRunner(Plan{Kind: CornerMarks}).Frames(bind(t, dim, spec), dim)
	require.Len(t, frames, 1)
	// first LED sits on the bottom-right corner, the fourth on top-right
	assert.Equal(t, []byte{255, 255, 0}, frames[0][0:3])
	assert.Equal(t, []byte{0, 255, 0}, frames[0][9:12])
}

func TestUnknownKind(t *testing.T) {
	_, ok := ParseKind("plane_z")
	assert.False(t, ok)
	k, ok := ParseKind("index_sweep")
	assert.True(t, ok)
	assert.Equal(t, IndexSweep, k)
}
