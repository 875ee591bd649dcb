package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-wiring/internal/pixel"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

func TestTied(t *testing.T) {
	assert.True(t, tied([4]int{15, 15, 5, 0}, 0))
	assert.True(t, tied([4]int{5, 0, 0, 5}, 3))
	assert.False(t, tied([4]int{15, 10, 5, 0}, 0))
}

func TestStrongNeedsAnUntiedMode(t *testing.T) {
	p := DefaultParams()
	d, err := New(p)
	require.NoError(t, err)

	// a plain ramp in hardware order splits the votes of both families
	// evenly, so RowMajor and ColumnMajor both get the bias weight
	dim := wiring.Dim{W: 4, H: 4}
	buf := make([]pixel.RGB, dim.Count())
	for i := range buf {
		buf[i] = pixel.RGB{R: uint8(40 + 10*i), B: 60}
	}
	buf[0] = p.Markers.Of(wiring.TopLeft)

	r, err := d.Detect(buf, dim.W, dim.H)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Signals.Mode(wiring.RowMajor))
	assert.Equal(t, 5, r.Signals.Mode(wiring.ColumnMajor))
	assert.Equal(t, 15, r.Score)
	assert.Equal(t, Medium, r.Level)
	assert.Equal(t, 0.65, r.Confidence)
}
