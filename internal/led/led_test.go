package led

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"
)

func TestColorOrder(t *testing.T) {
	grb, err := ParseColorOrder("grb")
	require.NoError(t, err)
	assert.Equal(t, "GRB", grb.String())
	assert.Equal(t, []byte{2, 1, 3, 5, 4, 6}, grb.Reorder([]byte{1, 2, 3, 4, 5, 6}, 1))
	assert.Equal(t, []byte{50, 100, 0}, RGB.Reorder([]byte{100, 200, 0}, 0.5))

	o, err := ParseColorOrder("")
	require.NoError(t, err)
	assert.Equal(t, RGB, o)

	_, err = ParseColorOrder("RRB")
	assert.Error(t, err)
}

func TestSim(t *testing.T) {
	s := NewSim(2)
	require.NoError(t, s.Write([]byte{1, 2, 3}))
	require.NoError(t, s.Write([]byte{4, 5, 6}))
	require.NoError(t, s.Write([]byte{7, 8, 9}))
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, [][]byte{{4, 5, 6}, {7, 8, 9}}, s.Frames())

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Write([]byte{0, 0, 0}), ErrClosed)
}

func TestNRZ(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := NewNRZ(spitest.NewRecordRaw(&buf), NRZOpts{NumPixels: 4})
	require.NoError(t, err)
	assert.Equal(t, "nrzled{recordraw}", d.String())

	require.NoError(t, d.Write(make([]byte, 12)))
	assert.NotZero(t, buf.Len())

	assert.ErrorIs(t, d.Write(make([]byte, 9)), ErrFrameLength)
	require.NoError(t, d.Close())
	assert.ErrorIs(t, d.Write(make([]byte, 12)), ErrClosed)

	_, err = NewNRZ(spitest.NewRecordRaw(&buf), NRZOpts{})
	assert.Error(t, err)
}

type frames [][]byte

func (f frames) Len() int                            { return len(f) }
func (f frames) HardwareFrame(i int) ([]byte, error) { return f[i], nil }

func TestPlayerStopsAtEnd(t *testing.T) {
	s := NewSim(10)
	src := frames{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}}
	require.NoError(t, NewPlayer(s, 1000, false).Play(context.Background(), src))
	assert.Equal(t, [][]byte(src), s.Frames())
}

func TestPlayerLoopsUntilCancelled(t *testing.T) {
	s := NewSim(0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := NewPlayer(s, 1000, true).Play(ctx, frames{{1, 1, 1}, {2, 2, 2}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, s.Count(), 2)
}

func TestBudgetLimitsCurrent(t *testing.T) {
	rgb := bytes.Repeat([]byte{255}, 10*3)
	b := Budget{ChannelMA: 20, LimitMA: 300}
	assert.InDelta(t, 600, b.Current(rgb), 0.01)

	b.Apply(rgb)
	assert.LessOrEqual(t, b.Current(rgb), 300.0)
	assert.Greater(t, b.Current(rgb), 280.0)
}

func TestBudgetKnee(t *testing.T) {
	// 100 mA against a 105 mA budget sits past the 0.9 knee
	rgb := []byte{255, 255, 255, 255, 255, 0}
	b := Budget{ChannelMA: 20, LimitMA: 105, Knee: 0.9}
	b.Apply(rgb)
	assert.Less(t, b.Current(rgb), 100.0)
	assert.LessOrEqual(t, b.Current(rgb), 105.0)

	under := []byte{100, 0, 0}
	Budget{LimitMA: 1000}.Apply(under)
	assert.Equal(t, []byte{100, 0, 0}, under)
}

func TestBudgetWhiteCap(t *testing.T) {
	rgb := []byte{255, 255, 255, 255, 0, 0}
	Budget{WhiteCap: 1.5}.Apply(rgb)
	assert.LessOrEqual(t, int(rgb[0])+int(rgb[1])+int(rgb[2]), 383)
	assert.Equal(t, []byte{255, 0, 0}, rgb[3:])
}

func TestLimitDoesNotTouchInput(t *testing.T) {
	s := NewSim(1)
	d := Limit(s, Budget{WhiteCap: 1})
	in := []byte{255, 255, 255}
	require.NoError(t, d.Write(in))
	assert.Equal(t, []byte{255, 255, 255}, in)
	out := s.Frames()[0]
	assert.LessOrEqual(t, int(out[0])+int(out[1])+int(out[2]), 255)
	assert.Greater(t, int(out[0]), 80)
	require.NoError(t, d.Close())
}
