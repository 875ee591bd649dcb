package diagnostics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/arcaluminis-wiring/internal/convert"
	"github.com/coreman2200/arcaluminis-wiring/internal/detect"
	"github.com/coreman2200/arcaluminis-wiring/internal/pattern"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

func TestFromDetection(t *testing.T) {
	d := FromDetection(detect.Result{Spec: wiring.DefaultSpec, Confidence: 0.6, Level: detect.Weak, Fallback: true})
	assert.Equal(t, Warn, d.Severity)
	assert.Equal(t, "DETECT.FALLBACK", d.Code)
	assert.Equal(t, 0.6, d.Evidence["confidence"])

	d = FromDetection(detect.Result{Spec: wiring.DefaultSpec, Confidence: 0.95, Level: detect.Strong})
	assert.Equal(t, Info, d.Severity)

	d = FromDetection(detect.Result{Spec: wiring.DefaultSpec, Confidence: 0.7, Level: detect.Medium})
	assert.Equal(t, "DETECT.UNSURE", d.Code)
}

func TestFromError(t *testing.T) {
	err := fmt.Errorf("frame 2: %w", fmt.Errorf("%w: 11 bytes", convert.ErrDimensionMismatch))
	d := FromError(err)
	assert.Equal(t, Err, d.Severity)
	assert.Equal(t, "CONVERT.DIMENSION_MISMATCH", d.Code)
	assert.Contains(t, d.Detail, "frame 2")

	assert.Equal(t, "WIRING.NON_BIJECTIVE", FromError(wiring.Validate(wiring.NewMappingTable([]int{0, 0}), 2)).Code)
	_, err = pattern.New("empty", wiring.Dim{W: 2, H: 2}, 3, wiring.Spec{}, nil)
	assert.Equal(t, "PATTERN.NO_FRAMES", FromError(err).Code)
	assert.Equal(t, "INTERNAL", FromError(fmt.Errorf("boom")).Code)
}
