package diagnostics

import (
	"errors"

	"github.com/coreman2200/arcaluminis-wiring/internal/convert"
	"github.com/coreman2200/arcaluminis-wiring/internal/detect"
	"github.com/coreman2200/arcaluminis-wiring/internal/pattern"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// FromDetection reports how much a detected wiring can be trusted.
func FromDetection(r detect.Result) Diagnostic {
	ev := map[string]any{
		"spec":       r.Spec.String(),
		"confidence": r.Confidence,
		"level":      r.Level.String(),
		"score":      r.Score,
		"signals":    r.Signals,
	}
	switch {
	case r.Fallback:
		return Diagnostic{
			Severity: Warn,
			Code:     "DETECT.FALLBACK",
			Summary:  "Wiring could not be detected; using the default " + r.Spec.String(),
			LikelyCauses: []string{
				"pattern has no corner markers or line structure",
				"first frames are blank or a single color",
			},
			SuggestedFixes: []string{
				"set wiring.mode and wiring.corner explicitly",
				"run the corner_markers calibration and check which corner lights red",
			},
			Evidence: ev,
		}
	case r.Level == detect.Strong || r.Hinted:
		return Diagnostic{Severity: Info, Code: "DETECT.OK", Summary: "Detected wiring " + r.Spec.String(), Evidence: ev}
	default:
		return Diagnostic{
			Severity:       Warn,
			Code:           "DETECT.UNSURE",
			Summary:        "Detected wiring " + r.Spec.String() + " with medium confidence",
			SuggestedFixes: []string{"verify the start corner on the preview before exporting"},
			Evidence:       ev,
		}
	}
}

var codes = []struct {
	err     error
	code    string
	summary string
}{
	{wiring.ErrInvalidDimension, "WIRING.INVALID_DIMENSION", "Matrix dimensions are invalid"},
	{wiring.ErrInvalidSpec, "WIRING.INVALID_SPEC", "Unknown wiring mode or corner"},
	{wiring.ErrDuplicateCoordinate, "WIRING.DUPLICATE_COORDINATE", "Ring layout uses a pixel twice"},
	{wiring.ErrLengthMismatch, "WIRING.LENGTH_MISMATCH", "Mapping table does not cover the matrix"},
	{wiring.ErrNonBijectiveMapping, "WIRING.NON_BIJECTIVE", "Mapping table is not a one-to-one mapping"},
	{detect.ErrInsufficientData, "DETECT.INSUFFICIENT_DATA", "Frame is smaller than the matrix"},
	{convert.ErrDimensionMismatch, "CONVERT.DIMENSION_MISMATCH", "Frame size does not match the matrix"},
	{pattern.ErrNoFrames, "PATTERN.NO_FRAMES", "Pattern has no frames"},
}

// FromError maps engine errors to coded diagnostics.
func FromError(err error) Diagnostic {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return Diagnostic{Severity: Err, Code: c.code, Summary: c.summary, Detail: err.Error()}
		}
	}
	return Diagnostic{Severity: Err, Code: "INTERNAL", Summary: "Unexpected error", Detail: err.Error()}
}
