package detect

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

// Hint is wiring information recovered from a file name.
type Hint struct {
	Mode       wiring.Mode
	HasMode    bool
	Corner     wiring.Corner
	HasCorner  bool
	Confidence float64
}

func (h Hint) Empty() bool { return !h.HasMode && !h.HasCorner }

type modeRule struct {
	re   *regexp.Regexp
	mode wiring.Mode
	conf float64
}

type cornerRule struct {
	re     *regexp.Regexp
	corner wiring.Corner
}

var (
	explicitModes = []modeRule{
		{regexp.MustCompile(`\brow\s?major\b`), wiring.RowMajor, 0.9},
		{regexp.MustCompile(`\bcolumn\s?major\b`), wiring.ColumnMajor, 0.9},
		{regexp.MustCompile(`\bcolumn\s?serpentine\b`), wiring.ColumnSerpentine, 0.9},
		{regexp.MustCompile(`\brow\s?serpentine\b`), wiring.RowSerpentine, 0.9},
		{regexp.MustCompile(`\bserpentine\b`), wiring.RowSerpentine, 0.9},
	}
	alternateUpDown = regexp.MustCompile(`\balternate.*(?:up.*down|down.*up)\b`)
	zigzag          = regexp.MustCompile(`\b(?:zigzag|snake)\b`)
	upThenDown      = regexp.MustCompile(`\bup.*down\b|\bdown.*up\b`)

	explicitCorners = []cornerRule{
		{regexp.MustCompile(`\b(?:left|lt)\s?(?:top|upper)\b`), wiring.TopLeft},
		{regexp.MustCompile(`\b(?:left|lt)\s?(?:bottom|lower|down)\b`), wiring.BottomLeft},
		{regexp.MustCompile(`\b(?:right|rt)\s?(?:top|upper)\b`), wiring.TopRight},
		{regexp.MustCompile(`\b(?:right|rt)\s?(?:bottom|lower|down)\b`), wiring.BottomRight},
		{regexp.MustCompile(`\btop\s?(?:left|lt)\b`), wiring.TopLeft},
		{regexp.MustCompile(`\btop\s?(?:right|rt)\b`), wiring.TopRight},
		{regexp.MustCompile(`\bbottom\s?(?:left|lt)\b`), wiring.BottomLeft},
		{regexp.MustCompile(`\bbottom\s?(?:right|rt)\b`), wiring.BottomRight},
	}
	separators = regexp.MustCompile(`[_\-]+`)
)

// FromFilename extracts wiring hints such as "serpentine left top" or
// "alternate up down" from a file name. Explicit keywords give 0.9,
// descriptive ones less.
func FromFilename(name string) Hint {
	base := strings.ToLower(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	s := separators.ReplaceAllString(base, " ")

	var h Hint
	for _, r := range explicitModes {
		if r.re.MatchString(s) {
			h.Mode, h.HasMode, h.Confidence = r.mode, true, r.conf
			break
		}
	}
	if !h.HasMode {
		switch {
		case alternateUpDown.MatchString(s):
			h.Mode, h.HasMode, h.Confidence = wiring.ColumnSerpentine, true, 0.85
		case zigzag.MatchString(s):
			h.Mode, h.HasMode, h.Confidence = wiring.ColumnSerpentine, true, 0.65
		}
	}

	for _, r := range explicitCorners {
		if r.re.MatchString(s) {
			h.Corner, h.HasCorner = r.corner, true
			h.Confidence = max(h.Confidence, 0.9)
			break
		}
	}
	if !h.HasCorner {
		if c, ok := looseCorner(s); ok {
			h.Corner, h.HasCorner = c, true
			h.Confidence = max(h.Confidence, 0.6)
		}
	}

	// "down up" starts at the bottom, "up down" at the top
	if h.HasMode && h.Mode == wiring.ColumnSerpentine && !h.HasCorner && upThenDown.MatchString(s) {
		switch {
		case strings.Contains(s, "down up"):
			h.Corner, h.HasCorner = wiring.BottomLeft, true
			h.Confidence = max(h.Confidence, 0.7)
		case strings.Contains(s, "up down"):
			h.Corner, h.HasCorner = wiring.TopLeft, true
			h.Confidence = max(h.Confidence, 0.7)
		}
	}
	return h
}

func looseCorner(s string) (wiring.Corner, bool) {
	top := strings.Contains(s, "top") || strings.Contains(s, "up")
	bottom := strings.Contains(s, "bottom") || strings.Contains(s, "lower") || strings.Contains(s, "down")
	switch {
	case strings.Contains(s, "left") && top:
		return wiring.TopLeft, true
	case strings.Contains(s, "left") && bottom:
		return wiring.BottomLeft, true
	case strings.Contains(s, "right") && top:
		return wiring.TopRight, true
	case strings.Contains(s, "right") && bottom:
		return wiring.BottomRight, true
	}
	return 0, false
}

// WithHint lets a confident file name hint override a detection result.
func (d *Detector) WithHint(r Result, h Hint) Result {
	if h.Empty() || h.Confidence < d.p.HintOverride {
		return r
	}
	if h.HasMode {
		r.Spec.Mode = h.Mode
	}
	if h.HasCorner {
		r.Spec.Corner = h.Corner
	}
	r.Hinted = true
	r.Fallback = false
	r.Confidence = max(r.Confidence, h.Confidence)
	return r
}
