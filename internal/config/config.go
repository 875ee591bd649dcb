package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/arcaluminis-wiring/internal/calib"
	"github.com/coreman2200/arcaluminis-wiring/internal/convert"
	"github.com/coreman2200/arcaluminis-wiring/internal/detect"
	"github.com/coreman2200/arcaluminis-wiring/internal/led"
	"github.com/coreman2200/arcaluminis-wiring/internal/pixel"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

var ErrInvalid = errors.New("config: invalid")

type Matrix struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	Channels int `yaml:"channels"`
}

// Wiring pins the matrix wiring. An empty mode means auto-detect.
type Wiring struct {
	Mode   string `yaml:"mode,omitempty"`   // e.g. row-serpentine
	Corner string `yaml:"corner,omitempty"` // e.g. top-left
	FlipX  bool   `yaml:"flip_x"`
	FlipY  bool   `yaml:"flip_y"`
}

type Detection struct {
	SignalWeight       int      `yaml:"signal_weight"`
	BiasWeight         int      `yaml:"bias_weight"`
	SimilarityCutoff   float64  `yaml:"similarity_cutoff"`
	StrongAbove        int      `yaml:"strong_above"`
	MediumFrom         int      `yaml:"medium_from"`
	FallbackConfidence float64  `yaml:"fallback_confidence"`
	HintOverride       float64  `yaml:"hint_override"`
	MaxFrames          int      `yaml:"max_frames"`
	Markers            []string `yaml:"markers"` // tl, tr, bl, br as #rrggbb
}

type SPI struct {
	Port    string `yaml:"port"`     // e.g. /dev/spidev0.0, empty for the first port
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2400000
}

type Output struct {
	Driver     string  `yaml:"driver"` // "spi" | "sim"
	ColorOrder string  `yaml:"color_order"`
	Brightness float64 `yaml:"brightness"`
	FPS        int     `yaml:"fps"`
	SPI        SPI     `yaml:"spi,omitempty"`

	Budget led.Budget `yaml:"budget"`
}

type Preview struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Matrix    Matrix    `yaml:"matrix"`
	Wiring    Wiring    `yaml:"wiring"`
	Detection Detection `yaml:"detection"`
	Output    Output    `yaml:"output"`
	Preview   Preview   `yaml:"preview"`
}

func Default() *Config {
	p := detect.DefaultParams()
	markers := make([]string, len(p.Markers))
	for i, m := range p.Markers {
		markers[i] = m.String()
	}
	return &Config{
		Matrix: Matrix{Width: 16, Height: 16, Channels: 3},
		Detection: Detection{
			SignalWeight:       p.SignalWeight,
			BiasWeight:         p.BiasWeight,
			SimilarityCutoff:   p.SimilarityCutoff,
			StrongAbove:        p.StrongAbove,
			MediumFrom:         p.MediumFrom,
			FallbackConfidence: p.FallbackConfidence,
			HintOverride:       p.HintOverride,
			MaxFrames:          p.MaxFrames,
			Markers:            markers,
		},
		Output: Output{
			Driver:     "sim",
			ColorOrder: "RGB",
			Brightness: 1,
			FPS:        30,
			SPI:        SPI{SpeedHz: 2400000},
			Budget:     led.DefaultBudget,
		},
		Preview: Preview{Addr: ":8080"},
	}
}

// Load reads path over the defaults; keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Dim() wiring.Dim { return wiring.Dim{W: c.Matrix.Width, H: c.Matrix.Height} }

func (c *Config) Flips() convert.Flips { return convert.Flips{X: c.Wiring.FlipX, Y: c.Wiring.FlipY} }

// WiringOverride returns the pinned spec, or nil when the wiring should be
// detected. A corner without a mode is rejected.
func (c *Config) WiringOverride() (*wiring.Spec, error) {
	if c.Wiring.Mode == "" {
		if c.Wiring.Corner != "" {
			return nil, fmt.Errorf("%w: wiring.corner %q set without wiring.mode", ErrInvalid, c.Wiring.Corner)
		}
		return nil, nil
	}
	m, err := wiring.ParseMode(c.Wiring.Mode)
	if err != nil {
		return nil, err
	}
	s := wiring.Spec{Mode: m, Corner: wiring.DefaultSpec.Corner}
	if c.Wiring.Corner != "" {
		if s.Corner, err = wiring.ParseCorner(c.Wiring.Corner); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func (c *Config) DetectParams() (detect.Params, error) {
	d := c.Detection
	p := detect.DefaultParams()
	p.SignalWeight = d.SignalWeight
	p.BiasWeight = d.BiasWeight
	p.SimilarityCutoff = d.SimilarityCutoff
	p.StrongAbove = d.StrongAbove
	p.MediumFrom = d.MediumFrom
	p.FallbackConfidence = d.FallbackConfidence
	p.HintOverride = d.HintOverride
	p.MaxFrames = d.MaxFrames
	if len(d.Markers) > 0 {
		m, err := parseMarkers(d.Markers)
		if err != nil {
			return detect.Params{}, err
		}
		p.Markers = m
	}
	return p, p.Validate()
}

func (c *Config) Validate() error {
	if !c.Dim().Valid() {
		return fmt.Errorf("%w: matrix %dx%d: %w", ErrInvalid, c.Matrix.Width, c.Matrix.Height, wiring.ErrInvalidDimension)
	}
	if c.Matrix.Channels < 3 {
		return fmt.Errorf("%w: %d channels", ErrInvalid, c.Matrix.Channels)
	}
	if b := c.Output.Budget; b.LimitMA < 0 || b.WhiteCap < 0 || b.ChannelMA < 0 {
		return fmt.Errorf("%w: negative power budget", ErrInvalid)
	}
	if _, err := c.WiringOverride(); err != nil {
		return err
	}
	_, err := c.DetectParams()
	return err
}

func parseMarkers(in []string) (calib.Markers, error) {
	var m calib.Markers
	if len(in) != len(m) {
		return m, fmt.Errorf("%w: want %d markers, have %d", ErrInvalid, len(m), len(in))
	}
	for i, s := range in {
		v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 24)
		if err != nil {
			return m, fmt.Errorf("%w: marker %q: %v", ErrInvalid, s, err)
		}
		m[i] = pixel.Unpack(uint32(v))
	}
	return m, nil
}
