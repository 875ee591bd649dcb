package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-wiring/internal/convert"
	"github.com/coreman2200/arcaluminis-wiring/internal/detect"
	"github.com/coreman2200/arcaluminis-wiring/internal/led"
	"github.com/coreman2200/arcaluminis-wiring/internal/pattern"
	"github.com/coreman2200/arcaluminis-wiring/internal/pixel"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

// readSource splits a raw RGB file into frames of the configured matrix.
func (c *CLI) readSource(path string) (pattern.Source, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return pattern.Source{}, err
	}
	dim, ch := c.cfg.Dim(), c.cfg.Matrix.Channels
	size := dim.Count() * ch
	if len(b) == 0 || len(b)%size != 0 {
		return pattern.Source{}, fmt.Errorf("%s: %w: %d bytes is not a whole number of %dx%dx%d frames",
			path, convert.ErrDimensionMismatch, len(b), dim.W, dim.H, ch)
	}
	src := pattern.Source{Name: filepath.Base(path), Dim: dim, Channels: ch}
	for off := 0; off < len(b); off += size {
		src.Frames = append(src.Frames, b[off:off+size])
	}
	return src, nil
}

// guessLayout infers the matrix size of a raw file and applies it to the
// config. leds of 0 treats the whole file as one frame.
func (c *CLI) guessLayout(path string, leds int) (detect.Layout, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return detect.Layout{}, err
	}
	ch := c.cfg.Matrix.Channels
	if leds <= 0 {
		leds = len(b) / ch
	}
	if leds == 0 || len(b)%(leds*ch) != 0 {
		return detect.Layout{}, fmt.Errorf("%s: %w: %d bytes is not a whole number of %d-led frames",
			path, convert.ErrDimensionMismatch, len(b), leds)
	}
	first, err := pixel.FromBytes(b[:leds*ch], ch)
	if err != nil {
		return detect.Layout{}, err
	}
	l, err := detect.GuessLayout(leds, first)
	if err != nil {
		return detect.Layout{}, err
	}
	log.Info().Int("leds", leds).Int("width", l.Dim.W).Int("height", l.Dim.H).
		Float64("confidence", l.Confidence).Msg("guessed matrix size")
	c.cfg.Matrix.Width, c.cfg.Matrix.Height = l.Dim.W, l.Dim.H
	return l, nil
}

func isProject(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func (c *CLI) detector() (*detect.Detector, error) {
	p, err := c.cfg.DetectParams()
	if err != nil {
		return nil, err
	}
	return detect.New(p)
}

// parseSpecFlag returns nil for "" and "auto", falling back to the config.
func (c *CLI) parseSpecFlag(s string) (*wiring.Spec, error) {
	if s == "" || s == "auto" {
		return c.cfg.WiringOverride()
	}
	spec, err := wiring.ParseSpec(s)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// maskedCoords reads a text mask and orders its cells along spec.
func (c *CLI) maskedCoords(path string, spec wiring.Spec) ([]wiring.Coord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	active, err := wiring.ParseMask(c.cfg.Dim(), string(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wiring.MaskedCoords(c.cfg.Dim(), spec, active)
}

// loadPattern opens a project file or decodes a raw file.
func (c *CLI) loadPattern(path, specFlag string) (*pattern.Pattern, *detect.Result, error) {
	if isProject(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		p, err := pattern.Read(f)
		return p, nil, err
	}
	src, err := c.readSource(path)
	if err != nil {
		return nil, nil, err
	}
	spec, err := c.parseSpecFlag(specFlag)
	if err != nil {
		return nil, nil, err
	}
	det, err := c.detector()
	if err != nil {
		return nil, nil, err
	}
	return pattern.Load(src, spec, det)
}

func writeFrames(path string, frames [][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	for _, fr := range frames {
		if _, err := f.Write(fr); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

// openDriver picks the configured output, limited to the configured power
// budget; a failing SPI port falls back to SIM.
func (c *CLI) openDriver(leds int) (led.Driver, string) {
	drv, name := c.rawDriver(leds)
	return led.Limit(drv, c.cfg.Output.Budget), name
}

func (c *CLI) rawDriver(leds int) (led.Driver, string) {
	out := c.cfg.Output
	switch out.Driver {
	case "sim", "":
		return led.NewSim(0), "sim"
	case "spi":
		order, err := led.ParseColorOrder(out.ColorOrder)
		if err != nil {
			log.Warn().Err(err).Msg("bad color order; using RGB")
			order = led.RGB
		}
		drv, err := led.OpenSPI(out.SPI.Port, led.NRZOpts{
			NumPixels:  leds,
			SpeedHz:    out.SPI.SpeedHz,
			Order:      order,
			Brightness: out.Brightness,
		})
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "spi").
				Str("port", out.SPI.Port).
				Int("speed_hz", out.SPI.SpeedHz).
				Msg("SPI init failed; falling back to SIM")
			return led.NewSim(0), "sim"
		}
		return drv, "spi"
	default:
		log.Warn().Str("driver", out.Driver).Msg("unknown driver; using SIM")
		return led.NewSim(0), "sim"
	}
}
