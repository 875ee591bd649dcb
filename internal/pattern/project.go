package pattern

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

const Version = "pattern.v1"

var ErrProject = errors.New("pattern: bad project file")

type ringFile struct {
	Coords []wiring.Coord `yaml:"coords"`
	// Table is stored so that a hand-edited LED order survives; it is
	// validated on load, never regenerated.
	Table []int `yaml:"table"`
}

type projectFile struct {
	Version  string       `yaml:"version"`
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name,omitempty"`
	Matrix   wiring.Dim   `yaml:"matrix"`
	Channels int          `yaml:"channels"`
	Wiring   *wiring.Spec `yaml:"wiring,omitempty"`
	Ring     *ringFile    `yaml:"ring,omitempty"`
	Frames   []string     `yaml:"frames"` // base64, design order
}

// Save writes the pattern as a YAML project file.
func (p *Pattern) Save(w io.Writer) error {
	p.mu.RLock()
	spec, ring, b := p.spec, p.ring, p.binding
	p.mu.RUnlock()

	f := projectFile{
		Version:  Version,
		ID:       p.ID.String(),
		Name:     p.Name,
		Matrix:   p.Dim,
		Channels: p.Channels,
	}
	if ring != nil {
		f.Ring = &ringFile{Coords: ring.Coords, Table: b.Table().Indices()}
	} else {
		f.Wiring = &spec
	}
	for _, fr := range p.frames {
		f.Frames = append(f.Frames, base64.StdEncoding.EncodeToString(fr))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return err
	}
	return enc.Close()
}

// Read loads a project file written by Save.
func Read(r io.Reader) (*Pattern, error) {
	var f projectFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProject, err)
	}
	if f.Version != Version {
		return nil, fmt.Errorf("%w: version %q", ErrProject, f.Version)
	}
	id, err := uuid.Parse(f.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %w", ErrProject, err)
	}
	if (f.Wiring == nil) == (f.Ring == nil) {
		return nil, fmt.Errorf("%w: exactly one of wiring and ring is required", ErrProject)
	}

	frames := make([][]byte, len(f.Frames))
	for i, s := range f.Frames {
		if frames[i], err = base64.StdEncoding.DecodeString(s); err != nil {
			return nil, fmt.Errorf("%w: frame %d: %w", ErrProject, i, err)
		}
	}

	spec := wiring.DefaultSpec
	if f.Wiring != nil {
		spec = *f.Wiring
	}
	p, err := New(f.Name, f.Matrix, f.Channels, spec, frames)
	if err != nil {
		return nil, err
	}
	p.ID = id

	if f.Ring != nil {
		ring := wiring.RingLayout{Grid: f.Matrix, Coords: f.Ring.Coords}
		if _, err := ring.Table(); err != nil {
			return nil, err
		}
		if err := p.bindRing(ring, wiring.NewMappingTable(f.Ring.Table)); err != nil {
			log.Error().Err(err).Str("pattern", f.Name).Msg("persisted ring table rejected")
			return nil, err
		}
	}
	return p, nil
}
