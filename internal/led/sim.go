package led

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Sim is a driver without hardware. It keeps the frames it was sent and
// logs a compact summary of each.
type Sim struct {
	mu     sync.Mutex
	count  int
	frames [][]byte
	keep   int
	closed bool
}

// NewSim keeps up to keep frames; 0 keeps none.
func NewSim(keep int) *Sim { return &Sim{keep: keep} }

func (s *Sim) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.count++
	if s.keep > 0 {
		if len(s.frames) == s.keep {
			s.frames = s.frames[1:]
		}
		s.frames = append(s.frames, append([]byte(nil), rgb...))
	}

	var r, g, b float64
	n := len(rgb) / 3
	for i := 0; i < n; i++ {
		r += float64(rgb[i*3])
		g += float64(rgb[i*3+1])
		b += float64(rgb[i*3+2])
	}
	if n > 0 {
		r, g, b = r/float64(n), g/float64(n), b/float64(n)
	}
	log.Debug().Int("frame", s.count).Int("leds", n).Floats64("avg", []float64{r, g, b}).Msg("sim write")
	return nil
}

func (s *Sim) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Count is the number of frames written so far.
func (s *Sim) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Frames returns the retained frames, oldest first.
func (s *Sim) Frames() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.frames...)
}
