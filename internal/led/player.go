package led

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultFPS = 30

// FrameSource yields hardware-order frames.
type FrameSource interface {
	Len() int
	HardwareFrame(i int) ([]byte, error)
}

// Player streams frames to a driver at a fixed rate.
type Player struct {
	drv  Driver
	fps  int
	loop bool
}

func NewPlayer(drv Driver, fps int, loop bool) *Player {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Player{drv: drv, fps: fps, loop: loop}
}

// Play writes src frame by frame until it runs out (or, when looping,
// until ctx is done). Cancellation is not an error.
func (p *Player) Play(ctx context.Context, src FrameSource) error {
	n := src.Len()
	if n == 0 {
		return nil
	}
	ticker := time.NewTicker(time.Second / time.Duration(p.fps))
	defer ticker.Stop()

	start := time.Now()
	for i := 0; ; i++ {
		if i == n {
			if !p.loop {
				log.Debug().Int("frames", n).Dur("took", time.Since(start)).Msg("playback done")
				return nil
			}
			i = 0
		}
		f, err := src.HardwareFrame(i)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := p.drv.Write(f); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		}
	}
}
