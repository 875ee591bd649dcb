package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/arcaluminis-wiring/internal/calib"
	"github.com/coreman2200/arcaluminis-wiring/internal/diagnostics"
	"github.com/coreman2200/arcaluminis-wiring/internal/led"
	"github.com/coreman2200/arcaluminis-wiring/internal/preview"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

// hwFrames are frames already in hardware order.
type hwFrames [][]byte

func (f hwFrames) Len() int                            { return len(f) }
func (f hwFrames) HardwareFrame(i int) ([]byte, error) { return f[i], nil }

func (c *CLI) calibCommand() *cobra.Command {
	var (
		kind, spec, output string
		play               bool
	)
	cmd := &cobra.Command{
		Use:   "calib",
		Short: "Generate calibration frames for a wiring",
		Long: `Generate calibration frames for a wiring.

index_sweep lights one LED at a time in data-line order, rgb_channels shows
each channel in turn, corner_markers shows the diagnostic grid the detector
recognises (top-left red, top-right green, bottom-left blue, bottom-right
yellow).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, ok := calib.ParseKind(kind)
			if !ok {
				return fmt.Errorf("unknown calibration %q", kind)
			}
			s, err := c.parseSpecFlag(spec)
			if err != nil {
				return err
			}
			if s == nil {
				d := wiring.DefaultSpec
				s = &d
			}
			dim := c.cfg.Dim()
			t, err := wiring.Generate(dim.W, dim.H, *s)
			if err != nil {
				return err
			}
			b, err := wiring.Bind(t, dim.Count())
			if err != nil {
				return err
			}
			p, err := c.cfg.DetectParams()
			if err != nil {
				return err
			}
			frames := hwFrames(calib.NewRunner(calib.Plan{Kind: k, Markers: p.Markers}).Frames(b, dim))

			if output != "" {
				if err := writeFrames(output, frames); err != nil {
					return err
				}
				log.Info().Str("kind", kind).Str("spec", s.String()).Int("frames", len(frames)).Str("output", output).Msg("calibration written")
			}
			if play {
				return c.play(cmd.Context(), frames, b.Len(), false)
			}
			if output == "" {
				fmt.Fprintf(c.Out, "%s %s: %d frames\n", kind, s, len(frames))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(calib.CornerMarks), "index_sweep | rgb_channels | corner_markers")
	cmd.Flags().StringVarP(&spec, "spec", "s", "", "wiring as mode/corner (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write raw frames to this file")
	cmd.Flags().BoolVar(&play, "play", false, "send the frames to the configured driver")
	return cmd
}

func (c *CLI) playCommand() *cobra.Command {
	var (
		spec string
		loop bool
	)
	cmd := &cobra.Command{
		Use:   "play [pattern.bin|project.yaml]",
		Short: "Stream a pattern to the configured LED driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := c.loadPattern(args[0], spec)
			if err != nil {
				return err
			}
			return c.play(cmd.Context(), p, p.LEDs(), loop)
		},
	}
	cmd.Flags().StringVarP(&spec, "spec", "s", "auto", "wiring of a raw input as mode/corner, or auto")
	cmd.Flags().BoolVar(&loop, "loop", false, "repeat until interrupted")
	return cmd
}

func (c *CLI) play(ctx context.Context, src led.FrameSource, leds int, loop bool) error {
	drv, name := c.openDriver(leds)
	defer drv.Close()
	log.Info().Str("driver", name).Int("frames", src.Len()).Int("fps", c.cfg.Output.FPS).Msg("playing")
	return led.NewPlayer(drv, c.cfg.Output.FPS, loop).Play(ctx, src)
}

func (c *CLI) serveCommand() *cobra.Command {
	var spec, addr string
	cmd := &cobra.Command{
		Use:   "serve [pattern.bin|project.yaml]",
		Short: "Preview a pattern over websocket and mirror it to the LED driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, res, err := c.loadPattern(args[0], spec)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.cfg.Preview.Addr
			}

			state := preview.New(p, c.cfg.Output.FPS)
			drv, name := c.openDriver(p.LEDs())
			defer drv.Close()
			state.Driver, state.DriverName = drv, name

			srv := &http.Server{
				Addr:         addr,
				Handler:      state.Routes(),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return state.Run(ctx) })
			g.Go(func() error {
				log.Info().Str("addr", addr).Str("driver", name).Msg("HTTP server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				log.Info().Msg("shutting down")
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(sctx)
			})
			if res != nil {
				state.Push(diagnostics.FromDetection(*res))
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVarP(&spec, "spec", "s", "auto", "wiring of a raw input as mode/corner, or auto")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config)")
	return cmd
}
