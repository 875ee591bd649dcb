package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/arcaluminis-wiring/internal/convert"
	"github.com/coreman2200/arcaluminis-wiring/internal/detect"
	"github.com/coreman2200/arcaluminis-wiring/internal/diagnostics"
	"github.com/coreman2200/arcaluminis-wiring/internal/pixel"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

func (c *CLI) convertCommand() *cobra.Command {
	var (
		from, to, output string
		flips            convert.Flips
	)
	cmd := &cobra.Command{
		Use:   "convert [pattern.bin]",
		Short: "Rewire a raw pattern file from one wiring to another",
		Long: `Rewire a raw pattern file from one wiring to another.

--from defaults to auto, which detects the source wiring from the first
frames. The design can be mirrored on the way with --flip-x/--flip-y.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			src, err := c.readSource(args[0])
			if err != nil {
				return err
			}
			dst, err := wiring.ParseSpec(to)
			if err != nil {
				return err
			}
			srcSpec, err := c.parseSpecFlag(from)
			if err != nil {
				return err
			}
			if srcSpec == nil {
				det, err := c.detector()
				if err != nil {
					return err
				}
				px, err := pixel.FromBytes(src.Frames[0], src.Channels)
				if err != nil {
					return err
				}
				res, err := det.Detect(px, src.Dim.W, src.Dim.H)
				if err != nil {
					return err
				}
				res = det.WithHint(res, detect.FromFilename(src.Name))
				d := diagnostics.FromDetection(res)
				log.Info().Str("code", d.Code).Str("spec", res.Spec.String()).Float64("confidence", res.Confidence).Msg(d.Summary)
				srcSpec = &res.Spec
			}

			codec, err := convert.NewCodec(src.Dim, src.Channels)
			if err != nil {
				return err
			}
			f := c.cfg.Flips()
			f.X = f.X || flips.X
			f.Y = f.Y || flips.Y
			out := make([][]byte, len(src.Frames))
			for i, raw := range src.Frames {
				if out[i], err = codec.Convert(raw, *srcSpec, dst, f); err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
			}
			if err := writeFrames(output, out); err != nil {
				return err
			}
			log.Info().Str("from", srcSpec.String()).Str("to", dst.String()).Int("frames", len(out)).Str("output", output).Msg("converted")
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "auto", "source wiring as mode/corner, or auto")
	cmd.Flags().StringVar(&to, "to", wiring.DefaultSpec.String(), "target wiring as mode/corner")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&flips.X, "flip-x", false, "mirror the design horizontally")
	cmd.Flags().BoolVar(&flips.Y, "flip-y", false, "mirror the design vertically")
	return cmd
}
