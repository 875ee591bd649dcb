package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/arcaluminis-wiring/internal/diagnostics"
	"github.com/coreman2200/arcaluminis-wiring/internal/pattern"
	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

func (c *CLI) importCommand() *cobra.Command {
	var (
		spec, output string
		mask         string
		ringLEDs     []int
		ringRadii    []float64
	)
	cmd := &cobra.Command{
		Use:   "import [pattern.bin]",
		Short: "Decode a raw pattern into a project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			if mask != "" && len(ringLEDs) > 0 {
				return fmt.Errorf("--mask and --ring-leds are exclusive")
			}
			p, res, err := c.loadPattern(args[0], spec)
			if err != nil {
				return err
			}
			if res != nil {
				d := diagnostics.FromDetection(*res)
				log.Info().Str("code", d.Code).Msg(d.Summary)
			}
			if len(ringLEDs) > 0 {
				coords, err := wiring.RingCoords(p.Dim, ringLEDs, ringRadii)
				if err != nil {
					return err
				}
				if err := p.UseRing(wiring.RingLayout{Grid: p.Dim, Coords: coords}); err != nil {
					return err
				}
			}
			if mask != "" {
				coords, err := c.maskedCoords(mask, p.Spec())
				if err != nil {
					return err
				}
				if err := p.UseRing(wiring.RingLayout{Grid: p.Dim, Coords: coords}); err != nil {
					return err
				}
				log.Info().Int("leds", len(coords)).Str("spec", p.Spec().String()).Msg("masked layout")
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := p.Save(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&spec, "spec", "s", "auto", "wiring of the input as mode/corner, or auto")
	cmd.Flags().StringVarP(&output, "output", "o", "", "project file to write")
	cmd.Flags().StringVar(&mask, "mask", "", "text mask of the cells that carry an LED; the wiring visits only those")
	cmd.Flags().IntSliceVar(&ringLEDs, "ring-leds", nil, "drive the pattern through concentric rings of these sizes")
	cmd.Flags().Float64SliceVar(&ringRadii, "ring-radii", nil, "radius of each ring in pixels")
	return cmd
}

func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project.yaml]",
		Short: "Check a project's mapping table and frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			d := diagnostics.Diagnostic{Severity: diagnostics.Info, Code: "PROJECT.OK", Summary: "Project is valid"}
			p, err := pattern.Read(f)
			if err == nil {
				_, err = p.Export()
			}
			if err != nil {
				d = diagnostics.FromError(err)
			} else {
				d.Evidence = map[string]any{"leds": p.LEDs(), "frames": p.Len(), "ring": p.Ring() != nil}
			}
			enc := json.NewEncoder(c.Out)
			enc.SetIndent("", "  ")
			if werr := enc.Encode(d); werr != nil {
				return werr
			}
			return err
		},
	}
}
