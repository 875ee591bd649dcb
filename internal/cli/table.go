package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

func (c *CLI) tableCommand() *cobra.Command {
	var (
		spec      string
		mask      string
		ringLEDs  []int
		ringRadii []float64
		rays      int
		perRay    int
	)
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the LED index of every pixel for a wiring",
		Long: `Print the LED index of every pixel for a wiring.

Without ring options the matrix is printed as a grid of LED indices. With
--ring-leds/--ring-radii or --rays/--per-ray the LED coordinates of a
circular layout are listed instead. --mask lists the coordinates of a panel
with gaps: the wiring path of --spec visits only the cells the mask marks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dim := c.cfg.Dim()
			switch {
			case len(ringLEDs) > 0:
				coords, err := wiring.RingCoords(dim, ringLEDs, ringRadii)
				if err != nil {
					return err
				}
				return c.printRing(dim, coords)
			case rays > 0:
				coords, err := wiring.RayCoords(dim, rays, perRay)
				if err != nil {
					return err
				}
				return c.printRing(dim, coords)
			}
			s, err := c.parseSpecFlag(spec)
			if err != nil {
				return err
			}
			if s == nil {
				s = &wiring.DefaultSpec
			}
			if mask != "" {
				coords, err := c.maskedCoords(mask, *s)
				if err != nil {
					return err
				}
				return c.printRing(dim, coords)
			}
			t, err := wiring.Generate(dim.W, dim.H, *s)
			if err != nil {
				return err
			}
			b, err := wiring.Bind(t, dim.Count())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Out, "# %dx%d %s\n", dim.W, dim.H, s)
			width := len(fmt.Sprint(dim.Count() - 1))
			for y := 0; y < dim.H; y++ {
				row := make([]string, dim.W)
				for x := 0; x < dim.W; x++ {
					row[x] = fmt.Sprintf("%*d", width, b.HardwareIndex(x, y, dim.W))
				}
				fmt.Fprintln(c.Out, strings.Join(row, " "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&spec, "spec", "s", "", "wiring as mode/corner, e.g. row-serpentine/top-left")
	cmd.Flags().StringVar(&mask, "mask", "", "text mask of the cells that carry an LED ('#' LED, '.' gap)")
	cmd.Flags().IntSliceVar(&ringLEDs, "ring-leds", nil, "LEDs per concentric ring, innermost first")
	cmd.Flags().Float64SliceVar(&ringRadii, "ring-radii", nil, "radius of each ring in pixels")
	cmd.Flags().IntVar(&rays, "rays", 0, "number of radial rays")
	cmd.Flags().IntVar(&perRay, "per-ray", 0, "LEDs per radial ray")
	return cmd
}

func (c *CLI) printRing(dim wiring.Dim, coords []wiring.Coord) error {
	t, err := wiring.RingLayout{Grid: dim, Coords: coords}.Table()
	if err != nil {
		return err
	}
	if err := wiring.Validate(t, len(coords)); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "# %d leds on %dx%d\n", len(coords), dim.W, dim.H)
	for i, p := range coords {
		fmt.Fprintf(c.Out, "%d\t%d,%d\n", t.At(i), p.X, p.Y)
	}
	return nil
}
