package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coreman2200/arcaluminis-wiring/internal/detect"
	"github.com/coreman2200/arcaluminis-wiring/internal/diagnostics"
	"github.com/coreman2200/arcaluminis-wiring/internal/pixel"
)

type detectReport struct {
	File       string                 `json:"file"`
	Layout     *detect.Layout         `json:"layout,omitempty"`
	Result     detect.Result          `json:"result"`
	Hint       *detect.Hint           `json:"hint,omitempty"`
	Diagnostic diagnostics.Diagnostic `json:"diagnostic"`
}

func (c *CLI) detectCommand() *cobra.Command {
	var (
		noHints   bool
		guessSize bool
		leds      int
	)
	cmd := &cobra.Command{
		Use:   "detect [pattern.bin]",
		Short: "Guess the wiring of a raw pattern file",
		Args:  cobra.ExactArgs(1),
		Long: `Guess the wiring of a raw pattern file.

With --guess-size the matrix size is inferred from the LED count instead of
--width/--height. The count is --leds, or the whole file as one frame.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var layout *detect.Layout
			if guessSize {
				if cmd.Flags().Changed("width") || cmd.Flags().Changed("height") {
					return fmt.Errorf("--guess-size conflicts with --width/--height")
				}
				l, err := c.guessLayout(args[0], leds)
				if err != nil {
					return err
				}
				layout = &l
			}
			src, err := c.readSource(args[0])
			if err != nil {
				return err
			}
			det, err := c.detector()
			if err != nil {
				return err
			}
			frames := make([][]pixel.RGB, 0, len(src.Frames))
			for _, f := range src.Frames {
				px, err := pixel.FromBytes(f, src.Channels)
				if err != nil {
					return err
				}
				frames = append(frames, px)
			}
			res, err := det.DetectFrames(frames, src.Dim.W, src.Dim.H)
			if err != nil {
				return err
			}
			rep := detectReport{File: src.Name, Layout: layout}
			if !noHints {
				if h := detect.FromFilename(src.Name); !h.Empty() {
					rep.Hint = &h
					res = det.WithHint(res, h)
				}
			}
			rep.Result = res
			rep.Diagnostic = diagnostics.FromDetection(res)

			enc := json.NewEncoder(c.Out)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	cmd.Flags().BoolVar(&noHints, "no-hints", false, "ignore wiring hints in the file name")
	cmd.Flags().BoolVar(&guessSize, "guess-size", false, "infer width and height from the LED count")
	cmd.Flags().IntVar(&leds, "leds", 0, "LEDs per frame for --guess-size (0 = one frame)")
	return cmd
}
