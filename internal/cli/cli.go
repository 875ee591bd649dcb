// Package cli implements the matrixmap command line.
package cli

import (
	"errors"
	"io"
	"io/fs"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/arcaluminis-wiring/internal/config"
)

// configOptional marks commands that run without an existing config file.
const configOptional = "config-optional"

// CLI holds state shared by all commands.
type CLI struct {
	Out io.Writer

	configPath string
	cfg        *config.Config

	width, height, channels int
	verbose                 bool
}

func New(out io.Writer) *CLI {
	return &CLI{Out: out, cfg: config.Default()}
}

func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "matrixmap",
		Short: "Map LED matrix patterns between design order and wiring order",
		Long: `matrixmap translates pixel buffers between the order they were designed in
and the order the LEDs sit on the data line, detects the wiring of existing
pattern files, and previews or plays patterns on real hardware.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "config.yaml", "path to config.yaml")
	pf.IntVar(&c.width, "width", 0, "matrix width (overrides config)")
	pf.IntVar(&c.height, "height", 0, "matrix height (overrides config)")
	pf.IntVar(&c.channels, "channels", 0, "bytes per pixel (overrides config)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.tableCommand())
	root.AddCommand(c.detectCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.calibCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.serveCommand())
	return root
}

// setup loads the config file and applies explicit flags on top of it.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if c.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load(c.configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if cmd.Flags().Changed("config") && cmd.Annotations[configOptional] == "" {
			return err
		}
		log.Debug().Str("path", c.configPath).Msg("no config file; using defaults")
		cfg = config.Default()
	case err != nil:
		return err
	}

	f := cmd.Flags()
	if f.Changed("width") {
		cfg.Matrix.Width = c.width
	}
	if f.Changed("height") {
		cfg.Matrix.Height = c.height
	}
	if f.Changed("channels") {
		cfg.Matrix.Channels = c.channels
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}
