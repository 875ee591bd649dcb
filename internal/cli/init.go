package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/arcaluminis-wiring/internal/config"
)

func (c *CLI) initCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults and any flags given",
		Args:  cobra.NoArgs,
		// a missing --config file is what init creates
		Annotations: map[string]string{configOptional: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(c.configPath); err == nil && !force {
				return fmt.Errorf("%s exists; use --force to overwrite", c.configPath)
			}
			if err := config.Save(c.configPath, c.cfg); err != nil {
				return err
			}
			log.Info().Str("path", c.configPath).Msg("config written")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
