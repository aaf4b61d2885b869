package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qntmpulse/pulse/internal/config"
)

// AddInitCommand adds the init command to the root command.
func AddInitCommand(root *cobra.Command) {
	var project bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Writes a config.yaml populated with built-in defaults.

By default the global config (~/.pulse/config.yaml) is written. With
--project, the project config (.pulse/config.yaml in the working
directory) is written instead. Existing files are never overwritten.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.ProjectConfigPath()
			if !project {
				var err error
				path, err = config.GlobalConfigPath()
				if err != nil {
					return fmt.Errorf("resolve global config path: %w", err)
				}
			}

			if err := config.WriteDefault(path); err != nil {
				return err
			}

			logger := GetLogger()
			logger.Info().Str("path", path).Msg("config written")
			cmd.Printf("Wrote default config to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&project, "project", false, "write the project config instead of the global one")

	root.AddCommand(cmd)
}
