package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/qntmpulse/pulse/internal/config"
)

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	root.AddCommand(cmd)
}

// newConfigShowCmd creates the config show subcommand. It prints the
// effective configuration after all layers (defaults, global file,
// project file, environment) have been merged.
func newConfigShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}

			var out []byte
			if asJSON {
				out, err = json.MarshalIndent(cfg, "", "  ")
			} else {
				out, err = yaml.Marshal(cfg)
			}
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}

			cmd.Println(string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON instead of YAML")
	return cmd
}
