package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/qntmpulse/pulse/internal/config"
	"github.com/qntmpulse/pulse/internal/nudge"
)

// AddDismissalsCommand adds the dismissals command group to the root
// command. The group manages the durable nudge dismissal store.
func AddDismissalsCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "dismissals",
		Short: "Manage the durable nudge dismissal store",
	}
	cmd.AddCommand(newDismissalsListCmd())
	cmd.AddCommand(newDismissalsClearCmd())
	root.AddCommand(cmd)
}

// openDismissalStore opens the configured redis dismissal store. The
// memory backend has no out-of-process state to inspect, so these
// commands require the redis backend.
func openDismissalStore(cfg *config.Config) (*nudge.RedisStore, error) {
	if cfg.Nudges.DismissalStore != config.DismissalStoreRedis {
		return nil, fmt.Errorf("dismissal store backend is %q; only %q has durable state to manage",
			cfg.Nudges.DismissalStore, config.DismissalStoreRedis)
	}
	return nudge.NewRedisStore(cfg.Nudges.RedisURL)
}

func newDismissalsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List dismissed nudge ids",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			store, err := openDismissalStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			dismissed, err := store.Dismissed(cmd.Context())
			if err != nil {
				return err
			}
			if len(dismissed) == 0 {
				cmd.Println("No dismissed nudges.")
				return nil
			}
			ids := make([]string, 0, len(dismissed))
			for id := range dismissed {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				cmd.Println(id)
			}
			return nil
		},
	}
}

func newDismissalsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all dismissal records so every active nudge resurfaces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			store, err := openDismissalStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.ClearAll(cmd.Context()); err != nil {
				return err
			}
			logger := GetLogger()
			logger.Info().Msg("dismissal store cleared")
			cmd.Println("Dismissal store cleared.")
			return nil
		},
	}
}
