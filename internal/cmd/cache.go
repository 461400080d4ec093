package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idmkit/idm-cli/internal/config"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		Aliases: []string{"ch"},
		Short:   "Manage cached server data",
	}
	cmd.AddCommand(newCacheClearCmd())
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Long: `Remove every entry this tool cached (currently the password policy) from
the configured backend: the cache directory, or redis with --cache-backend redis.`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			overrides, err := flagOverrides()
			if err != nil {
				return err
			}
			cfg, err := config.ResolveLayers(overrides)
			if err != nil {
				return err
			}
			backend, closeBackend, err := newClientFactory().cacheBackend(cmdContext(cmd), cfg.Profile)
			if err != nil {
				return err
			}
			defer closeBackend()

			removed, err := backend.Clear(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			return printMessage(cmd, map[string]any{"removed": removed}, "",
				fmt.Sprintf("Removed %d cached entries.", removed))
		}),
	}
}
