package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/kls/pkg/config"
)

func NewInitCmd(ra *RootArgs) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Long: `Write the default configuration to the path given by --config, or to the
user configuration directory. An existing file is only replaced with --force,
and is kept as a backup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := ra.ConfigPath
			if path == "" {
				path = config.GetPath()
			}

			err := config.WriteDefault(path, force)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			slog.Debug("wrote default config", slog.String("path", path))

			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			if err != nil {
				return fmt.Errorf("write path: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing configuration file")

	return cmd
}
