package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/kls/pkg/log"
	"github.com/macropower/kls/pkg/mcp"
	"github.com/macropower/kls/pkg/version"
)

func NewMCPCmd(ra *RootArgs) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the manifest tools over the Model Context Protocol",
		Long: `Serve the manifest tools over the Model Context Protocol. Without
--address the server speaks over stdio; logs always go to stderr.`,
		Example: `  kls mcp
  kls mcp --address localhost:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history := log.NewHistory(log.DefaultHistorySize)

			err := log.Setup(cmd.ErrOrStderr(), ra.LogLevel, ra.LogFormat, history)
			if err != nil {
				return fmt.Errorf("create log handler: %w", err)
			}

			ws, err := loadWorkspace(ra, ".")
			if err != nil {
				return err
			}

			opts := []mcp.ServerOpt{
				mcp.WithLinters(ws.Linters()...),
				mcp.WithHistory(history),
			}
			if ws.Schemas != nil {
				opts = append(opts, mcp.WithSchemas(ws.Schemas))
			}

			slog.Debug("build info", slog.String("build", version.Get().String()))

			return mcp.NewServer(address, opts...).Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&address, "address", "",
		"Serve streamable HTTP on this address instead of stdio")

	return cmd
}
