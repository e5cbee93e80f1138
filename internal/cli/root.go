package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/kls/pkg/log"
)

const (
	cmdName = "kls"
	cmdDesc = `Language tooling for Kubernetes YAML manifests.`

	cmdExamples = `  # Lint the manifests in the current directory:
  kls lint

  # Lint files and directories, re-linting on changes:
  kls lint ./deploy ./crds/widget.yaml --watch

  # Show the node at line 12, character 8 (zero-based):
  kls node ./deploy/web.yaml 12 8

  # Resolve a schema group/version/kind:
  kls gvk --group apps --version v1 --kind Deployment

  # Serve the MCP tools over stdio:
  kls mcp`
)

type RootArgs struct {
	tracingShutdown func(context.Context) error

	LogLevel      string
	LogFormat     string
	ConfigPath    string
	TraceEndpoint string
	TraceInsecure bool
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVar(&ra.ConfigPath, "config", "", "Path to the kls configuration file")
	cmd.PersistentFlags().
		StringVar(&ra.TraceEndpoint, "trace-endpoint", "", "OTLP gRPC endpoint to export traces to")
	cmd.PersistentFlags().
		BoolVar(&ra.TraceInsecure, "trace-insecure", false, "Disable TLS for the trace endpoint")

	must(cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	))

	must(cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	))

	must(cmd.MarkPersistentFlagFilename("config", "yaml", "yml"))
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(NewRootArgs())
}

func newRootCmd(args *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:               cmdName,
		Short:             cmdDesc,
		Example:           cmdExamples,
		PersistentPreRunE: setup(args),
		SilenceUsage:      true,
	}

	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return args.shutdownTracing()
	}

	args.AddFlags(cmd)

	cmd.AddCommand(
		NewLintCmd(args),
		NewNodeCmd(args),
		NewDetectCmd(),
		NewGVKCmd(),
		NewMCPCmd(args),
		NewSchemaCmd(),
		NewInitCmd(args),
	)

	bindEnvVars(cmd)

	return cmd
}

func setup(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		err := log.Setup(cmd.ErrOrStderr(), ra.LogLevel, ra.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		if ra.TraceEndpoint == "" {
			return nil
		}

		ra.tracingShutdown, err = setupTracing(cmd.Context(), ra.TraceEndpoint, ra.TraceInsecure)
		if err != nil {
			return err
		}

		return nil
	}
}
