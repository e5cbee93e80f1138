package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/macropower/kls/pkg/lint"
)

type LintArgs struct {
	Output      string
	Ignores     []string
	Concurrency int
	Watch       bool
}

func NewLintArgs() *LintArgs {
	return &LintArgs{}
}

func (la *LintArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&la.Watch, "watch", "w", false, "Lint again whenever a file changes")
	cmd.Flags().StringVarP(&la.Output, "output", "o", OutputText,
		fmt.Sprintf("Output format, one of: %s", strings.Join(AllOutputs, ", ")))
	cmd.Flags().IntVar(&la.Concurrency, "concurrency", 0,
		"Number of files linted at once (defaults to the configured value)")
	cmd.Flags().StringSliceVar(&la.Ignores, "ignore", nil,
		"Gitignore-style patterns to skip when walking directories")

	must(cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions(AllOutputs, cobra.ShellCompDirectiveNoFileComp),
	))
}

func NewLintCmd(ra *RootArgs) *cobra.Command {
	args := NewLintArgs()

	cmd := &cobra.Command{
		Use:   "lint [path]...",
		Short: "Lint Kubernetes manifests",
		Long: `Lint the YAML files named by the given paths. Directories are walked,
honoring .gitignore. Without paths, the current directory is linted.`,
		Example: `  kls lint
  kls lint ./deploy --output json
  kls lint ./deploy --watch`,
		RunE: func(cmd *cobra.Command, paths []string) error {
			return runLint(cmd, ra, args, paths)
		},
	}

	args.AddFlags(cmd)

	return cmd
}

func runLint(cmd *cobra.Command, ra *RootArgs, la *LintArgs, paths []string) error {
	if !slices.Contains(AllOutputs, la.Output) {
		return fmt.Errorf("invalid argument %q for \"--output\": must be one of %s",
			la.Output, strings.Join(AllOutputs, ", "))
	}

	if la.Watch && la.Output == OutputJSON {
		return errors.New("invalid argument: --watch cannot be combined with --output json")
	}

	if len(paths) == 0 {
		paths = []string{"."}
	}

	ws, err := loadWorkspace(ra, paths[0])
	if err != nil {
		return err
	}

	concurrency := ws.Config.Lint.Concurrency
	if la.Concurrency > 0 {
		concurrency = la.Concurrency
	}

	runner := lint.NewRunner(ws.Linters(),
		lint.WithConcurrency(concurrency),
		lint.WithIgnores(la.Ignores...),
	)

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if la.Watch {
		tr := newTextRenderer(out)

		slog.Info("watching for changes", slog.Any("paths", paths))

		return runner.Watch(ctx, func(res *lint.Result) {
			if err := tr.Result(res); err != nil {
				slog.Error("render result", slog.Any("error", err))
			}
		}, paths...)
	}

	results, lintErr := runner.LintFiles(ctx, paths...)
	if lintErr != nil && results == nil {
		return fmt.Errorf("lint: %w", lintErr)
	}

	switch la.Output {
	case OutputJSON:
		err = writeJSON(out, results)
	default:
		err = renderText(newTextRenderer(out), results)
	}

	if err != nil {
		return err
	}

	if lintErr != nil {
		return fmt.Errorf("lint: %w", lintErr)
	}

	if s := summarize(results); s.Errors > 0 {
		return fmt.Errorf("%w: %s", ErrProblemsFound, english.Plural(s.Errors, "error", ""))
	}

	return nil
}

func renderText(tr *textRenderer, results []*lint.Result) error {
	for _, res := range results {
		err := tr.Result(res)
		if err != nil {
			return err
		}
	}

	return tr.Summary(results)
}
