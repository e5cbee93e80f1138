package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/macropower/kls/pkg/yaml"
)

func NewNodeCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "node <file> <line> <character>",
		Short: "Show the YAML node at a position",
		Long: `Show the innermost YAML node at a zero-based line and character,
with its path and, when a schema is registered for the document, its
description.`,
		Example: `  kls node deploy/web.yaml 12 8`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid argument %q for line: %w", args[1], err)
			}

			char, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid argument %q for character: %w", args[2], err)
			}

			//nolint:gosec // G304: Paths come from the user.
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %q: %w", args[0], err)
			}

			ws, err := loadWorkspace(ra, args[0])
			if err != nil {
				return err
			}

			docs, lines := yaml.Parse(string(content))

			m, ok := yaml.FindNodeAtPosition(docs, lines, line, char)
			if !ok {
				return fmt.Errorf("no node at %d:%d", line, char)
			}

			var b strings.Builder

			startLine, startChar := lines.Position(m.Node.Start)
			endLine, endChar := lines.Position(m.Node.End)

			fmt.Fprintf(&b, "kind:  %s\n", m.Node.Kind)
			fmt.Fprintf(&b, "path:  %s\n", m.Node.Path())
			fmt.Fprintf(&b, "range: %d:%d-%d:%d\n", startLine, startChar, endLine, endChar)
			fmt.Fprintf(&b, "raw:   %s\n", truncate(m.Node.Raw, 200))

			if ws.Schemas != nil {
				if desc, ok := ws.Schemas.Hover(m); ok {
					fmt.Fprintf(&b, "\n%s\n", desc)
				}
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
			if err != nil {
				return fmt.Errorf("write node: %w", err)
			}

			return nil
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
