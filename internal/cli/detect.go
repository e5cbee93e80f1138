package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/macropower/kls/pkg/kube"
	"github.com/macropower/kls/pkg/yaml"
)

func NewDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "detect <file>",
		Short:   "Report whether a file is a Kubernetes manifest",
		Example: `  kls detect deploy/web.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			//nolint:gosec // G304: Paths come from the user.
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %q: %w", args[0], err)
			}

			text := string(content)

			var b strings.Builder

			fmt.Fprintf(&b, "%s (%s)\n", args[0], humanize.Bytes(uint64(len(content))))

			if !kube.IsManifest(text) {
				b.WriteString("  not a kubernetes manifest\n")
			} else {
				docs, _ := yaml.Parse(text)
				for i, doc := range docs {
					id, ok := kube.DocumentIdentity(doc)
					if !ok {
						fmt.Fprintf(&b, "  document %d: no apiVersion/kind\n", i)

						continue
					}

					fmt.Fprintf(&b, "  document %d: %s\n", i, id)

					for _, msg := range doc.Errors {
						fmt.Fprintf(&b, "    error: %s\n", msg)
					}
				}
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
			if err != nil {
				return fmt.Errorf("write result: %w", err)
			}

			return nil
		},
	}
}
