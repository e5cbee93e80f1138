package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/kls/pkg/kube"
)

func NewGVKCmd() *cobra.Command {
	var gvk kube.GroupVersionKind

	cmd := &cobra.Command{
		Use:   "gvk",
		Short: "Resolve a group/version/kind to a manifest apiVersion and kind",
		Example: `  kls gvk --group apps --version v1 --kind Deployment
  kls gvk --version v1 --kind ConfigMap`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := kube.Resolve(gvk)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "apiVersion: %s\nkind: %s\n", id.APIVersion, id.Kind)
			if err != nil {
				return fmt.Errorf("write identity: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&gvk.Group, "group", "", "API group, empty for the core group")
	cmd.Flags().StringVar(&gvk.Version, "version", "", "API version")
	cmd.Flags().StringVar(&gvk.Kind, "kind", "", "Resource kind")

	return cmd
}
