package lint

import (
	"context"
	"fmt"
	"strings"

	"github.com/macropower/kls/pkg/kube"
	"github.com/macropower/kls/pkg/symbol"
)

// NameGVK is the name of the [GVK] linter.
const NameGVK = "gvk"

// SchemaIndex reports which resource identities have a schema.
type SchemaIndex interface {
	Has(id kube.Identity) bool
	// KindsFor returns the identities registered for kind, under any apiVersion.
	KindsFor(kind string) []kube.Identity
}

// GVK cross-checks the apiVersion and kind of each manifest against a
// [SchemaIndex]. It warns when the kind is known, but not under the
// declared apiVersion.
type GVK struct {
	Schemas SchemaIndex
}

func (GVK) Name() string { return NameGVK }

func (l GVK) Lint(_ context.Context, in *Input) ([]Diagnostic, error) {
	if l.Schemas == nil {
		return nil, nil
	}

	var diags []Diagnostic

	for _, r := range in.Resources {
		if l.Schemas.Has(r.Identity) {
			continue
		}

		known := l.Schemas.KindsFor(r.Identity.Kind)
		if len(known) == 0 {
			continue
		}

		expected := make([]string, 0, len(known))
		for _, id := range known {
			expected = append(expected, id.APIVersion)
		}

		anchor, ok := symbol.Find(in.DocumentSymbols(r.Document), symbol.Root+".apiVersion")
		if !ok {
			continue
		}

		diags = append(diags, WarningOn(anchor, fmt.Sprintf(
			"apiVersion %s is not valid for kind %s, expected one of: %s",
			r.Identity.APIVersion, r.Identity.Kind, strings.Join(expected, ", "),
		)))
	}

	return diags, nil
}
