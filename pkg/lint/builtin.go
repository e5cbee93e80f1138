package lint

import (
	"context"
	"slices"
	"strings"

	"github.com/macropower/kls/pkg/symbol"
)

const (
	NameResourceLimits = "resource-limits"
	NameImageTag       = "image-tag"
)

var containerListNames = []string{"containers", "initContainers"}

// Builtin returns the linters that need no configuration.
func Builtin() []Linter {
	return []Linter{ResourceLimits{}, ImageTag{}}
}

// ResourceLimits warns on containers without `resources.limits`.
type ResourceLimits struct{}

func (ResourceLimits) Name() string { return NameResourceLimits }

func (ResourceLimits) Lint(_ context.Context, in *Input) ([]Diagnostic, error) {
	var diags []Diagnostic

	for _, item := range containerItems(in.Symbols) {
		resources := symbol.ChildrenNamed(in.Symbols, item, "resources")
		if len(resources) == 0 {
			diags = append(diags, WarningOn(item, "No resource limits defined for this container"))

			continue
		}

		if len(symbol.ChildrenNamed(in.Symbols, resources[0], "limits")) == 0 {
			diags = append(diags, WarningOn(resources[0], "No resource limits defined for this container"))
		}
	}

	return diags, nil
}

// ImageTag warns on container images that are untagged or use `latest`.
type ImageTag struct{}

func (ImageTag) Name() string { return NameImageTag }

func (ImageTag) Lint(_ context.Context, in *Input) ([]Diagnostic, error) {
	var diags []Diagnostic

	for _, item := range containerItems(in.Symbols) {
		for _, image := range symbol.ChildrenNamed(in.Symbols, item, "image") {
			switch tag, ok := imageTag(image.Detail); {
			case image.Detail == "":
			case !ok:
				diags = append(diags, WarningOn(image, "Image "+image.Detail+" has no tag, which implies latest"))
			case tag == "latest":
				diags = append(diags, WarningOn(image, "Image "+image.Detail+" uses the latest tag"))
			}
		}
	}

	return diags, nil
}

// imageTag returns the tag of an image reference. Digest references count
// as tagged.
func imageTag(ref string) (string, bool) {
	if strings.Contains(ref, "@") {
		return "", true
	}

	name := ref[strings.LastIndex(ref, "/")+1:]

	_, tag, found := strings.Cut(name, ":")

	return tag, found
}

// containerItems returns the items of every container list in syms.
func containerItems(syms []symbol.Symbol) []symbol.Symbol {
	var items []symbol.Symbol

	for _, s := range syms {
		if s.Kind != symbol.KindKey || !slices.Contains(containerListNames, s.Name) {
			continue
		}

		for _, child := range symbol.Children(syms, s) {
			if child.Kind == symbol.KindItem {
				items = append(items, child)
			}
		}
	}

	return items
}
