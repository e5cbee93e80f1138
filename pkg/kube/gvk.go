package kube

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/macropower/kls/pkg/yaml"
)

var (
	// ErrSchema indicates an incomplete group/version/kind declaration.
	ErrSchema = errors.New("incomplete group/version/kind")

	ErrMissingVersion = fmt.Errorf("%w: missing version", ErrSchema)
	ErrMissingKind    = fmt.Errorf("%w: missing kind", ErrSchema)
)

// GroupVersionKind is a group/version/kind triple as declared by a schema,
// e.g. in an `x-kubernetes-group-version-kind` entry.
type GroupVersionKind struct {
	// Group is empty for the core API group.
	Group   string `json:"group,omitempty"   yaml:"group,omitempty"`
	Version string `json:"version"           yaml:"version"`
	Kind    string `json:"kind"              yaml:"kind"`
}

func (gvk GroupVersionKind) String() string {
	return schema.GroupVersionKind{Group: gvk.Group, Version: gvk.Version, Kind: gvk.Kind}.String()
}

// Identity is the apiVersion/kind pair written at the top of a manifest.
type Identity struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
}

func (id Identity) String() string {
	return id.APIVersion + ", Kind=" + id.Kind
}

// SchemaError reports a [GroupVersionKind] that cannot be resolved.
type SchemaError struct {
	Err error
	GVK GroupVersionKind
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%v (group=%q version=%q kind=%q)", e.Err, e.GVK.Group, e.GVK.Version, e.GVK.Kind)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Resolve returns the [Identity] that manifests of the given
// [GroupVersionKind] declare.
//
// The version is checked before the kind, so a declaration missing both
// reports [ErrMissingVersion]. Errors are returned as [*SchemaError].
func Resolve(gvk GroupVersionKind) (Identity, error) {
	if gvk.Version == "" {
		return Identity{}, &SchemaError{GVK: gvk, Err: ErrMissingVersion}
	}

	if gvk.Kind == "" {
		return Identity{}, &SchemaError{GVK: gvk, Err: ErrMissingKind}
	}

	apiVersion, kind := schema.GroupVersionKind{
		Group:   gvk.Group,
		Version: gvk.Version,
		Kind:    gvk.Kind,
	}.ToAPIVersionAndKind()

	return Identity{APIVersion: apiVersion, Kind: kind}, nil
}

// DocumentIdentity reads the top-level apiVersion and kind of a parsed
// document. It returns false unless both are present and non-empty.
func DocumentIdentity(doc *yaml.Document) (Identity, bool) {
	if doc == nil || doc.Root == nil {
		return Identity{}, false
	}

	apiVersion, ok := doc.Value("apiVersion")
	if !ok || apiVersion == "" {
		return Identity{}, false
	}

	kind, ok := doc.Value("kind")
	if !ok || kind == "" {
		return Identity{}, false
	}

	return Identity{APIVersion: apiVersion, Kind: kind}, true
}
