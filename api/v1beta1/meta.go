// Package v1beta1 contains the v1beta1 API types for kls configuration.
package v1beta1

import (
	"errors"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// APIVersion is the current API version for all kls configuration kinds.
const APIVersion = "kls.jacobcolvin.com/v1beta1"

// ValidAPIVersions contains all valid API versions.
var ValidAPIVersions = []string{APIVersion}

var (
	ErrUnsupportedAPIVersion = errors.New("unsupported apiVersion")
	ErrUnsupportedKind       = errors.New("unsupported kind")
)

// TypeMeta contains the API version and kind metadata common to all config types.
type TypeMeta struct {
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind"`
}

func (tm TypeMeta) GetAPIVersion() string {
	return tm.APIVersion
}

func (tm TypeMeta) GetKind() string {
	return tm.Kind
}

// Check reports whether the apiVersion is one of [ValidAPIVersions] and the
// kind one of kinds.
func (tm TypeMeta) Check(kinds ...string) error {
	if !slices.Contains(ValidAPIVersions, tm.APIVersion) {
		return fmt.Errorf("%w %q, expected %q", ErrUnsupportedAPIVersion, tm.APIVersion, APIVersion)
	}

	if !slices.Contains(kinds, tm.Kind) {
		return fmt.Errorf("%w %q, expected one of %q", ErrUnsupportedKind, tm.Kind, kinds)
	}

	return nil
}

// Object is the interface that all config types implement.
type Object interface {
	GetAPIVersion() string
	GetKind() string
	EnsureDefaults()
}

// ExtendSchemaWithEnums restricts the apiVersion and kind properties of a
// generated schema to the given values. Missing properties are left alone.
func ExtendSchemaWithEnums(jss *jsonschema.Schema, apiVersions, kinds []string) {
	restrict := func(name string, values []string) {
		prop, ok := jss.Properties.Get(name)
		if !ok {
			return
		}

		for _, v := range values {
			prop.Enum = append(prop.Enum, v)
		}
	}

	restrict("apiVersion", apiVersions)
	restrict("kind", kinds)
}
