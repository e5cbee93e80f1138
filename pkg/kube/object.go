package kube

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// ResourceMetadata identifies a decoded manifest.
type ResourceMetadata struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
	Namespace  string `json:"namespace,omitempty"`
	Name       string `json:"name"`
}

// Object is a decoded manifest.
type Object map[string]any

// DecodeObject decodes a single YAML document into an [Object].
// An empty document decodes to an empty [Object].
func DecodeObject(raw string) (Object, error) {
	obj := Object{}

	err := yaml.Unmarshal([]byte(raw), &obj)
	if err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}

	if obj == nil {
		obj = Object{}
	}

	return obj, nil
}

// NamespacedName returns "namespace/name", or the name alone for
// cluster-scoped resources.
func (m ResourceMetadata) NamespacedName() string {
	if m.Namespace != "" {
		return m.Namespace + "/" + m.Name
	}

	return m.Name
}

func (m ResourceMetadata) String() string {
	if name := m.NamespacedName(); name != "" {
		return m.Kind + " " + name
	}

	return m.Kind
}

func (o Object) GetMetadata() ResourceMetadata {
	return ResourceMetadata{
		APIVersion: o.GetAPIVersion(),
		Kind:       o.GetKind(),
		Namespace:  o.GetNamespace(),
		Name:       o.GetName(),
	}
}

// GetAPIVersion returns the apiVersion of the object, or an empty string.
func (o Object) GetAPIVersion() string {
	if version, ok := o["apiVersion"].(string); ok {
		return version
	}

	return ""
}

// GetKind returns the kind of the object, or an empty string.
func (o Object) GetKind() string {
	if kind, ok := o["kind"].(string); ok {
		return kind
	}

	return ""
}

// GetNamespace returns the namespace of the object, or an empty string.
func (o Object) GetNamespace() string {
	if metadata, ok := o["metadata"].(map[string]any); ok {
		if ns, ok := metadata["namespace"].(string); ok {
			return ns
		}
	}

	return ""
}

// GetName returns the name of the object, or an empty string.
func (o Object) GetName() string {
	if metadata, ok := o["metadata"].(map[string]any); ok {
		if name, ok := metadata["name"].(string); ok {
			return name
		}
	}

	return ""
}
