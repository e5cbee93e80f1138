package schema

import (
	"strconv"
	"strings"

	"github.com/macropower/kls/pkg/kube"
	"github.com/macropower/kls/pkg/yaml"
)

// maxRefDepth bounds reference chains, which may be cyclic.
const maxRefDepth = 32

// Describe returns the description of the property at path, where path holds
// keys and sequence indices as returned by yaml.Node.Segments. An empty path
// describes the fragment itself.
//
// Object properties are looked up under `properties`, then
// `additionalProperties`; numeric segments step into `items`. Local `$ref`s
// to `definitions` or `components/schemas`, and the first entry of `allOf`,
// are followed.
func (f *Fragment) Describe(path []string) (string, bool) {
	cur := f.resolve(f.Schema)

	for _, seg := range path {
		if cur == nil {
			return "", false
		}

		cur = f.resolve(f.step(cur, seg))
	}

	if cur == nil {
		return "", false
	}

	desc, ok := cur["description"].(string)
	if !ok || desc == "" {
		return "", false
	}

	return desc, true
}

func (f *Fragment) step(node map[string]any, seg string) map[string]any {
	if _, err := strconv.Atoi(seg); err == nil {
		if items, ok := node["items"].(map[string]any); ok {
			return items
		}
	}

	if props, ok := node["properties"].(map[string]any); ok {
		if prop, ok := props[seg].(map[string]any); ok {
			return prop
		}
	}

	if additional, ok := node["additionalProperties"].(map[string]any); ok {
		return additional
	}

	return nil
}

// resolve follows `$ref` and single-entry `allOf` wrappers. A description
// on the referencing node takes precedence over the referenced one.
func (f *Fragment) resolve(node map[string]any) map[string]any {
	for range maxRefDepth {
		if node == nil {
			return nil
		}

		next := f.target(node)
		if next == nil {
			return node
		}

		if desc, ok := node["description"].(string); ok && desc != "" {
			merged := make(map[string]any, len(next)+1)
			for k, v := range next {
				merged[k] = v
			}

			merged["description"] = desc
			next = merged
		}

		node = next
	}

	return node
}

func (f *Fragment) target(node map[string]any) map[string]any {
	if ref, ok := node["$ref"].(string); ok {
		name := ref[strings.LastIndex(ref, "/")+1:]
		if !strings.HasPrefix(ref, "#/definitions/") && !strings.HasPrefix(ref, "#/components/schemas/") {
			return nil
		}

		def, _ := f.defs[name].(map[string]any)

		return def
	}

	if allOf, ok := node["allOf"].([]any); ok && len(allOf) > 0 {
		if _, hasProps := node["properties"]; hasProps {
			return nil
		}

		first, _ := allOf[0].(map[string]any)

		return first
	}

	return nil
}

// Hover returns the description of the node in m, taken from the fragment
// registered for the identity of m's document.
func (r *Registry) Hover(m yaml.Match) (string, bool) {
	id, ok := kube.DocumentIdentity(m.Document)
	if !ok || m.Node == nil {
		return "", false
	}

	f, ok := r.Lookup(id)
	if !ok {
		return "", false
	}

	return f.Describe(m.Node.Segments())
}
