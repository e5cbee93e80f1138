package yaml

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/invopop/jsonschema"
)

// ModulePath is the import path of this module. Go comments are only read
// for packages below it.
const ModulePath = "github.com/macropower/kls"

// SchemaGenerator generates a JSON schema for a Go value, using the Go doc
// comments of the given packages as descriptions.
type SchemaGenerator struct {
	value     any
	reflector *jsonschema.Reflector
	packages  []string
}

// NewSchemaGenerator creates a new [SchemaGenerator] for v. Packages are
// import paths below [ModulePath], and are resolved relative to the current
// working directory, which must be the module root.
func NewSchemaGenerator(v any, packages ...string) *SchemaGenerator {
	return &SchemaGenerator{
		value:     v,
		packages:  packages,
		reflector: &jsonschema.Reflector{},
	}
}

// Generate reflects the schema and returns it as indented JSON.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	for _, pkg := range g.packages {
		rel, ok := strings.CutPrefix(pkg, ModulePath+"/")
		if !ok {
			return nil, fmt.Errorf("package %q is not in module %s", pkg, ModulePath)
		}

		err := g.reflector.AddGoComments(ModulePath, path.Clean(rel))
		if err != nil {
			return nil, fmt.Errorf("add go comments for %s: %w", pkg, err)
		}
	}

	jss := g.reflector.Reflect(g.value)

	b, err := json.MarshalIndent(jss, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(b, '\n'), nil
}
