package yaml_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/kls/pkg/yaml"
)

type generatedConfig struct {
	Name  string   `json:"name"`
	Paths []string `json:"paths,omitempty"`
}

func TestSchemaGenerator_Generate(t *testing.T) {
	t.Parallel()

	b, err := yaml.NewSchemaGenerator(&generatedConfig{}).Generate()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "#/$defs/generatedConfig", got["$ref"])

	// The generated schema must be usable by the validator.
	v, err := yaml.NewValidator("/generated.json", b)
	require.NoError(t, err)
	require.NoError(t, v.ValidateBytes([]byte("name: a\npaths: [x]\n")))
	require.Error(t, v.ValidateBytes([]byte("paths: [x]\n")))
}

func TestSchemaGenerator_ForeignPackage(t *testing.T) {
	t.Parallel()

	_, err := yaml.NewSchemaGenerator(&generatedConfig{}, "example.com/other").Generate()
	require.ErrorContains(t, err, "not in module")
}
