package expr_test

import (
	"math"
	"testing"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/kls/pkg/expr"
)

const deploymentSource = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  replicas: 3
  template:
    spec:
      containers:
        - name: app
          image: nginx
`

func manifestVars() map[string]any {
	return map[string]any{
		expr.VarObject: map[string]any{
			"apiVersion": "apps/v1",
			"kind":       "Deployment",
			"metadata":   map[string]any{"name": "web"},
			"spec":       map[string]any{"replicas": int64(3)},
		},
		expr.VarAPIVersion: "apps/v1",
		expr.VarKind:       "Deployment",
		expr.VarSource:     deploymentSource,
		expr.VarFile:       "/deploy/base/deployment.yaml",
	}
}

func TestManifestEnvironment(t *testing.T) {
	t.Parallel()

	env, err := expr.NewManifestEnvironment()
	require.NoError(t, err)

	tcs := map[string]struct {
		expression string
		want       bool
	}{
		"kind equality": {
			expression: `kind == "Deployment"`,
			want:       true,
		},
		"object field": {
			expression: `object.metadata.name == "web"`,
			want:       true,
		},
		"has macro": {
			expression: `has(object.spec.replicas) && object.spec.replicas > 1`,
			want:       true,
		},
		"missing field": {
			expression: `has(object.status)`,
			want:       false,
		},
		"apiGroup": {
			expression: `apiGroup(apiVersion) == "apps"`,
			want:       true,
		},
		"apiGroup core": {
			expression: `apiGroup("v1") == ""`,
			want:       true,
		},
		"apiVersionOf": {
			expression: `apiVersion == apiVersionOf("apps", "v1")`,
			want:       true,
		},
		"apiVersionOf core": {
			expression: `apiVersionOf("", "v1") == "v1"`,
			want:       true,
		},
		"yamlPath nested": {
			expression: `yamlPath(source, "$.spec.template.spec.containers[0].image") == "nginx"`,
			want:       true,
		},
		"yamlPath numeric": {
			expression: `yamlPath(source, "$.spec.replicas") == 3`,
			want:       true,
		},
		"yamlPath missing": {
			expression: `yamlPath(source, "$.status") == null`,
			want:       true,
		},
		"yamlPath invalid path": {
			expression: `yamlPath(source, "not a path") == null`,
			want:       true,
		},
		"path functions": {
			expression: `pathBase(file) == "deployment.yaml" && pathExt(file) == ".yaml" && pathDir(file).endsWith("/base")`,
			want:       true,
		},
		"strings extension": {
			expression: `kind.lowerAscii() == "deployment"`,
			want:       true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			program, err := env.CompileBool(tc.expression)
			require.NoError(t, err)

			result, _, err := program.Eval(manifestVars())
			require.NoError(t, err)

			got, ok := result.Value().(bool)
			require.True(t, ok, "result should be a boolean")
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestManifestEnvironment_Errors(t *testing.T) {
	t.Parallel()

	env, err := expr.NewManifestEnvironment()
	require.NoError(t, err)

	tcs := map[string]struct {
		expression string
		wantErr    error
		evalErr    bool
	}{
		"syntax error": {
			expression: `kind ==`,
		},
		"unknown variable": {
			expression: `files.size() > 0`,
		},
		"wrong argument type": {
			expression: `pathBase(42) == ""`,
		},
		"not a boolean": {
			expression: `kind + "x"`,
			wantErr:    expr.ErrNotBool,
		},
		"missing version": {
			expression: `apiVersionOf("apps", "") == ""`,
			evalErr:    true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			program, err := env.CompileBool(tc.expression)
			if !tc.evalErr {
				require.Error(t, err)

				if tc.wantErr != nil {
					require.ErrorIs(t, err, tc.wantErr)
				}

				return
			}

			require.NoError(t, err)

			_, _, err = program.Eval(manifestVars())
			require.Error(t, err)
		})
	}
}

func TestEnvironment_Compile(t *testing.T) {
	t.Parallel()

	env := expr.MustNewEnvironment(cel.Variable("name", cel.StringType))

	program, err := env.Compile(`name.upperAscii()`)
	require.NoError(t, err)

	result, _, err := program.Eval(map[string]any{"name": "pod"})
	require.NoError(t, err)
	assert.Equal(t, "POD", result.Value())
}

func TestEnvironment_Concurrent(t *testing.T) {
	t.Parallel()

	env, err := expr.NewManifestEnvironment()
	require.NoError(t, err)

	for range 8 {
		t.Run("compile", func(t *testing.T) {
			t.Parallel()

			_, err := env.CompileBool(`kind == "Pod"`)
			assert.NoError(t, err)
		})
	}
}

func TestConvertToCELValue(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input    any
		expected any
		isNull   bool
	}{
		"nil value":       {input: nil, isNull: true},
		"bool":            {input: true, expected: true},
		"int":             {input: 42, expected: int64(42)},
		"int32":           {input: int32(42), expected: int64(42)},
		"uint64":          {input: uint64(42), expected: int64(42)},
		"uint64 overflow": {input: uint64(math.MaxUint64), expected: float64(math.MaxUint64)},
		"float64":         {input: 3.14159, expected: 3.14159},
		"string":          {input: "hello world", expected: "hello world"},
		"unsupported":     {input: complex(1, 2), isNull: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			result := expr.ConvertToCELValue(tc.input)

			if tc.isNull {
				assert.Equal(t, types.NullValue, result)

				return
			}

			switch expected := tc.expected.(type) {
			case float64:
				floatVal, ok := result.Value().(float64)
				require.True(t, ok)
				assert.InDelta(t, expected, floatVal, 0.01)
			default:
				assert.Equal(t, expected, result.Value())
			}
		})
	}
}

func TestConvertToCELValue_Collections(t *testing.T) {
	t.Parallel()

	list := expr.ConvertToCELValue([]any{1, "hello", true, nil})
	assert.Equal(t, "list", list.Type().TypeName())

	anyMap := expr.ConvertToCELValue(map[any]any{"key1": "value1", 42: "value2"})
	assert.Equal(t, "map", anyMap.Type().TypeName())

	strMap := expr.ConvertToCELValue(map[string]any{"nested": map[string]any{"inner": "value"}})
	assert.Equal(t, "map", strMap.Type().TypeName())
}
