package expr

import (
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/macropower/kls/pkg/kube"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Math(),
		ext.Strings(),
		ext.Lists(),

		// `pathBase` returns the last element of the path.
		// Example: pathBase(file) in ["kustomization.yaml", "Chart.yaml"].
		cel.Function("pathBase",
			cel.Overload("path_base", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(path ref.Val) ref.Val {
					pathValue, ok := path.(types.String).Value().(string)
					if !ok {
						return types.NewErr("pathBase: invalid string value")
					}

					return types.String(filepath.Base(pathValue))
				}),
			),
		),

		// `pathDir` returns all but the last element of the path.
		// Example: pathDir(file).contains("/templates").
		cel.Function("pathDir",
			cel.Overload("path_dir", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(path ref.Val) ref.Val {
					pathValue, ok := path.(types.String).Value().(string)
					if !ok {
						return types.NewErr("pathDir: invalid string value")
					}

					return types.String(filepath.Dir(pathValue))
				}),
			),
		),

		// `pathExt` returns the file extension of the path.
		// Example: pathExt(file) == ".yml".
		cel.Function("pathExt",
			cel.Overload("path_ext", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(path ref.Val) ref.Val {
					pathValue, ok := path.(types.String).Value().(string)
					if !ok {
						return types.NewErr("pathExt: invalid string value")
					}

					return types.String(filepath.Ext(pathValue))
				}),
			),
		),

		// `yamlPath` extracts a value from YAML text using a YAML path.
		// Returns null if the path doesn't exist or the text can't be parsed.
		// Example: yamlPath(source, "$.spec.replicas") > 1.
		cel.Function("yamlPath",
			cel.Overload("yaml_path", []*cel.Type{cel.StringType, cel.StringType}, cel.DynType,
				cel.BinaryBinding(func(text, yamlPathExpr ref.Val) ref.Val {
					textStr, ok := text.(types.String).Value().(string)
					if !ok {
						return types.NewErr("yamlPath: invalid text")
					}

					yamlPathStr, ok := yamlPathExpr.(types.String).Value().(string)
					if !ok {
						return types.NewErr("yamlPath: invalid yaml path")
					}

					logger := slog.With(slog.String("yamlPath", yamlPathStr))

					path, err := yaml.PathString(yamlPathStr)
					if err != nil {
						logger.Debug("invalid YAML path, returning null",
							slog.Any("error", err),
						)

						return types.NullValue
					}

					var value any

					err = path.Read(strings.NewReader(textStr), &value)
					if err != nil {
						logger.Debug("failed to extract value from YAML, returning null",
							slog.Any("error", err),
						)

						return types.NullValue
					}

					return ConvertToCELValue(value)
				}),
			),
		),

		// `apiGroup` returns the API group of an apiVersion, or "" for the core group.
		// Example: apiGroup(apiVersion) == "apps".
		cel.Function("apiGroup",
			cel.Overload("api_group", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(apiVersion ref.Val) ref.Val {
					v, ok := apiVersion.(types.String).Value().(string)
					if !ok {
						return types.NewErr("apiGroup: invalid string value")
					}

					group, _, found := strings.Cut(v, "/")
					if !found {
						return types.String("")
					}

					return types.String(group)
				}),
			),
		),

		// `apiVersionOf` returns the apiVersion that manifests of the given
		// group and version declare.
		// Example: apiVersion == apiVersionOf("apps", "v1").
		cel.Function("apiVersionOf",
			cel.Overload("api_version_of", []*cel.Type{cel.StringType, cel.StringType}, cel.StringType,
				cel.BinaryBinding(func(group, version ref.Val) ref.Val {
					g, ok := group.(types.String).Value().(string)
					if !ok {
						return types.NewErr("apiVersionOf: invalid group")
					}

					v, ok := version.(types.String).Value().(string)
					if !ok {
						return types.NewErr("apiVersionOf: invalid version")
					}

					id, err := kube.Resolve(kube.GroupVersionKind{Group: g, Version: v, Kind: "Unknown"})
					if err != nil {
						return types.NewErr("apiVersionOf: %v", err)
					}

					return types.String(id.APIVersion)
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

// ConvertToCELValue converts a Go value to a CEL value.
// Handles common YAML types and returns null for unsupported types.
//
//nolint:ireturn // Following CEL's function signature.
func ConvertToCELValue(value any) ref.Val {
	switch v := value.(type) {
	case nil:
		return types.NullValue

	case bool:
		return types.Bool(v)

	case int:
		return types.Int(v)

	case int8:
		return types.Int(int64(v))

	case int16:
		return types.Int(int64(v))

	case int32:
		return types.Int(int64(v))

	case int64:
		return types.Int(v)

	case uint:
		// Check for overflow when converting to int64.
		if v > math.MaxInt64 {
			return types.Double(float64(v))
		}

		return types.Int(int64(v))

	case uint8:
		return types.Int(int64(v))

	case uint16:
		return types.Int(int64(v))

	case uint32:
		return types.Int(int64(v))

	case uint64:
		// Check for overflow when converting to int64.
		if v > math.MaxInt64 {
			return types.Double(float64(v))
		}

		return types.Int(int64(v))

	case float32:
		return types.Double(float64(v))

	case float64:
		return types.Double(v)

	case string:
		return types.String(v)

	case []any:
		// Convert slice to CEL list.
		celValues := make([]ref.Val, len(v))
		for i, item := range v {
			celValues[i] = ConvertToCELValue(item)
		}

		return types.NewDynamicList(types.DefaultTypeAdapter, celValues)

	case map[any]any:
		// Convert map to CEL map.
		celMap := make(map[ref.Val]ref.Val)
		for key, val := range v {
			celKey := ConvertToCELValue(key)
			celVal := ConvertToCELValue(val)
			celMap[celKey] = celVal
		}

		return types.NewDynamicMap(types.DefaultTypeAdapter, celMap)

	case map[string]any:
		// Convert string map to CEL map.
		celMap := make(map[ref.Val]ref.Val)
		for key, val := range v {
			celKey := types.String(key)
			celVal := ConvertToCELValue(val)
			celMap[celKey] = celVal
		}

		return types.NewDynamicMap(types.DefaultTypeAdapter, celMap)

	default:
		// For unsupported types, return null instead of erroring.
		return types.NullValue
	}
}
