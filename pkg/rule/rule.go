package rule

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/macropower/kls/pkg/expr"
)

var (
	// ErrNotCompiled is returned when a rule is evaluated before [Rule.Compile].
	ErrNotCompiled = errors.New("rule not compiled")
	// ErrEmptyCheck is returned for rules without a check expression.
	ErrEmptyCheck = errors.New("check expression is required")
)

var manifestEnv = sync.OnceValues(expr.NewManifestEnvironment)

// Rule is a custom lint rule.
//
// CEL expressions have access to variables:
//   - `object` (map): The decoded manifest
//   - `apiVersion` (string): The manifest's apiVersion
//   - `kind` (string): The manifest's kind
//   - `source` (string): The raw YAML text of the manifest's document
//   - `file` (string): The path of the file being linted, if any
//
// Both expressions must return a boolean value, for example:
//   - kind == "Deployment" && apiGroup(apiVersion) == "apps"
//   - has(object.metadata.labels) && "app" in object.metadata.labels
//   - yamlPath(source, "$.spec.replicas") != 1
//   - pathDir(file).contains("/prod")
//
// A rule reports a violation when Match is true (or empty) and Check is false.
type Rule struct {
	matchProgram cel.Program
	checkProgram cel.Program

	// Name identifies the rule in diagnostics and in `lint.disabled`.
	Name string `json:"name" jsonschema:"title=Name"`
	// Match is a CEL expression selecting the manifests the rule applies to.
	// An empty match applies the rule to every manifest.
	Match string `json:"match,omitempty" jsonschema:"title=Match Expression"`
	// Check is a CEL expression that must be true for a manifest to pass.
	Check string `json:"check" jsonschema:"title=Check Expression"`
	// Message is reported when the check fails.
	Message string `json:"message,omitempty" jsonschema:"title=Message"`
	// Path is the qualified symbol name the diagnostic is anchored on, e.g.
	// `$.spec.replicas`. Defaults to `$.kind`.
	Path string `json:"path,omitempty" jsonschema:"title=Path"`
	// Severity of reported diagnostics.
	Severity string `json:"severity,omitempty" jsonschema:"title=Severity,enum=error,enum=warning,enum=information,enum=hint"`
}

// Input holds the values bound to a rule's CEL variables.
type Input struct {
	Object     map[string]any
	APIVersion string
	Kind       string
	Source     string
	File       string
}

// New creates a new compiled rule.
func New(name, match, check string) (*Rule, error) {
	r := &Rule{
		Name:  name,
		Match: match,
		Check: check,
	}
	if err := r.Compile(); err != nil {
		return nil, err
	}

	return r, nil
}

// MustNew creates a new rule and panics if there's an error.
func MustNew(name, match, check string) *Rule {
	r, err := New(name, match, check)
	if err != nil {
		panic(err)
	}

	return r
}

// Compile compiles the rule's expressions into CEL programs.
func (r *Rule) Compile() error {
	if r.checkProgram != nil {
		return nil
	}

	if r.Check == "" {
		return fmt.Errorf("rule %q: %w", r.Name, ErrEmptyCheck)
	}

	env, err := manifestEnv()
	if err != nil {
		return fmt.Errorf("rule %q: %w", r.Name, err)
	}

	if r.Match != "" {
		r.matchProgram, err = env.CompileBool(r.Match)
		if err != nil {
			return fmt.Errorf("rule %q: match: %w", r.Name, err)
		}
	}

	r.checkProgram, err = env.CompileBool(r.Check)
	if err != nil {
		return fmt.Errorf("rule %q: check: %w", r.Name, err)
	}

	return nil
}

// Evaluate runs the rule against in and reports whether it is violated.
// Inputs the match expression rejects, or cannot evaluate, never violate
// the rule. A check that cannot be evaluated returns an error.
func (r *Rule) Evaluate(in Input) (bool, error) {
	if r.checkProgram == nil {
		return false, fmt.Errorf("rule %q: %w", r.Name, ErrNotCompiled)
	}

	vars := map[string]any{
		expr.VarObject:     in.Object,
		expr.VarAPIVersion: in.APIVersion,
		expr.VarKind:       in.Kind,
		expr.VarSource:     in.Source,
		expr.VarFile:       in.File,
	}
	if in.Object == nil {
		vars[expr.VarObject] = map[string]any{}
	}

	if r.matchProgram != nil {
		result, _, err := r.matchProgram.Eval(vars)
		if err != nil {
			return false, nil //nolint:nilerr // Failed matches are non-matches.
		}

		if matched, ok := result.Value().(bool); !ok || !matched {
			return false, nil
		}
	}

	result, _, err := r.checkProgram.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("rule %q: evaluate check: %w", r.Name, err)
	}

	passed, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q: %w", r.Name, expr.ErrNotBool)
	}

	return !passed, nil
}

// GetMessage returns the message reported for violations.
func (r *Rule) GetMessage() string {
	if r.Message != "" {
		return r.Message
	}

	return fmt.Sprintf("rule %q failed: %s", r.Name, r.Check)
}

// GetPath returns the qualified symbol name violations are anchored on.
func (r *Rule) GetPath() string {
	if r.Path != "" {
		return r.Path
	}

	return "$.kind"
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s: %s", r.Name, r.Check)
}
