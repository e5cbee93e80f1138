package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/kls/api/v1beta1"
	"github.com/macropower/kls/pkg/lint"
	"github.com/macropower/kls/pkg/rule"
	"github.com/macropower/kls/pkg/yaml"
)

//go:generate go run ../../internal/schemagen/main.go -o config.v1beta1.json

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	//go:embed config.v1beta1.json
	schemaJSON []byte

	// ValidKinds contains the valid kind values for configurations.
	ValidKinds = []string{"Configuration"}

	// DefaultValidator validates configuration against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/config.v1beta1.json", schemaJSON)

	// ErrDuplicateRule is returned when two rules share a name.
	ErrDuplicateRule = errors.New("duplicate rule name")

	// Compile-time interface checks.
	_ v1beta1.Object = (*Config)(nil)
)

// Config represents the kls configuration.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	// Lint configures the lint pass.
	Lint *LintConfig `json:"lint,omitempty" jsonschema:"title=Lint"`
	// Schemas lists schema files or directories to register. Each schema
	// object carrying `x-kubernetes-group-version-kind` becomes a fragment.
	Schemas          []string `json:"schemas,omitempty" jsonschema:"title=Schemas"`
	v1beta1.TypeMeta `json:",inline"`
}

// LintConfig configures linting.
type LintConfig struct {
	// Disabled lists linter names that are not run.
	Disabled []string `json:"disabled,omitempty" jsonschema:"title=Disabled Linters"`
	// Rules are custom CEL lint rules.
	Rules []*rule.Rule `json:"rules,omitempty" jsonschema:"title=Rules"`
	// Concurrency is the maximum number of files linted at once.
	Concurrency int `json:"concurrency,omitempty" jsonschema:"title=Concurrency,minimum=1"`
}

// New creates a new [Config] with default values.
func New() *Config {
	c := &Config{
		TypeMeta: v1beta1.TypeMeta{
			APIVersion: v1beta1.APIVersion,
			Kind:       "Configuration",
		},
	}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Lint == nil {
		c.Lint = &LintConfig{}
	}

	if c.Lint.Concurrency <= 0 {
		c.Lint.Concurrency = lint.DefaultConcurrency
	}
}

// Validate compiles all rules and checks requirements that cannot be
// expressed in the JSON schema.
func (c *Config) Validate() error {
	err := c.Check(ValidKinds...)
	if err != nil {
		return err
	}

	if c.Lint == nil {
		return nil
	}

	seen := make(map[string]bool, len(c.Lint.Rules))

	var errs []error

	for i, r := range c.Lint.Rules {
		if r == nil {
			errs = append(errs, fmt.Errorf("lint.rules[%d]: rule is empty", i))
			continue
		}

		if seen[r.Name] {
			errs = append(errs, fmt.Errorf("lint.rules[%d]: %w: %q", i, ErrDuplicateRule, r.Name))
			continue
		}

		seen[r.Name] = true

		if r.Severity != "" {
			_, err := lint.ParseSeverity(r.Severity)
			if err != nil {
				errs = append(errs, fmt.Errorf("lint.rules[%d]: %w", i, err))
			}
		}

		err := r.Compile()
		if err != nil {
			errs = append(errs, fmt.Errorf("lint.rules[%d]: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

// Linters returns the configured linters: the built-in set, the gvk linter
// when schemas is non-nil, and the custom rules. Disabled linters and rules
// are removed.
func (c *Config) Linters(schemas lint.SchemaIndex) []lint.Linter {
	linters := lint.Builtin()

	if schemas != nil {
		linters = append(linters, lint.GVK{Schemas: schemas})
	}

	if c.Lint == nil {
		return linters
	}

	rules := make([]*rule.Rule, 0, len(c.Lint.Rules))
	for _, r := range c.Lint.Rules {
		if r != nil && !slices.Contains(c.Lint.Disabled, r.Name) {
			rules = append(rules, r)
		}
	}

	if len(rules) > 0 {
		linters = append(linters, lint.Rules{Rules: rules})
	}

	return lint.Filter(linters, c.Lint.Disabled)
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the config to YAML.
func (c Config) MarshalYAML() ([]byte, error) {
	type alias Config

	b, err := yaml.Marshal(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return b, nil
}

// Schema returns the embedded configuration JSON schema.
func Schema() []byte {
	return schemaJSON
}
