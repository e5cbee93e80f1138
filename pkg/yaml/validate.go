package yaml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator validates decoded YAML against a JSON schema.
// Uses [github.com/santhosh-tekuri/jsonschema/v6].
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the JSON schema in schemaData, registered under url.
func NewValidator(url string, schemaData []byte) (*Validator, error) {
	var schema any

	err := json.Unmarshal(schemaData, &schema)
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()

	err = compiler.AddResource(url, schema)
	if err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	jss, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{schema: jss}, nil
}

func MustNewValidator(url string, schemaData []byte) *Validator {
	v, err := NewValidator(url, schemaData)
	if err != nil {
		panic(err)
	}

	return v
}

// Validate validates already decoded data. Failures are returned as an
// [*Error] whose Path points at the most specific failing location.
func (s *Validator) Validate(data any) error {
	err := s.schema.Validate(data)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("schema validation: %w", err)
	}

	return &Error{
		Err:  validationErr,
		Path: buildPathFromLocation(findMostSpecificLocation(validationErr)),
	}
}

// ValidateBytes decodes YAML data and validates the result. Errors carry the
// source so that they render with the offending lines.
func (s *Validator) ValidateBytes(data []byte) error {
	var v any

	err := NewDecoder(bytes.NewReader(data)).Decode(&v)
	if err != nil {
		return Annotate(err, WithSource(data))
	}

	return Annotate(s.Validate(v), WithSource(data))
}

// findMostSpecificLocation returns the longest InstanceLocation among err
// and its causes.
func findMostSpecificLocation(err *jsonschema.ValidationError) []string {
	longest := err.InstanceLocation

	for _, cause := range err.Causes {
		candidate := findMostSpecificLocation(cause)
		if len(candidate) > len(longest) {
			longest = candidate
		}
	}

	return longest
}

// buildPathFromLocation converts an InstanceLocation to a [yaml.Path].
func buildPathFromLocation(location []string) *yaml.Path {
	current := NewPathBuilder().Root()

	for _, part := range location {
		index, err := strconv.ParseUint(part, 10, 64)
		if err == nil {
			current = current.Index(uint(index))
		} else {
			current = current.Child(part)
		}
	}

	return current.Build()
}
