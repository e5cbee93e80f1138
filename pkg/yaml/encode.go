package yaml

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

type Encoder struct {
	e *yaml.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		e: yaml.NewEncoder(w, yaml.Indent(2), yaml.IndentSequence(true)),
	}
}

func (e *Encoder) Encode(v any) error {
	return e.e.Encode(v) //nolint:wrapcheck // Return the original error.
}

func (e *Encoder) Close() error {
	return e.e.Close() //nolint:wrapcheck // Return the original error.
}

// Marshal encodes v as YAML using the same settings as [NewEncoder].
func Marshal(v any) ([]byte, error) {
	b := &bytes.Buffer{}

	enc := NewEncoder(b)

	err := enc.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return nil, fmt.Errorf("close yaml encoder: %w", err)
	}

	return b.Bytes(), nil
}
