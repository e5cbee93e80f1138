package yaml

import (
	"bytes"
	"errors"
	"io"

	"github.com/goccy/go-yaml"
)

type Decoder struct {
	d *yaml.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		d: yaml.NewDecoder(r, yaml.AllowDuplicateMapKey()),
	}
}

// Decode decodes the next YAML document into v. Syntax errors are returned
// as an [*Error] pointing at the offending token.
func (d *Decoder) Decode(v any) error {
	err := d.d.Decode(v)
	if err == nil {
		return nil
	}

	var yamlErr yaml.Error
	if errors.As(err, &yamlErr) {
		return &Error{
			Err:   errors.New(yamlErr.GetMessage()),
			Token: yamlErr.GetToken(),
		}
	}

	//nolint:wrapcheck // Return the original error if it's not a [yaml.Error].
	return err
}

// Unmarshal decodes the first YAML (or JSON) document in data into v.
func Unmarshal(data []byte, v any) error {
	return NewDecoder(bytes.NewReader(data)).Decode(v)
}
