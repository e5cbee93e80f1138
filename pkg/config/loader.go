package config

import (
	"bytes"

	"github.com/macropower/kls/api/v1beta1"
	"github.com/macropower/kls/pkg/yaml"
)

// Validator validates configuration data against a schema.
type Validator interface {
	Validate(data any) error
}

// LoaderOpt configures a [Loader].
type LoaderOpt func(*loaderOptions)

type loaderOptions struct {
	validator Validator
}

// WithValidator sets a custom validator.
func WithValidator(v Validator) LoaderOpt {
	return func(o *loaderOptions) {
		o.validator = v
	}
}

// Loader is a generic configuration loader that handles validation,
// YAML parsing, and error formatting for any config type T.
type Loader[T v1beta1.Object] struct {
	validator Validator
	newFunc   func() T
	data      []byte
	errOpts   []yaml.ErrorOpt
}

// NewLoaderFromBytes creates a [Loader] from byte data.
// The newFunc parameter is the constructor for type T (e.g., [New]).
func NewLoaderFromBytes[T v1beta1.Object](
	data []byte,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) *Loader[T] {
	options := &loaderOptions{
		validator: defaultValidator,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Loader[T]{
		data:      data,
		newFunc:   newFunc,
		validator: options.validator,
		errOpts:   []yaml.ErrorOpt{yaml.WithSource(data)},
	}
}

// NewLoaderFromFile creates a [Loader] from a file path.
func NewLoaderFromFile[T v1beta1.Object](
	path string,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) (*Loader[T], error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	l := NewLoaderFromBytes(data, newFunc, defaultValidator, opts...)
	l.errOpts = append(l.errOpts, yaml.WithFile(path))

	return l, nil
}

// Validate validates the configuration data against the schema.
func (l *Loader[T]) Validate() error {
	var anyConfig any

	dec := yaml.NewDecoder(bytes.NewReader(l.data))

	err := dec.Decode(&anyConfig)
	if err != nil {
		return yaml.Annotate(err, l.errOpts...)
	}

	if l.validator != nil {
		err = l.validator.Validate(anyConfig)
		if err != nil {
			return yaml.Annotate(err, l.errOpts...)
		}
	}

	return nil
}

// Load parses and returns the configuration.
//
//nolint:ireturn // Generic type parameter return is intentional.
func (l *Loader[T]) Load() (T, error) {
	cfg := l.newFunc()

	dec := yaml.NewDecoder(bytes.NewReader(l.data))

	err := dec.Decode(cfg)
	if err != nil {
		var zero T
		return zero, yaml.Annotate(err, l.errOpts...)
	}

	cfg.EnsureDefaults()

	return cfg, nil
}

// Load reads, validates, and loads the [Config] at path. The returned
// config has all of its rules compiled.
func Load(path string) (*Config, error) {
	l, err := NewLoaderFromFile(path, New, DefaultValidator)
	if err != nil {
		return nil, err
	}

	err = l.Validate()
	if err != nil {
		return nil, err
	}

	cfg, err := l.Load()
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
