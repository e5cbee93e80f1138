package yaml

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

func NewPathBuilder() *yaml.PathBuilder {
	return &yaml.PathBuilder{}
}

// Error is a decode or validation error located in a YAML source, either by
// the [*token.Token] the decoder stopped at or by the [*yaml.Path] of the
// offending value.
type Error struct {
	Err    error
	Path   *yaml.Path
	Token  *token.Token
	File   string
	Source []byte
}

func NewError(err error, opts ...ErrorOpt) *Error {
	e := &Error{Err: err}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

type ErrorOpt func(e *Error)

func WithPath(path *yaml.Path) ErrorOpt {
	return func(e *Error) {
		e.Path = path
	}
}

func WithToken(tk *token.Token) ErrorOpt {
	return func(e *Error) {
		e.Token = tk
	}
}

// WithSource attaches the YAML text, used to locate paths and to render the
// offending lines.
func WithSource(source []byte) ErrorOpt {
	return func(e *Error) {
		e.Source = source
	}
}

// WithFile names the file the source was read from.
func WithFile(name string) ErrorOpt {
	return func(e *Error) {
		e.File = name
	}
}

// Annotate applies opts to err if it is an [*Error] and returns it. Other
// errors are returned unmodified.
func Annotate(err error, opts ...ErrorOpt) error {
	var yamlErr *Error
	if !errors.As(err, &yamlErr) {
		return err
	}

	for _, opt := range opts {
		opt(yamlErr)
	}

	return yamlErr
}

func (e Error) Unwrap() error {
	return e.Err
}

// Position returns the 1-based line and column of the error. Path errors are
// located by resolving the path against the source.
func (e Error) Position() (int, int, bool) {
	if e.Token != nil {
		return e.Token.Position.Line, e.Token.Position.Column, true
	}

	if e.Path == nil || len(e.Source) == 0 {
		return 0, 0, false
	}

	file, err := parser.ParseBytes(e.Source, 0)
	if err != nil {
		return 0, 0, false
	}

	node, err := e.Path.FilterFile(file)
	if err != nil || node == nil || node.GetToken() == nil {
		return 0, 0, false
	}

	pos := node.GetToken().Position

	return pos.Line, pos.Column, true
}

func (e Error) Error() string {
	if e.Err == nil {
		return ""
	}

	var b strings.Builder

	line, col, located := e.Position()

	switch {
	case e.File != "" && located:
		fmt.Fprintf(&b, "%s:%d:%d: ", e.File, line, col)
	case e.File != "":
		b.WriteString(e.File + ": ")
	case e.Token != nil:
		fmt.Fprintf(&b, "[%d:%d] ", line, col)
	}

	if e.Path == nil {
		b.WriteString(e.Err.Error())

		return b.String()
	}

	fmt.Fprintf(&b, "error at %s: %v", e.Path.String(), e.Err)

	if len(e.Source) == 0 {
		return b.String()
	}

	annotated, err := e.Path.AnnotateSource(e.Source, false)
	if err != nil {
		slog.Debug("annotate source",
			slog.String("path", e.Path.String()),
			slog.Any("error", err),
		)

		return b.String()
	}

	return b.String() + "\n" + string(annotated)
}
