package symbol

import (
	"fmt"
)

// Root is the container name of top-level symbols.
const Root = "$"

// Position is a zero-based line and character in a document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Before reports whether p comes strictly before o.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}

	return p.Character < o.Character
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// Range is an interval of document positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether o lies within r, boundaries included.
func (r Range) Contains(o Range) bool {
	return !o.Start.Before(r.Start) && !r.End.Before(o.End)
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Info is the shape of a document symbol.
type Info interface {
	GetName() string
	// GetContainerName returns the dotted path of the enclosing symbol.
	GetContainerName() string
	GetRange() Range
}

// Kind classifies a [Symbol].
type Kind string

const (
	KindKey  Kind = "key"
	KindItem Kind = "item"
)

// Symbol is a mapping key or sequence item in a YAML document.
type Symbol struct {
	Name          string `json:"name"`
	ContainerName string `json:"containerName"`
	Kind          Kind   `json:"kind"`
	// Detail holds the scalar value, if the symbol's value is a scalar.
	Detail string `json:"detail,omitempty"`
	Range  Range  `json:"range"`
	// Document is the index of the YAML document the symbol belongs to.
	Document int `json:"document"`
}

func (s Symbol) GetName() string          { return s.Name }
func (s Symbol) GetContainerName() string { return s.ContainerName }
func (s Symbol) GetRange() Range          { return s.Range }

// Contains reports whether inner's range is enclosed by outer's range,
// boundaries included. Document identity is not compared.
func Contains[S Info](outer, inner S) bool {
	return outer.GetRange().Contains(inner.GetRange())
}

// QualifiedName returns the container name and name of s joined by a dot,
// or the bare name when s has no container. It names s itself; the
// container name of its children is [ChildContainer].
func QualifiedName(s Info) string {
	if s.GetContainerName() == "" {
		return s.GetName()
	}

	return s.GetContainerName() + "." + s.GetName()
}

// ChildrenNamed returns the symbols in all called name that are direct
// structural children of parent. A symbol qualifies when its container name
// is exactly the qualified name of parent and its range is contained by
// parent's range. Results keep the order of all.
func ChildrenNamed[S Info](all []S, parent S, name string) []S {
	container := ChildContainer(parent)

	var out []S

	for _, s := range all {
		if s.GetName() != name || s.GetContainerName() != container {
			continue
		}

		if Contains(parent, s) {
			out = append(out, s)
		}
	}

	return out
}

// ChildContainer returns the container name that direct children of parent
// carry: the container name and name of parent joined by a dot. Unlike
// [QualifiedName] the dot is kept when parent has no container, so a parent
// named "spec" without a container has children in ".spec".
func ChildContainer(parent Info) string {
	return parent.GetContainerName() + "." + parent.GetName()
}

// Children returns every direct structural child of parent, in the order of all.
func Children[S Info](all []S, parent S) []S {
	container := ChildContainer(parent)

	var out []S

	for _, s := range all {
		if s.GetContainerName() == container && Contains(parent, s) {
			out = append(out, s)
		}
	}

	return out
}

// Find returns the first symbol in all whose qualified name is qualified.
func Find[S Info](all []S, qualified string) (S, bool) {
	for _, s := range all {
		if QualifiedName(s) == qualified {
			return s, true
		}
	}

	var zero S

	return zero, false
}
