package symbol

import (
	"strconv"

	"github.com/macropower/kls/pkg/yaml"
)

// Extract returns a symbol for every mapping pair and sequence item in docs,
// in document order. Pairs are named by their key and items by their index.
func Extract(docs []*yaml.Document, lines yaml.Lines) []Symbol {
	var out []Symbol

	for i, doc := range docs {
		if doc.Root == nil {
			continue
		}

		e := extractor{lines: lines, document: i}
		e.walk(doc.Root, Root)
		out = append(out, e.symbols...)
	}

	return out
}

type extractor struct {
	symbols  []Symbol
	lines    yaml.Lines
	document int
}

func (e *extractor) walk(n *yaml.Node, container string) {
	for _, pair := range n.Pairs() {
		key, ok := pair.Key()
		if !ok {
			continue
		}

		e.add(pair, key, container, KindKey, pair.ValueNode())

		if v := pair.ValueNode(); v != nil {
			e.walk(v, container+"."+key)
		}
	}

	for _, item := range n.Items() {
		name := strconv.Itoa(item.Index())
		e.add(item, name, container, KindItem, item)
		e.walk(item, container+"."+name)
	}
}

func (e *extractor) add(n *yaml.Node, name, container string, kind Kind, value *yaml.Node) {
	s := Symbol{
		Name:          name,
		ContainerName: container,
		Kind:          kind,
		Range:         e.rangeOf(n),
		Document:      e.document,
	}

	if value != nil {
		if detail, ok := value.Scalar(); ok {
			s.Detail = detail
		}
	}

	e.symbols = append(e.symbols, s)
}

func (e *extractor) rangeOf(n *yaml.Node) Range {
	startLine, startChar := e.lines.Position(n.Start)
	endLine, endChar := e.lines.Position(n.End)

	return Range{
		Start: Position{Line: startLine, Character: startChar},
		End:   Position{Line: endLine, Character: endChar},
	}
}
