package yaml

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tsyaml "github.com/smacker/go-tree-sitter/yaml"
)

// Node kinds produced by the tree-sitter YAML grammar that the tree cares about.
const (
	KindStream            = "stream"
	KindDocument          = "document"
	KindBlockNode         = "block_node"
	KindFlowNode          = "flow_node"
	KindBlockMapping      = "block_mapping"
	KindBlockMappingPair  = "block_mapping_pair"
	KindFlowMapping       = "flow_mapping"
	KindFlowPair          = "flow_pair"
	KindBlockSequence     = "block_sequence"
	KindBlockSequenceItem = "block_sequence_item"
	KindFlowSequence      = "flow_sequence"
	KindPlainScalar       = "plain_scalar"
	KindDoubleQuoteScalar = "double_quote_scalar"
	KindSingleQuoteScalar = "single_quote_scalar"
	KindBlockScalar       = "block_scalar"
	KindAnchor            = "anchor"
	KindAlias             = "alias"
	KindTag               = "tag"
	KindComment           = "comment"
	KindError             = "ERROR"
)

// Node is a single syntax node of a parsed YAML text.
//
// Start and End are byte offsets into the text passed to [Parse], forming the
// half-open range [Start, End). A Node never changes after [Parse] returns.
type Node struct {
	parent   *Node
	key      *Node
	value    *Node
	Kind     string
	Raw      string
	children []*Node
	Start    int
	End      int
	index    int
}

// Parent returns the enclosing node, or nil for a document root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the named child nodes in source order.
func (n *Node) Children() []*Node {
	return n.children
}

// Contains reports whether offset lies within [Start, End).
func (n *Node) Contains(offset int) bool {
	return n.Start <= offset && offset < n.End
}

// Index returns the position of a sequence item within its sequence,
// or -1 if the node is not a sequence item.
func (n *Node) Index() int {
	return n.index
}

// KeyNode returns the key of a mapping pair, or nil.
func (n *Node) KeyNode() *Node {
	return n.key
}

// ValueNode returns the value of a mapping pair, or nil.
func (n *Node) ValueNode() *Node {
	return n.value
}

// Key returns the scalar text of a mapping pair's key.
func (n *Node) Key() (string, bool) {
	if n.key == nil {
		return "", false
	}

	return n.key.Scalar()
}

// IsPair reports whether the node is a block or flow mapping pair.
func (n *Node) IsPair() bool {
	return n.Kind == KindBlockMappingPair || n.Kind == KindFlowPair
}

// IsSequenceItem reports whether the node is an entry of a block or flow sequence.
func (n *Node) IsSequenceItem() bool {
	return n.index >= 0
}

// Content skips document, block_node, flow_node and sequence item wrappers
// (and any anchors or tags they carry) and returns the node holding the
// actual mapping, sequence or scalar.
func (n *Node) Content() *Node {
	cur := n
	for {
		switch cur.Kind {
		case KindDocument, KindBlockNode, KindFlowNode, KindBlockSequenceItem:
		default:
			return cur
		}

		var next *Node

		for _, c := range cur.children {
			if c.Kind != KindAnchor && c.Kind != KindTag {
				next = c

				break
			}
		}

		if next == nil {
			return cur
		}

		cur = next
	}
}

// Pairs returns the mapping pairs of a mapping node (after [Node.Content]).
func (n *Node) Pairs() []*Node {
	c := n.Content()
	if c.Kind != KindBlockMapping && c.Kind != KindFlowMapping {
		return nil
	}

	pairs := make([]*Node, 0, len(c.children))
	for _, child := range c.children {
		if child.IsPair() {
			pairs = append(pairs, child)
		}
	}

	return pairs
}

// Items returns the entries of a sequence node (after [Node.Content]).
func (n *Node) Items() []*Node {
	c := n.Content()
	if c.Kind != KindBlockSequence && c.Kind != KindFlowSequence {
		return nil
	}

	items := make([]*Node, 0, len(c.children))
	for _, child := range c.children {
		if child.IsSequenceItem() {
			items = append(items, child)
		}
	}

	return items
}

// Lookup returns the value node of the pair with the given key in a mapping node.
func (n *Node) Lookup(key string) (*Node, bool) {
	for _, pair := range n.Pairs() {
		if k, ok := pair.Key(); ok && k == key {
			return pair.value, pair.value != nil
		}
	}

	return nil, false
}

// Scalar returns the unquoted text of a scalar node (after [Node.Content]).
func (n *Node) Scalar() (string, bool) {
	c := n.Content()

	switch c.Kind {
	case KindPlainScalar, KindAlias:
		return strings.TrimSpace(c.Raw), true

	case KindDoubleQuoteScalar:
		s, err := strconv.Unquote(c.Raw)
		if err != nil {
			return strings.Trim(c.Raw, `"`), true
		}

		return s, true

	case KindSingleQuoteScalar:
		s := strings.TrimSuffix(strings.TrimPrefix(c.Raw, "'"), "'")

		return strings.ReplaceAll(s, "''", "'"), true

	case KindBlockScalar:
		_, body, _ := strings.Cut(c.Raw, "\n")

		return body, true
	}

	return "", false
}

// Segments returns the keys and sequence indices leading from the document
// root to the node, e.g. ["spec", "containers", "0", "image"].
func (n *Node) Segments() []string {
	var segments []string

	for cur := n; cur != nil; cur = cur.parent {
		switch {
		case cur.IsPair():
			key, _ := cur.Key()
			segments = append(segments, key)

		case cur.IsSequenceItem():
			segments = append(segments, strconv.Itoa(cur.index))
		}
	}

	slices.Reverse(segments)

	return segments
}

// Path returns the YAML path of the node, e.g. "$.spec.containers[0].image".
func (n *Node) Path() string {
	var segments []string

	for cur := n; cur != nil; cur = cur.parent {
		switch {
		case cur.IsPair():
			key, _ := cur.Key()
			segments = append(segments, "."+key)

		case cur.IsSequenceItem():
			segments = append(segments, fmt.Sprintf("[%d]", cur.index))
		}
	}

	slices.Reverse(segments)

	return "$" + strings.Join(segments, "")
}

// Document is one YAML document of a (possibly multi-document) text.
type Document struct {
	Root *Node
	// Errors lists the syntax problems of the document, in source order.
	Errors []string
	// Problems holds the same problems as Errors together with their ranges.
	Problems []Problem
	nodes    []*Node
}

// Problem is a recoverable syntax problem.
type Problem struct {
	Message string
	Start   int
	End     int
}

func newDocument(root *Node, problems []Problem) *Document {
	d := &Document{Root: root, Problems: problems}
	for _, p := range problems {
		d.Errors = append(d.Errors, p.Message)
	}

	var walk func(n *Node)

	walk = func(n *Node) {
		d.nodes = append(d.nodes, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)

	return d
}

// Nodes returns every node of the document in pre-order.
func (d *Document) Nodes() []*Node {
	return d.nodes
}

// Value returns the scalar value of a top-level mapping key.
func (d *Document) Value(key string) (string, bool) {
	v, ok := d.Root.Lookup(key)
	if !ok {
		return "", false
	}

	return v.Scalar()
}

// Match is the result of a successful position lookup.
type Match struct {
	Node     *Node
	Document *Document
}

// Parse parses text into its YAML documents and returns them together with
// the line table of text.
//
// Parse does not fail. Malformed input produces documents for whatever could
// be recovered, with the problems listed in [Document.Errors].
func Parse(text string) ([]*Document, Lines) {
	lines := NewLines(text)
	if text == "" {
		return []*Document{}, lines
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(tsyaml.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(text))
	if err != nil {
		root := &Node{Kind: KindStream, Raw: text, End: len(text), index: -1}

		return []*Document{newDocument(root, []Problem{{
			Message: fmt.Sprintf("parse yaml: %v", err),
			End:     len(text),
		}})}, lines
	}
	defer tree.Close()

	b := &builder{text: text, lines: lines}
	stream := tree.RootNode()

	if stream.Type() != KindStream {
		b.errs = nil
		root := b.convert(stream, nil)

		return []*Document{newDocument(root, b.errs)}, lines
	}

	docs := []*Document{}

	for i := range int(stream.ChildCount()) {
		child := stream.Child(i)
		if child == nil {
			continue
		}

		if child.IsMissing() {
			b.errs = nil
			b.missing(child)
			root := b.newNode(child, nil)

			docs = append(docs, newDocument(root, b.errs))

			continue
		}

		if !child.IsNamed() || child.Type() == KindComment {
			continue
		}

		b.errs = nil
		root := b.convert(child, nil)

		docs = append(docs, newDocument(root, b.errs))
	}

	return docs, lines
}

// FindNodeAtPosition returns the most specific node containing the zero-based
// (line, char) position.
//
// It returns false when the position does not map to an offset of the text,
// or when no node contains that offset.
func FindNodeAtPosition(docs []*Document, lines Lines, line, char int) (Match, bool) {
	offset, ok := lines.Offset(line, char)
	if !ok {
		return Match{}, false
	}

	for _, doc := range docs {
		if doc.Root == nil || !doc.Root.Contains(offset) {
			continue
		}

		var best *Node

		for _, n := range doc.nodes {
			if !n.Contains(offset) {
				continue
			}

			if best == nil || n.Start > best.Start || (n.Start == best.Start && n.End <= best.End) {
				best = n
			}
		}

		if best != nil {
			return Match{Node: best, Document: doc}, true
		}
	}

	return Match{}, false
}

type builder struct {
	text  string
	errs  []Problem
	lines Lines
}

func (b *builder) newNode(ts *sitter.Node, parent *Node) *Node {
	start := b.clamp(int(ts.StartByte()))
	end := max(b.clamp(int(ts.EndByte())), start)

	return &Node{
		Kind:   ts.Type(),
		Raw:    b.text[start:end],
		Start:  start,
		End:    end,
		parent: parent,
		index:  -1,
	}
}

func (b *builder) convert(ts *sitter.Node, parent *Node) *Node {
	n := b.newNode(ts, parent)

	if ts.IsError() && (parent == nil || parent.Kind != KindError) {
		line, col := b.lines.Position(n.Start)
		b.errs = append(b.errs, Problem{
			Message: fmt.Sprintf("syntax error at %d:%d", line+1, col+1),
			Start:   n.Start,
			End:     n.End,
		})
	}

	var keyTS, valueTS *sitter.Node
	if n.Kind == KindBlockMappingPair || n.Kind == KindFlowPair {
		keyTS = ts.ChildByFieldName("key")
		valueTS = ts.ChildByFieldName("value")
	}

	itemIndex := 0

	for i := range int(ts.ChildCount()) {
		child := ts.Child(i)
		if child == nil {
			continue
		}

		if child.IsMissing() {
			b.missing(child)

			continue
		}

		if !child.IsNamed() || child.Type() == KindComment {
			continue
		}

		c := b.convert(child, n)

		switch {
		case sameNode(child, keyTS):
			n.key = c

		case sameNode(child, valueTS):
			n.value = c
		}

		if n.Kind == KindBlockSequence && c.Kind == KindBlockSequenceItem ||
			n.Kind == KindFlowSequence && c.Kind != KindError {
			c.index = itemIndex
			itemIndex++
		}

		n.children = append(n.children, c)
	}

	return n
}

func (b *builder) missing(ts *sitter.Node) {
	offset := b.clamp(int(ts.StartByte()))
	line, col := b.lines.Position(offset)
	b.errs = append(b.errs, Problem{
		Message: fmt.Sprintf("missing %q at %d:%d", ts.Type(), line+1, col+1),
		Start:   offset,
		End:     offset,
	})
}

func (b *builder) clamp(offset int) int {
	return min(max(offset, 0), len(b.text))
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}

	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
