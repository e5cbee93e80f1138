package symbol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/kls/pkg/symbol"
	"github.com/macropower/kls/pkg/yaml"
)

func rng(sl, sc, el, ec int) symbol.Range {
	return symbol.Range{
		Start: symbol.Position{Line: sl, Character: sc},
		End:   symbol.Position{Line: el, Character: ec},
	}
}

func TestContains(t *testing.T) {
	t.Parallel()

	outer := symbol.Symbol{Name: "spec", Range: rng(2, 0, 8, 10)}

	tcs := map[string]struct {
		inner symbol.Range
		want  bool
	}{
		"strictly inside":    {inner: rng(3, 2, 4, 5), want: true},
		"equal range":        {inner: rng(2, 0, 8, 10), want: true},
		"same start":         {inner: rng(2, 0, 3, 0), want: true},
		"same end":           {inner: rng(7, 0, 8, 10), want: true},
		"starts before":      {inner: rng(1, 9, 3, 0)},
		"ends after":         {inner: rng(7, 0, 8, 11)},
		"entirely after":     {inner: rng(9, 0, 9, 4)},
		"earlier char":       {inner: rng(2, 0, 2, 0), want: true},
		"later line, col 0":  {inner: rng(8, 0, 8, 10), want: true},
		"ends on next line":  {inner: rng(8, 0, 9, 0)},
		"starts on prev col": {inner: rng(1, 20, 2, 3)},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			inner := symbol.Symbol{Name: "x", Range: tc.inner}
			assert.Equal(t, tc.want, symbol.Contains(outer, inner))
		})
	}
}

func TestChildrenNamed(t *testing.T) {
	t.Parallel()

	parent := symbol.Symbol{Name: "spec", ContainerName: "$", Range: rng(1, 0, 10, 0)}
	direct := symbol.Symbol{Name: "replicas", ContainerName: "$.spec", Range: rng(2, 2, 2, 13)}
	other := symbol.Symbol{Name: "selector", ContainerName: "$.spec", Range: rng(3, 2, 4, 0)}
	nested := symbol.Symbol{Name: "replicas", ContainerName: "$.spec.template", Range: rng(5, 4, 5, 15)}
	outside := symbol.Symbol{Name: "replicas", ContainerName: "$.spec", Range: rng(11, 2, 11, 13)}
	second := symbol.Symbol{Name: "replicas", ContainerName: "$.spec", Range: rng(8, 2, 8, 13)}

	all := []symbol.Symbol{parent, direct, other, nested, outside, second}

	got := symbol.ChildrenNamed(all, parent, "replicas")
	assert.Equal(t, []symbol.Symbol{direct, second}, got)

	assert.Empty(t, symbol.ChildrenNamed(all, parent, "missing"))
	assert.Empty(t, symbol.ChildrenNamed(nil, parent, "replicas"))

	assert.Equal(t, []symbol.Symbol{direct, other, second}, symbol.Children(all, parent))
}

// hostSymbol stands in for a symbol type owned by an editor host.
type hostSymbol struct {
	name, container string
	r               symbol.Range
}

func (h hostSymbol) GetName() string          { return h.name }
func (h hostSymbol) GetContainerName() string { return h.container }
func (h hostSymbol) GetRange() symbol.Range   { return h.r }

func TestChildrenNamed_HostType(t *testing.T) {
	t.Parallel()

	parent := hostSymbol{name: "metadata", container: "$", r: rng(0, 0, 3, 0)}
	child := hostSymbol{name: "name", container: "$.metadata", r: rng(1, 2, 1, 10)}

	got := symbol.ChildrenNamed([]hostSymbol{parent, child}, parent, "name")
	assert.Equal(t, []hostSymbol{child}, got)
	assert.Equal(t, "$.metadata.name", symbol.QualifiedName(child))
}

func TestChildContainer_NoContainer(t *testing.T) {
	t.Parallel()

	parent := hostSymbol{name: "spec", r: rng(0, 0, 5, 0)}
	dotted := hostSymbol{name: "size", container: ".spec", r: rng(1, 2, 1, 9)}
	bare := hostSymbol{name: "size", container: "spec", r: rng(2, 2, 2, 9)}
	all := []hostSymbol{parent, dotted, bare}

	assert.Equal(t, ".spec", symbol.ChildContainer(parent))
	assert.Equal(t, "spec", symbol.QualifiedName(parent))

	assert.Equal(t, []hostSymbol{dotted}, symbol.ChildrenNamed(all, parent, "size"))
	assert.Equal(t, []hostSymbol{dotted}, symbol.Children(all, parent))

	found, ok := symbol.Find(all, symbol.QualifiedName(parent))
	require.True(t, ok)
	assert.Equal(t, parent, found)
}

func TestQualifiedName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$.kind", symbol.QualifiedName(symbol.Symbol{Name: "kind", ContainerName: "$"}))
	assert.Equal(t, "kind", symbol.QualifiedName(symbol.Symbol{Name: "kind"}))
}

const podYAML = `apiVersion: v1
kind: Pod
metadata:
  name: web
spec:
  containers:
    - name: app
      image: nginx
`

func TestExtract(t *testing.T) {
	t.Parallel()

	docs, lines := yaml.Parse(podYAML)
	syms := symbol.Extract(docs, lines)

	names := make([]string, 0, len(syms))
	for _, s := range syms {
		names = append(names, symbol.QualifiedName(s))
	}

	assert.Equal(t, []string{
		"$.apiVersion",
		"$.kind",
		"$.metadata",
		"$.metadata.name",
		"$.spec",
		"$.spec.containers",
		"$.spec.containers.0",
		"$.spec.containers.0.name",
		"$.spec.containers.0.image",
	}, names)

	kind, ok := symbol.Find(syms, "$.kind")
	require.True(t, ok)
	assert.Equal(t, "Pod", kind.Detail)
	assert.Equal(t, symbol.KindKey, kind.Kind)
	assert.Equal(t, rng(1, 0, 1, 9), kind.Range)

	item, ok := symbol.Find(syms, "$.spec.containers.0")
	require.True(t, ok)
	assert.Equal(t, symbol.KindItem, item.Kind)

	image := symbol.ChildrenNamed(syms, item, "image")
	require.Len(t, image, 1)
	assert.Equal(t, "nginx", image[0].Detail)

	spec, ok := symbol.Find(syms, "$.spec")
	require.True(t, ok)
	assert.Empty(t, symbol.ChildrenNamed(syms, spec, "image"))

	for _, s := range syms {
		assert.True(t, symbol.Contains(s, s))
	}
}

func TestExtract_MultiDocument(t *testing.T) {
	t.Parallel()

	docs, lines := yaml.Parse("kind: A\n---\nkind: B\n")
	syms := symbol.Extract(docs, lines)

	require.Len(t, syms, 2)
	assert.Equal(t, 0, syms[0].Document)
	assert.Equal(t, 1, syms[1].Document)
	assert.Equal(t, "B", syms[1].Detail)
	assert.Equal(t, 2, syms[1].Range.Start.Line)
}

func TestExtract_Empty(t *testing.T) {
	t.Parallel()

	docs, lines := yaml.Parse("")
	assert.Empty(t, symbol.Extract(docs, lines))
}
