package yaml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/kls/pkg/yaml"
)

const deploymentYAML = `apiVersion: apps/v1
kind: 'Deployment'
metadata:
  name: web
spec:
  template:
    spec:
      containers:
        - name: app
          image: "nginx:1.27"
        - name: sidecar
          image: busybox
`

func TestLines(t *testing.T) {
	t.Parallel()

	lines := yaml.NewLines("a\r\nbb\n\nccc")

	assert.Equal(t, 4, lines.Len())
	assert.Equal(t, []int{1, 2, 0, 3}, lines.Lengths())

	tcs := map[string]struct {
		line, char int
		want       int
		ok         bool
	}{
		"start of text":       {line: 0, char: 0, want: 0, ok: true},
		"end of crlf line":    {line: 0, char: 1, want: 1, ok: true},
		"after crlf":          {line: 1, char: 0, want: 3, ok: true},
		"empty line":          {line: 2, char: 0, want: 6, ok: true},
		"end of text":         {line: 3, char: 3, want: 10, ok: true},
		"past line length":    {line: 1, char: 3},
		"past last line":      {line: 4, char: 0},
		"negative line":       {line: -1, char: 0},
		"negative character":  {line: 0, char: -1},
		"inside empty line 2": {line: 2, char: 1},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := lines.Offset(tc.line, tc.char)
			assert.Equal(t, tc.ok, ok)

			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}

	line, char := lines.Position(4)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, char)

	line, char = lines.Position(100)
	assert.Equal(t, 3, line)
	assert.Equal(t, 3, char)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	docs, lines := yaml.Parse("")
	assert.Empty(t, docs)
	assert.Equal(t, 1, lines.Len())

	_, ok := yaml.FindNodeAtPosition(docs, lines, 0, 0)
	assert.False(t, ok)
}

func TestParse_Invariants(t *testing.T) {
	t.Parallel()

	inputs := map[string]string{
		"empty":          "",
		"deployment":     deploymentYAML,
		"multi document": "kind: A\n---\nkind: B\n",
		"unclosed flow":  "key: [unclosed\n",
		"only separator": "---\n",
		"comment only":   "# nothing here\n",
		"crlf":           "kind: Pod\r\nmetadata:\r\n  name: x\r\n",
		"binary garbage": "\x00\xff\xfe: [\x01\n\t- :::\x7f",
		"bad indentation": `a:
  b: 1
 c: 2
`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			docs, _ := yaml.Parse(input)
			for _, doc := range docs {
				require.NotNil(t, doc.Root)

				for _, n := range doc.Nodes() {
					assert.GreaterOrEqual(t, n.Start, 0)
					assert.LessOrEqual(t, n.Start, n.End)
					assert.LessOrEqual(t, n.End, len(input))
					assert.Equal(t, input[n.Start:n.End], n.Raw)

					if p := n.Parent(); p != nil {
						assert.LessOrEqual(t, p.Start, n.Start)
						assert.GreaterOrEqual(t, p.End, n.End)
					}
				}
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	docs, _ := yaml.Parse("key: [unclosed\n")
	require.NotEmpty(t, docs)

	var errs []string
	for _, doc := range docs {
		errs = append(errs, doc.Errors...)

		require.Len(t, doc.Problems, len(doc.Errors))

		for i, p := range doc.Problems {
			assert.Equal(t, doc.Errors[i], p.Message)
			assert.LessOrEqual(t, p.Start, p.End)
			assert.LessOrEqual(t, p.End, len("key: [unclosed\n"))
		}
	}

	assert.NotEmpty(t, errs)

	docs, _ = yaml.Parse(deploymentYAML)
	require.Len(t, docs, 1)
	assert.Empty(t, docs[0].Errors)
}

func TestDocument_Value(t *testing.T) {
	t.Parallel()

	docs, _ := yaml.Parse(deploymentYAML)
	require.Len(t, docs, 1)

	apiVersion, ok := docs[0].Value("apiVersion")
	require.True(t, ok)
	assert.Equal(t, "apps/v1", apiVersion)

	kind, ok := docs[0].Value("kind")
	require.True(t, ok)
	assert.Equal(t, "Deployment", kind)

	_, ok = docs[0].Value("status")
	assert.False(t, ok)

	spec, ok := docs[0].Root.Lookup("spec")
	require.True(t, ok)

	tmpl, ok := spec.Lookup("template")
	require.True(t, ok)

	inner, ok := tmpl.Lookup("spec")
	require.True(t, ok)

	containers, ok := inner.Lookup("containers")
	require.True(t, ok)

	items := containers.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].Index())
	assert.Equal(t, 1, items[1].Index())

	image, ok := items[0].Lookup("image")
	require.True(t, ok)

	value, ok := image.Scalar()
	require.True(t, ok)
	assert.Equal(t, "nginx:1.27", value)
	assert.Equal(t, "$.spec.template.spec.containers[0].image", image.Path())
}

func TestFindNodeAtPosition(t *testing.T) {
	t.Parallel()

	docs, lines := yaml.Parse(deploymentYAML)

	tcs := map[string]struct {
		wantRaw    string
		wantPath   string
		line, char int
		wantMatch  bool
	}{
		"inside nested scalar": {
			line: 3, char: 9,
			wantMatch: true,
			wantRaw:   "web",
			wantPath:  "$.metadata.name",
		},
		"inside sequence item value": {
			line: 11, char: 19,
			wantMatch: true,
			wantRaw:   "busybox",
			wantPath:  "$.spec.template.spec.containers[1].image",
		},
		"on top-level key": {
			line: 1, char: 1,
			wantMatch: true,
			wantRaw:   "kind",
			wantPath:  "$.kind",
		},
		"past last line": {
			line: 40, char: 0,
		},
		"past line length": {
			line: 1, char: 200,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m, ok := yaml.FindNodeAtPosition(docs, lines, tc.line, tc.char)
			require.Equal(t, tc.wantMatch, ok)

			if !tc.wantMatch {
				return
			}

			assert.Equal(t, tc.wantRaw, m.Node.Raw)
			assert.Equal(t, tc.wantPath, m.Node.Path())
			assert.Same(t, docs[0], m.Document)

			// No other node containing the offset has a strictly smaller range.
			offset, ok := lines.Offset(tc.line, tc.char)
			require.True(t, ok)

			for _, n := range m.Document.Nodes() {
				if !n.Contains(offset) {
					continue
				}

				assert.False(t, n.Start > m.Node.Start, "node %q starts after match", n.Raw)
				assert.False(t, n.Start == m.Node.Start && n.End < m.Node.End, "node %q is smaller", n.Raw)
			}
		})
	}
}

func TestFindNodeAtPosition_MultiDocument(t *testing.T) {
	t.Parallel()

	docs, lines := yaml.Parse("kind: A\n---\nkind: B\n")
	require.Len(t, docs, 2)

	m, ok := yaml.FindNodeAtPosition(docs, lines, 2, 6)
	require.True(t, ok)
	assert.Same(t, docs[1], m.Document)
	assert.Equal(t, "B", m.Node.Raw)

	m, ok = yaml.FindNodeAtPosition(docs, lines, 0, 6)
	require.True(t, ok)
	assert.Same(t, docs[0], m.Document)
	assert.Equal(t, "A", m.Node.Raw)
}

func TestFindNodeAtPosition_PastEnd(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "a: b", "a: b\n", deploymentYAML} {
		docs, lines := yaml.Parse(input)
		last := lines.Len() - 1

		_, ok := yaml.FindNodeAtPosition(docs, lines, last+1, 0)
		assert.False(t, ok)

		_, ok = yaml.FindNodeAtPosition(docs, lines, last, lines.Length(last)+1)
		assert.False(t, ok)
	}
}

func TestNode_Segments(t *testing.T) {
	t.Parallel()

	docs, lines := yaml.Parse(deploymentYAML)

	m, ok := yaml.FindNodeAtPosition(docs, lines, 11, 19)
	require.True(t, ok)
	assert.Equal(t, []string{"spec", "template", "spec", "containers", "1", "image"}, m.Node.Segments())

	assert.Empty(t, docs[0].Root.Segments())
	assert.Equal(t, "$", docs[0].Root.Path())
}
