package schema_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/kls/pkg/kube"
	"github.com/macropower/kls/pkg/schema"
	"github.com/macropower/kls/pkg/yaml"
)

const swaggerJSON = `{
  "swagger": "2.0",
  "definitions": {
    "io.k8s.api.apps.v1.Deployment": {
      "description": "Deployment enables declarative updates for Pods and ReplicaSets.",
      "properties": {
        "spec": {
          "$ref": "#/definitions/io.k8s.api.apps.v1.DeploymentSpec",
          "description": "Specification of the desired behavior of the Deployment."
        }
      },
      "x-kubernetes-group-version-kind": [
        {"group": "apps", "kind": "Deployment", "version": "v1"}
      ]
    },
    "io.k8s.api.apps.v1.DeploymentSpec": {
      "properties": {
        "replicas": {
          "description": "Number of desired pods.",
          "type": "integer"
        },
        "template": {
          "$ref": "#/definitions/io.k8s.api.core.v1.PodTemplateSpec"
        }
      }
    },
    "io.k8s.api.core.v1.PodTemplateSpec": {
      "description": "PodTemplateSpec describes the data a pod should have when created from a template",
      "properties": {
        "spec": {
          "properties": {
            "containers": {
              "items": {
                "properties": {
                  "image": {"description": "Container image name."}
                }
              }
            }
          }
        }
      }
    },
    "io.k8s.api.core.v1.Pod": {
      "description": "Pod is a collection of containers.",
      "x-kubernetes-group-version-kind": [
        {"group": "", "kind": "Pod", "version": "v1"}
      ]
    },
    "io.k8s.api.extensions.v1beta1.Deployment": {
      "x-kubernetes-group-version-kind": [
        {"group": "extensions", "kind": "Deployment", "version": "v1beta1"}
      ]
    },
    "io.k8s.broken.NoVersion": {
      "x-kubernetes-group-version-kind": [
        {"group": "broken", "kind": "Thing"}
      ]
    }
  }
}`

const crdYAML = `description: Widget is an example custom resource.
type: object
properties:
  spec:
    type: object
    properties:
      size:
        description: Size of the widget.
        type: integer
      labels:
        type: object
        additionalProperties:
          description: A label value.
          type: string
x-kubernetes-group-version-kind:
  group: example.com
  version: v1
  kind: Widget
`

func TestRegistry_AddBytes(t *testing.T) {
	t.Parallel()

	r := schema.NewRegistry()

	err := r.AddBytes("swagger.json", []byte(swaggerJSON))
	require.Error(t, err)
	require.ErrorIs(t, err, kube.ErrMissingVersion)
	assert.Contains(t, err.Error(), "io.k8s.broken.NoVersion")

	var schemaErr *kube.SchemaError

	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "Thing", schemaErr.GVK.Kind)

	assert.Equal(t, 3, r.Len())

	f, ok := r.Lookup(kube.Identity{APIVersion: "apps/v1", Kind: "Deployment"})
	require.True(t, ok)
	assert.Equal(t, "io.k8s.api.apps.v1.Deployment", f.Name)
	assert.Equal(t, "swagger.json", f.Source)
	assert.Equal(t, "Deployment enables declarative updates for Pods and ReplicaSets.", f.Description())

	assert.True(t, r.Has(kube.Identity{APIVersion: "v1", Kind: "Pod"}))
	assert.False(t, r.Has(kube.Identity{APIVersion: "core/v1", Kind: "Pod"}))

	assert.Equal(t, []kube.Identity{
		{APIVersion: "apps/v1", Kind: "Deployment"},
		{APIVersion: "extensions/v1beta1", Kind: "Deployment"},
	}, r.KindsFor("Deployment"))

	assert.Empty(t, r.KindsFor("Thing"))
	assert.Len(t, r.Fragments(), 3)
}

func TestRegistry_SingleGVK(t *testing.T) {
	t.Parallel()

	r := schema.NewRegistry()
	require.NoError(t, r.AddBytes("widget.yaml", []byte(crdYAML)))

	f, ok := r.Lookup(kube.Identity{APIVersion: "example.com/v1", Kind: "Widget"})
	require.True(t, ok)
	assert.Equal(t, "widget.yaml", f.Name)
	assert.Equal(t, []kube.GroupVersionKind{{Group: "example.com", Version: "v1", Kind: "Widget"}}, f.GVKs)
}

func TestRegistry_InvalidDocument(t *testing.T) {
	t.Parallel()

	r := schema.NewRegistry()

	err := r.AddBytes("bad.yaml", []byte("a: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode schema")
	assert.Zero(t, r.Len())
}

func TestRegistry_AddPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "crds"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crds", "widget.yaml"), []byte(crdYAML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# schemas"), 0o600))

	r := schema.NewRegistry()
	require.NoError(t, r.AddPath(dir))
	assert.Equal(t, 1, r.Len())

	require.NoError(t, r.AddPath(filepath.Join(dir, "crds", "widget.yaml")))
	assert.Equal(t, 1, r.Len())

	require.Error(t, r.AddPath(filepath.Join(dir, "missing")))
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()

	r := schema.NewRegistry()

	var wg sync.WaitGroup

	for range 4 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			assert.NoError(t, r.AddBytes("widget.yaml", []byte(crdYAML)))
		}()

		go func() {
			defer wg.Done()

			r.KindsFor("Widget")
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, r.Len())
}

func TestFragment_Describe(t *testing.T) {
	t.Parallel()

	r := schema.NewRegistry()
	require.Error(t, r.AddBytes("swagger.json", []byte(swaggerJSON)))
	require.NoError(t, r.AddBytes("widget.yaml", []byte(crdYAML)))

	deploy, ok := r.Lookup(kube.Identity{APIVersion: "apps/v1", Kind: "Deployment"})
	require.True(t, ok)

	widget, ok := r.Lookup(kube.Identity{APIVersion: "example.com/v1", Kind: "Widget"})
	require.True(t, ok)

	tcs := map[string]struct {
		fragment *schema.Fragment
		want     string
		path     []string
		wantOK   bool
	}{
		"root": {
			fragment: deploy,
			wantOK:   true,
			want:     "Deployment enables declarative updates for Pods and ReplicaSets.",
		},
		"ref keeps referencing description": {
			fragment: deploy,
			path:     []string{"spec"},
			wantOK:   true,
			want:     "Specification of the desired behavior of the Deployment.",
		},
		"through ref": {
			fragment: deploy,
			path:     []string{"spec", "replicas"},
			wantOK:   true,
			want:     "Number of desired pods.",
		},
		"ref description": {
			fragment: deploy,
			path:     []string{"spec", "template"},
			wantOK:   true,
			want:     "PodTemplateSpec describes the data a pod should have when created from a template",
		},
		"sequence item": {
			fragment: deploy,
			path:     []string{"spec", "template", "spec", "containers", "0", "image"},
			wantOK:   true,
			want:     "Container image name.",
		},
		"unknown property": {
			fragment: deploy,
			path:     []string{"spec", "nope"},
		},
		"no description": {
			fragment: deploy,
			path:     []string{"spec", "template", "spec"},
		},
		"additional properties": {
			fragment: widget,
			path:     []string{"spec", "labels", "team"},
			wantOK:   true,
			want:     "A label value.",
		},
		"crd property": {
			fragment: widget,
			path:     []string{"spec", "size"},
			wantOK:   true,
			want:     "Size of the widget.",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := tc.fragment.Describe(tc.path)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRegistry_Hover(t *testing.T) {
	t.Parallel()

	r := schema.NewRegistry()
	require.NoError(t, r.AddBytes("widget.yaml", []byte(crdYAML)))

	text := "apiVersion: example.com/v1\nkind: Widget\nspec:\n  size: 3\n---\napiVersion: v1\nkind: Pod\n"
	docs, lines := yaml.Parse(text)

	tcs := map[string]struct {
		want       string
		line, char int
		wantOK     bool
	}{
		"value of described key": {
			line: 3, char: 8,
			wantOK: true,
			want:   "Size of the widget.",
		},
		"described key": {
			line: 3, char: 3,
			wantOK: true,
			want:   "Size of the widget.",
		},
		"unregistered kind": {
			line: 6, char: 7,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m, ok := yaml.FindNodeAtPosition(docs, lines, tc.line, tc.char)
			require.True(t, ok)

			got, ok := r.Hover(m)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
