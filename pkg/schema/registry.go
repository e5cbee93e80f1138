package schema

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/macropower/kls/pkg/kube"
	"github.com/macropower/kls/pkg/yaml"
)

// ExtensionGVK is the schema extension declaring group/version/kind triples.
const ExtensionGVK = "x-kubernetes-group-version-kind"

var schemaExtensions = []string{".json", ".yaml", ".yml"}

// Fragment is a schema object describing one or more resource identities.
type Fragment struct {
	// Schema is the decoded schema object.
	Schema map[string]any `json:"-"`
	// defs resolves local references within the fragment's source document.
	defs       map[string]any
	Name       string                  `json:"name"`
	Source     string                  `json:"source"`
	GVKs       []kube.GroupVersionKind `json:"gvks"`
	Identities []kube.Identity         `json:"identities"`
}

// Description returns the top-level description of the fragment.
func (f *Fragment) Description() string {
	desc, _ := f.Schema["description"].(string)

	return desc
}

// Registry indexes [Fragment]s by [kube.Identity].
// It is safe for concurrent use.
type Registry struct {
	byID      map[kube.Identity]*Fragment
	fragments []*Fragment
	mu        sync.RWMutex
}

// NewRegistry creates an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{byID: make(map[kube.Identity]*Fragment)}
}

// AddPath adds a schema file, or every schema file below a directory.
func (r *Registry) AddPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	if !info.IsDir() {
		return r.AddFile(path)
	}

	var errs []error

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !slices.Contains(schemaExtensions, strings.ToLower(filepath.Ext(p))) {
			return nil
		}

		errs = append(errs, r.AddFile(p))

		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %q: %w", path, err)
	}

	return errors.Join(errs...)
}

// AddFile reads and adds a YAML or JSON schema file.
func (r *Registry) AddFile(path string) error {
	//nolint:gosec // G304: Paths come from configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	return r.AddBytes(path, data)
}

// AddBytes adds the fragments found in a YAML or JSON schema document.
//
// Fragments are read from the document itself, and from its `definitions`
// and `components.schemas` maps. Group/version/kind entries that cannot be
// resolved are reported as [*kube.SchemaError]s; the remaining entries are
// still registered.
func (r *Registry) AddBytes(source string, data []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode schema %q: %w", source, err)
	}

	defs := definitions(doc)

	var (
		added []*Fragment
		errs  []error
	)

	collect := func(name string, obj map[string]any) {
		if _, ok := obj[ExtensionGVK]; !ok {
			return
		}

		f, err := newFragment(source, name, obj, defs)
		if err != nil {
			errs = append(errs, err)
		}

		if f != nil {
			added = append(added, f)
		}
	}

	collect(filepath.Base(source), doc)

	for _, name := range sortedKeys(defs) {
		if obj, ok := defs[name].(map[string]any); ok {
			collect(name, obj)
		}
	}

	r.mu.Lock()
	for _, f := range added {
		r.fragments = append(r.fragments, f)
		for _, id := range f.Identities {
			r.byID[id] = f
		}
	}
	r.mu.Unlock()

	slog.Debug("loaded schema",
		slog.String("source", source),
		slog.Int("fragments", len(added)),
	)

	return errors.Join(errs...)
}

func newFragment(source, name string, obj, defs map[string]any) (*Fragment, error) {
	gvks, err := decodeGVKs(obj[ExtensionGVK])
	if err != nil {
		return nil, fmt.Errorf("fragment %s: %w", name, err)
	}

	f := &Fragment{
		Name:   name,
		Source: source,
		Schema: obj,
		defs:   defs,
	}

	var errs []error

	for _, gvk := range gvks {
		id, err := kube.Resolve(gvk)
		if err != nil {
			errs = append(errs, fmt.Errorf("fragment %s: %w", name, err))

			continue
		}

		f.GVKs = append(f.GVKs, gvk)
		f.Identities = append(f.Identities, id)
	}

	if len(f.Identities) == 0 {
		return nil, errors.Join(errs...)
	}

	return f, errors.Join(errs...)
}

// decodeGVKs decodes an extension value, which is a list of triples or a
// single triple.
func decodeGVKs(v any) ([]kube.GroupVersionKind, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ExtensionGVK, err)
	}

	var gvks []kube.GroupVersionKind

	if _, ok := v.([]any); ok {
		err = yaml.Unmarshal(data, &gvks)
	} else {
		var gvk kube.GroupVersionKind

		err = yaml.Unmarshal(data, &gvk)
		gvks = append(gvks, gvk)
	}

	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ExtensionGVK, err)
	}

	return gvks, nil
}

// definitions returns the named schemas of a document.
func definitions(doc map[string]any) map[string]any {
	out := map[string]any{}

	if defs, ok := doc["definitions"].(map[string]any); ok {
		for k, v := range defs {
			out[k] = v
		}
	}

	if components, ok := doc["components"].(map[string]any); ok {
		if schemas, ok := components["schemas"].(map[string]any); ok {
			for k, v := range schemas {
				out[k] = v
			}
		}
	}

	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// Lookup returns the fragment registered for id.
func (r *Registry) Lookup(id kube.Identity) (*Fragment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byID[id]

	return f, ok
}

// Has reports whether a fragment is registered for id.
func (r *Registry) Has(id kube.Identity) bool {
	_, ok := r.Lookup(id)

	return ok
}

// KindsFor returns every registered identity with the given kind, sorted
// by apiVersion.
func (r *Registry) KindsFor(kind string) []kube.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []kube.Identity

	for id := range r.byID {
		if id.Kind == kind {
			out = append(out, id)
		}
	}

	slices.SortFunc(out, func(a, b kube.Identity) int {
		return cmp.Compare(a.APIVersion, b.APIVersion)
	})

	return out
}

// Fragments returns the registered fragments in the order they were added.
func (r *Registry) Fragments() []*Fragment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.fragments)
}

// Len returns the number of registered identities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byID)
}
