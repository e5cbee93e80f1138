package kube

import (
	"errors"

	"github.com/macropower/kls/pkg/yaml"
)

// ErrInvalidDocument is reported for documents that have syntax errors.
var ErrInvalidDocument = errors.New("document has syntax errors")

// Resource is one Kubernetes resource found in a parsed text.
type Resource struct {
	Document *yaml.Document
	// Object is nil when the document could not be decoded.
	Object   Object
	Identity Identity
	// DecodeErr holds the reason Object is nil.
	DecodeErr error
}

// Resources returns a [Resource] for every document that declares both
// apiVersion and kind. Documents are decoded independently, so one broken
// document does not hide the others.
func Resources(docs []*yaml.Document) []*Resource {
	var out []*Resource

	for _, doc := range docs {
		id, ok := DocumentIdentity(doc)
		if !ok {
			continue
		}

		r := &Resource{Document: doc, Identity: id}

		if len(doc.Errors) == 0 {
			r.Object, r.DecodeErr = DecodeObject(doc.Root.Raw)
		} else {
			r.DecodeErr = ErrInvalidDocument
		}

		out = append(out, r)
	}

	return out
}
