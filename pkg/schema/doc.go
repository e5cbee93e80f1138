// Package schema indexes OpenAPI and JSON schema fragments by the
// Kubernetes resource identity they describe.
//
// A fragment is any schema object carrying an
// `x-kubernetes-group-version-kind` extension. Its declared
// group/version/kind triples are resolved with [kube.Resolve] into the
// apiVersion/kind pairs that manifests use.
package schema
