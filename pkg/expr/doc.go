// Package expr provides CEL (Common Expression Language) functionality
// for evaluating expressions against Kubernetes manifests.
//
// It creates CEL environments with custom functions for:
//   - File path operations (pathBase, pathDir, pathExt)
//   - YAML content extraction (yamlPath)
//   - API version handling (apiGroup, apiVersionOf)
//
// Environments created with [NewManifestEnvironment] declare the variables:
//   - `object` (map): The decoded manifest
//   - `apiVersion` (string): The manifest's apiVersion
//   - `kind` (string): The manifest's kind
//   - `source` (string): The raw YAML text of the manifest's document
//   - `file` (string): The path of the file being linted, if any
package expr
