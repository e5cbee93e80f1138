// Package kube recognizes Kubernetes manifests and maps between a schema's
// group/version/kind and the apiVersion/kind pair written in a manifest.
//
// [Resolve] is the single place where a group and version are combined into
// an apiVersion. Core group resources (empty group) use the bare version.
package kube
