// Package lint builds diagnostics for Kubernetes manifests.
//
// A lint pass classifies the text, parses it into a position tree,
// extracts [symbol.Symbol]s and runs a set of [Linter]s over them.
// Linters locate the symbols they report on through
// [symbol.ChildrenNamed] and [symbol.Contains], and build diagnostics with
// [WarningOn] or [New].
package lint
