// Package symbol describes named, ranged regions of a YAML document and
// answers containment and parent/child questions about them.
//
// The functions in this package only depend on the [Info] shape, so symbol
// types owned by an editor host can be used directly.
package symbol
