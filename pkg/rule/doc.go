// Package rule implements custom lint rules written as CEL (Common
// Expression Language) expressions.
//
// The expressions have access to the decoded manifest, its apiVersion and
// kind, its raw YAML text and the path of the file it was read from.
package rule
