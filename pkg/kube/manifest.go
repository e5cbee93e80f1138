package kube

import "regexp"

// manifestPattern matches an apiVersion or kind key anywhere in the text.
var manifestPattern = regexp.MustCompile(`kind\s*:|apiVersion\s*:`)

// IsManifest reports whether text looks like a Kubernetes manifest.
//
// This is a cheap lexical pre-filter that runs before parsing. It accepts any
// text containing `kind:` or `apiVersion:` (whitespace allowed before the
// colon) and runs in time linear in the length of text.
func IsManifest(text string) bool {
	return manifestPattern.MatchString(text)
}
