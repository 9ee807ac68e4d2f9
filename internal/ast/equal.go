package ast

import "github.com/google/go-cmp/cmp"

// IgnoreSpans is a cmp.Option that treats Span-valued fields as
// immaterial, so two ASTs that differ only in source position compare
// equal. This backs the "parse(emit(module)) recovers the module
// structurally" and ".spyc round-trip" testable properties from the
// spec's §8.
var IgnoreSpans = cmp.FilterPath(func(p cmp.Path) bool {
	for _, s := range p {
		if sf, ok := s.(cmp.StructField); ok && sf.Name() == "Span" {
			return true
		}
	}
	return false
}, cmp.Ignore())

// Equal reports whether two modules are structurally equal, ignoring
// Span (source position) information.
func Equal(a, b *Module) bool {
	return cmp.Equal(a, b, IgnoreSpans)
}
